package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/event-planner-client/common/config"
	"github.com/event-planner-client/common/logger"
	"github.com/event-planner-client/common/pdf"
	"github.com/event-planner-client/common/session"
	"github.com/event-planner-client/common/validator"
	eventHandler "github.com/event-planner-client/services/event-detail/handler"
	"github.com/event-planner-client/services/event-detail/models"
	"github.com/event-planner-client/services/event-detail/repository"
	"github.com/event-planner-client/services/event-detail/usecase"
)

type options struct {
	userID  int
	token   string
	asJSON  bool
	verbose bool

	// set in PersistentPreRunE
	cfg *config.Config
	svc usecase.EventService
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "eventdetail",
		Short:         "Inspect and act on a single event",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logger.WARN
			if opts.verbose {
				level = logger.DEBUG
			}
			logger.SetDefault(logger.New(&logger.Config{
				Level:       level,
				Output:      cmd.ErrOrStderr(),
				EnableColor: true,
				TimeFormat:  time.Kitchen,
			}))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if opts.svc == nil {
				opts.svc = repository.NewEventRepository(repository.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.HTTPTimeout})
			}
			return nil
		},
	}

	root.PersistentFlags().IntVar(&opts.userID, "user", 0, "signed-in user id")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "session token (user id is read from it when --user is omitted)")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print the page snapshot as JSON")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newShowCmd(opts),
		newDeleteCmd(opts),
		newJoinCmd(opts),
		newSheetCmd(opts),
	)
	return root
}

// ============================================================
// Commands
// ============================================================

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <event-id>",
		Short: "Load an event with its venue, booking and budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			sess, err := opts.session()
			if err != nil {
				return err
			}

			page, _ := opts.newPage(cmd.ErrOrStderr())
			defer page.Close()
			page.Load(cmd.Context(), eventID)

			return opts.print(cmd.OutOrStdout(), page.Snapshot(sess))
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete an event you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			sess, err := opts.session()
			if err != nil {
				return err
			}

			page, nav := opts.newPage(cmd.ErrOrStderr())
			defer page.Close()
			page.Load(cmd.Context(), eventID)

			if err := page.RequestDelete(sess); err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete this event? [y/N] ") {
				return page.CancelDelete()
			}

			err = page.ConfirmDelete(cmd.Context(), sess)
			if perr := opts.print(cmd.OutOrStdout(), page.Snapshot(sess)); perr != nil {
				return perr
			}
			if err != nil {
				return err
			}

			select {
			case <-nav.navigated:
			case <-time.After(opts.cfg.NavigateDelay + time.Second):
			case <-cmd.Context().Done():
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newJoinCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "join <event-id>",
		Short: "Join an event as an accepted guest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			sess, err := opts.session()
			if err != nil {
				return err
			}

			page, _ := opts.newPage(cmd.ErrOrStderr())
			defer page.Close()
			page.Load(cmd.Context(), eventID)

			err = page.Join(cmd.Context(), sess)
			if perr := opts.print(cmd.OutOrStdout(), page.Snapshot(sess)); perr != nil {
				return perr
			}
			return err
		},
	}
}

func newSheetCmd(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sheet <event-id>",
		Short: "Write a printable PDF sheet for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID, err := parseEventID(args[0])
			if err != nil {
				return err
			}

			page, _ := opts.newPage(cmd.ErrOrStderr())
			defer page.Close()
			page.Load(cmd.Context(), eventID)

			view := page.Snapshot(nil)
			if !view.Found() {
				return fmt.Errorf("event %d not found", eventID)
			}
			data, err := eventHandler.BuildEventSheet(view, opts.cfg.PublicBaseURL)
			if err != nil {
				logger.WithError(err).Warn("Sheet will have no QR code")
			}
			out, err := pdf.GenerateEventSheetPDF(data)
			if err != nil {
				return err
			}

			if output == "" {
				output = fmt.Sprintf("event-%d.pdf", eventID)
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", output, len(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default event-<id>.pdf)")
	return cmd
}

// ============================================================
// Helpers
// ============================================================

// terminalNavigator prints navigation and signals the first route change
type terminalNavigator struct {
	out       io.Writer
	navigated chan struct{}
}

func (n *terminalNavigator) ScrollToTop() {}

func (n *terminalNavigator) Navigate(route string) {
	fmt.Fprintf(n.out, "-> navigating to %s\n", route)
	select {
	case <-n.navigated:
	default:
		close(n.navigated)
	}
}

func (o *options) newPage(out io.Writer) (*usecase.EventDetailPage, *terminalNavigator) {
	nav := &terminalNavigator{out: out, navigated: make(chan struct{})}
	page := usecase.NewEventDetailPage(usecase.Dependencies{
		Service:         o.svc,
		Navigator:       nav,
		NavigateDelay:   o.cfg.NavigateDelay,
		NotificationTTL: o.cfg.NotificationTTL,
	})
	return page, nav
}

func (o *options) session() (*models.Session, error) {
	if o.token == "" {
		if o.userID > 0 {
			return nil, fmt.Errorf("--user needs --token")
		}
		return nil, nil
	}
	if o.userID > 0 {
		return &models.Session{UserID: o.userID, Token: o.token}, nil
	}

	id, err := session.NewBearerSource(nil).Resolve(map[string]string{"Authorization": "Bearer " + o.token})
	if err != nil {
		return nil, err
	}
	return &models.Session{UserID: id.UserID, Token: id.Token}, nil
}

func (o *options) print(w io.Writer, view usecase.PageView) error {
	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	printView(w, view)
	return nil
}

func printView(w io.Writer, view usecase.PageView) {
	if n := view.Notification; n.Visible {
		fmt.Fprintf(w, "[%s] %s\n\n", n.Variant, n.Text)
	}
	if !view.Found() {
		fmt.Fprintln(w, "Event Not Found")
		return
	}

	e := view.State.Event
	fmt.Fprintf(w, "Event %d: %s (%s)\n", e.EventID, e.EventName, e.EventType)
	fmt.Fprintf(w, "  Organizer: user %d\n", e.UserID)
	fmt.Fprintf(w, "  When:      %s %s-%s\n", e.EventDate, e.EventStartTime, e.EventEndTime)
	if e.EventDescription != "" {
		fmt.Fprintf(w, "  About:     %s\n", e.EventDescription)
	}

	if v := view.State.Venue; v != nil {
		fmt.Fprintf(w, "  Venue:     %s, %s, %s, %s\n", v.VenueName, v.Address, v.City, v.Country)
	}
	if b := view.State.Booking; b != nil {
		fmt.Fprintf(w, "  Booking:   %s %s-%s\n", b.BookingDate, b.BookingStartTime, b.BookingEndTime)
	}
	if view.MismatchWarning {
		fmt.Fprintf(w, "  %s\n", eventHandler.MismatchNote)
	}
	if b := view.State.Budget; b != nil {
		fmt.Fprintf(w, "  Budget:    venue $%s, beverage $%s/person, %d guests, total $%s\n",
			b.VenueCost.StringFixed(2), b.BeverageCostPerPerson.StringFixed(2), b.GuestNumber, b.TotalBudget.StringFixed(2))
	}

	caps := make([]string, 0, len(view.Capabilities))
	for _, c := range view.Capabilities {
		caps = append(caps, string(c))
	}
	if len(caps) == 0 {
		caps = append(caps, "none")
	}
	fmt.Fprintf(w, "  Actions:   %s\n", strings.Join(caps, ", "))
}

func parseEventID(raw string) (int, error) {
	id, ok := validator.ParseEventID(raw)
	if !ok {
		return 0, fmt.Errorf("%s: %q", validator.GetEventIDError(raw), raw)
	}
	return id, nil
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	var answer string
	if _, err := fmt.Fscanln(in, &answer); err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
