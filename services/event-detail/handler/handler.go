package handler

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/logger"
	"github.com/event-planner-client/common/pdf"
	"github.com/event-planner-client/common/qrcode"
	"github.com/event-planner-client/common/response"
	"github.com/event-planner-client/common/scheduler"
	"github.com/event-planner-client/common/session"
	"github.com/event-planner-client/common/validator"
	"github.com/event-planner-client/services/event-detail/models"
	"github.com/event-planner-client/services/event-detail/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// MismatchNote is printed on the event sheet when the booking disagrees with the schedule
const MismatchNote = "*Please ensure the booking date and time match the event details"

// Config holds the handler's collaborators
type Config struct {
	Service         usecase.EventService
	Sessions        session.Source
	PublicBaseURL   string
	NavigateDelay   time.Duration
	NotificationTTL time.Duration
	Clock           scheduler.Clock
	Logger          *logger.Logger
}

// EventDetailHandler serves the event detail page and its actions.
// Every request gets its own page visit: load, optional action, render, close.
// Delete and join are additionally serialized per event across requests.
type EventDetailHandler struct {
	cfg      Config
	log      *logger.Logger
	inFlight *inFlightActions
}

const (
	actionDelete = "delete"
	actionJoin   = "join"
)

type actionKey struct {
	eventID int
	action  string
}

// inFlightActions tracks the delete and join calls currently running against the backend
type inFlightActions struct {
	mu      sync.Mutex
	running map[actionKey]bool
}

func (a *inFlightActions) acquire(eventID int, action string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := actionKey{eventID, action}
	if a.running[key] {
		return false
	}
	a.running[key] = true
	return true
}

func (a *inFlightActions) release(eventID int, action string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.running, actionKey{eventID, action})
}

func (a *inFlightActions) busy(eventID int, action string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running[actionKey{eventID, action}]
}

// NewEventDetailHandler creates a new event detail handler
func NewEventDetailHandler(cfg Config) *EventDetailHandler {
	if cfg.Sessions == nil {
		cfg.Sessions = session.Chain{}
	}
	if cfg.NavigateDelay <= 0 {
		cfg.NavigateDelay = usecase.DefaultNavigateDelay
	}
	if cfg.NotificationTTL <= 0 {
		cfg.NotificationTTL = usecase.DefaultNotificationTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = scheduler.System
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &EventDetailHandler{
		cfg:      cfg,
		log:      cfg.Logger.With("component", "event_detail_handler"),
		inFlight: &inFlightActions{running: make(map[actionKey]bool)},
	}
}

// ============================================================
// Pages
// ============================================================

// HandleEventPage handles GET /event/{id}
// ?confirm=delete opens the delete confirmation for the owner
func (h *EventDetailHandler) HandleEventPage(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	eventID, resp, ok := h.eventID(request)
	if !ok {
		return resp, nil
	}
	sess := h.session(request)

	page, nav := h.openPage()
	defer page.Close()
	page.Load(ctx, eventID)

	if request.QueryStringParameters["confirm"] == "delete" {
		if err := page.RequestDelete(sess); err != nil {
			h.log.WithError(err).With("event_id", eventID).Debug("Delete confirmation not shown")
		}
	}
	return h.render(page.Snapshot(sess), nav, nil)
}

// HandleDeleteEvent handles POST /event/{id}/delete
func (h *EventDetailHandler) HandleDeleteEvent(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	eventID, resp, ok := h.eventID(request)
	if !ok {
		return resp, nil
	}
	sess := h.session(request)

	page, nav := h.openPage()
	defer page.Close()
	page.Load(ctx, eventID)

	err := h.exclusive(eventID, actionDelete, func() error {
		if err := page.RequestDelete(sess); err != nil {
			return err
		}
		return page.ConfirmDelete(ctx, sess)
	})
	return h.respondAction(request, page.Snapshot(sess), nav, err)
}

// HandleJoinEvent handles POST /event/{id}/join
func (h *EventDetailHandler) HandleJoinEvent(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	eventID, resp, ok := h.eventID(request)
	if !ok {
		return resp, nil
	}
	sess := h.session(request)

	page, nav := h.openPage()
	defer page.Close()
	page.Load(ctx, eventID)

	err := h.exclusive(eventID, actionJoin, func() error {
		return page.Join(ctx, sess)
	})
	return h.respondAction(request, page.Snapshot(sess), nav, err)
}

// HandleViewJSON handles GET /api/view/{id}
// Returns the page snapshot the HTML view is rendered from
func (h *EventDetailHandler) HandleViewJSON(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	eventID, err := pathEventID(request)
	if err != nil {
		return response.Error(err)
	}
	sess := h.session(request)

	page, _ := h.openPage()
	defer page.Close()
	page.Load(ctx, eventID)

	view := h.withInFlight(page.Snapshot(sess))
	if !view.Found() {
		return response.ErrorWithData(apperrors.NotFound("event"), view)
	}
	return response.JSON(http.StatusOK, view)
}

// HandleEventSheet handles GET /event/{id}/sheet.pdf
func (h *EventDetailHandler) HandleEventSheet(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	eventID, err := pathEventID(request)
	if err != nil {
		return response.Error(err)
	}

	page, _ := h.openPage()
	defer page.Close()
	page.Load(ctx, eventID)

	view := page.Snapshot(h.session(request))
	if !view.Found() {
		return response.Error(apperrors.NotFound("event"))
	}

	data, err := BuildEventSheet(view, h.cfg.PublicBaseURL)
	if err != nil {
		h.log.WithError(err).With("event_id", eventID).Warn("Event sheet rendered without QR code")
	}
	out, err := pdf.GenerateEventSheetPDF(data)
	if err != nil {
		h.log.WithError(err).With("event_id", eventID).Error("Failed to render event sheet")
		return response.Error(apperrors.Internal("Failed to render event sheet").WithCause(err))
	}
	return response.Binary("application/pdf", fmt.Sprintf("event-%d.pdf", eventID), out), nil
}

// ============================================================
// Helpers
// ============================================================

// exclusive runs an action unless the same action is already running for the event
func (h *EventDetailHandler) exclusive(eventID int, action string, run func() error) error {
	if !h.inFlight.acquire(eventID, action) {
		h.log.With("event_id", eventID).Info("Rejected %s: already in progress", action)
		return apperrors.ActionInFlight(action)
	}
	defer h.inFlight.release(eventID, action)
	return run()
}

// withInFlight reflects actions running in other requests onto the view
func (h *EventDetailHandler) withInFlight(view usecase.PageView) usecase.PageView {
	if h.inFlight.busy(view.EventID, actionJoin) {
		view.JoinInFlight = true
	}
	if h.inFlight.busy(view.EventID, actionDelete) && view.DeleteState != usecase.DeleteDeleted {
		view.DeleteState = usecase.DeleteDeleting
		view.ConfirmVisible = false
	}
	return view
}

func (h *EventDetailHandler) openPage() (*usecase.EventDetailPage, *usecase.RouteRecorder) {
	nav := &usecase.RouteRecorder{}
	page := usecase.NewEventDetailPage(usecase.Dependencies{
		Service:         h.cfg.Service,
		Navigator:       nav,
		Clock:           h.cfg.Clock,
		NavigateDelay:   h.cfg.NavigateDelay,
		NotificationTTL: h.cfg.NotificationTTL,
		Logger:          h.cfg.Logger,
	})
	return page, nav
}

// session resolves the viewer; an unreadable session is treated as anonymous
func (h *EventDetailHandler) session(request events.APIGatewayProxyRequest) *models.Session {
	id, err := h.cfg.Sessions.Resolve(request.Headers)
	if err != nil {
		h.log.WithError(err).Warn("Ignoring unreadable session")
		return nil
	}
	if id == nil {
		return nil
	}
	return &models.Session{UserID: id.UserID, Token: id.Token}
}

func (h *EventDetailHandler) eventID(request events.APIGatewayProxyRequest) (int, events.APIGatewayProxyResponse, bool) {
	eventID, err := pathEventID(request)
	if err != nil {
		return 0, response.HTML(http.StatusBadRequest, "<h1>"+template.HTMLEscapeString(apperrors.ToAppError(err).Message)+"</h1>"), false
	}
	return eventID, events.APIGatewayProxyResponse{}, true
}

// respondAction answers a delete or join with JSON for API clients and the re-rendered page otherwise
func (h *EventDetailHandler) respondAction(request events.APIGatewayProxyRequest, view usecase.PageView, nav *usecase.RouteRecorder, actionErr error) (events.APIGatewayProxyResponse, error) {
	if wantsJSON(request) {
		view = h.withInFlight(view)
		if actionErr != nil {
			return response.ErrorWithData(actionErr, view)
		}
		return response.JSON(http.StatusOK, view)
	}
	return h.render(view, nav, actionErr)
}

type ownerAction struct {
	Label string
	Href  string
	Class string
}

type pageData struct {
	View              usecase.PageView
	Actions           []ownerAction
	CanJoin           bool
	PageURL           string
	DeleteURL         string
	JoinURL           string
	SheetURL          string
	QRCode            template.URL
	RefreshURL        string
	RefreshSeconds    int
	ScrollTop         bool
	NotificationTTLms int64
}

func (h *EventDetailHandler) render(view usecase.PageView, nav *usecase.RouteRecorder, actionErr error) (events.APIGatewayProxyResponse, error) {
	view = h.withInFlight(view)
	data := pageData{
		View:              view,
		CanJoin:           view.Can(usecase.CapJoin),
		PageURL:           fmt.Sprintf("/event/%d", view.EventID),
		DeleteURL:         fmt.Sprintf("/event/%d/delete", view.EventID),
		JoinURL:           fmt.Sprintf("/event/%d/join", view.EventID),
		SheetURL:          fmt.Sprintf("/event/%d/sheet.pdf", view.EventID),
		ScrollTop:         nav.Scrolled(),
		NotificationTTLms: h.cfg.NotificationTTL.Milliseconds(),
	}
	data.Actions = ownerActions(view)

	if view.DeleteState == usecase.DeleteDeleted {
		data.RefreshURL = usecase.HomeRoute
		data.RefreshSeconds = int(h.cfg.NavigateDelay.Round(time.Second) / time.Second)
	}
	if view.Found() && h.cfg.PublicBaseURL != "" {
		if uri, err := qrcode.GenerateEventQRBase64(h.cfg.PublicBaseURL, view.EventID, qrcode.SizeSmall); err == nil {
			data.QRCode = template.URL(uri)
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "event_detail", data); err != nil {
		h.log.WithError(err).Error("Failed to render event detail page")
		return response.HTML(http.StatusInternalServerError, "<h1>Something went wrong</h1>"), nil
	}
	return response.HTML(pageStatus(view, actionErr), buf.String()), nil
}

// ownerActions lists the navigation buttons in display order, delete last
func ownerActions(view usecase.PageView) []ownerAction {
	labels := map[usecase.Capability]string{
		usecase.CapUpdate:       "Update Event Info",
		usecase.CapManageVenue:  view.VenueActionLabel,
		usecase.CapManageBudget: "Manage Budget",
		usecase.CapManageGuests: "Manage Guests",
	}
	classes := map[usecase.Capability]string{
		usecase.CapUpdate:       "btn-primary",
		usecase.CapManageVenue:  "btn-dark",
		usecase.CapManageBudget: "btn-secondary",
		usecase.CapManageGuests: "btn-info",
	}

	var out []ownerAction
	for _, c := range view.Capabilities {
		if route, ok := usecase.OwnerRoute(c, view.EventID); ok {
			out = append(out, ownerAction{Label: labels[c], Href: route, Class: classes[c]})
		}
	}
	if view.Can(usecase.CapDelete) && view.DeleteState != usecase.DeleteDeleted {
		out = append(out, ownerAction{
			Label: "Delete Event",
			Href:  fmt.Sprintf("/event/%d?confirm=delete", view.EventID),
			Class: "btn-danger",
		})
	}
	return out
}

// pageStatus keeps refused actions at 200 since the page itself carries the message
func pageStatus(view usecase.PageView, actionErr error) int {
	if appErr, ok := apperrors.AsAppError(actionErr); ok {
		switch appErr.Code {
		case apperrors.ErrCodeUnauthorized, apperrors.ErrCodeAccessDenied, apperrors.ErrCodeActionInFlight, apperrors.ErrCodeInvalidState:
			return appErr.HTTPStatus
		}
	}
	if view.DeleteState == usecase.DeleteDeleted {
		return http.StatusOK
	}
	if !view.Found() {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// BuildEventSheet maps a loaded page onto the printable sheet
func BuildEventSheet(view usecase.PageView, publicBaseURL string) (pdf.EventSheetData, error) {
	event := view.State.Event
	data := pdf.EventSheetData{
		EventID:     event.EventID,
		EventName:   event.EventName,
		EventType:   event.EventType,
		EventDate:   event.EventDate,
		StartTime:   event.EventStartTime,
		EndTime:     event.EventEndTime,
		Description: event.EventDescription,
	}
	if v := view.State.Venue; v != nil {
		data.VenueName = v.VenueName
		data.Address = v.Address
		data.City = v.City
		data.Country = v.Country
	}
	if view.MismatchWarning {
		data.BookingNote = MismatchNote
	}
	if b := view.State.Budget; b != nil {
		data.VenueCost = "$" + b.VenueCost.StringFixed(2)
		data.BeverageCostPerPerson = "$" + b.BeverageCostPerPerson.StringFixed(2)
		data.GuestNumber = strconv.Itoa(b.GuestNumber)
		data.TotalBudget = "$" + b.TotalBudget.StringFixed(2)
	}
	if publicBaseURL == "" {
		return data, nil
	}

	data.PageURL = qrcode.EventPageURL(publicBaseURL, event.EventID)
	png, err := qrcode.GenerateEventQRPngBytes(publicBaseURL, event.EventID, qrcode.SizeStandard)
	if err != nil {
		return data, err
	}
	data.QRCodePngBytes = png
	return data, nil
}

// pathEventID reads {id} from path parameters, falling back to the first numeric path segment
func pathEventID(request events.APIGatewayProxyRequest) (int, error) {
	raw, ok := request.PathParameters["id"]
	if !ok {
		for _, seg := range strings.Split(strings.Trim(request.Path, "/"), "/") {
			if seg != "" && seg[0] >= '0' && seg[0] <= '9' {
				raw = seg
				break
			}
		}
	}
	id, valid := validator.ParseEventID(raw)
	if !valid {
		return 0, apperrors.InvalidInput("id", validator.GetEventIDError(raw))
	}
	return id, nil
}

func wantsJSON(request events.APIGatewayProxyRequest) bool {
	return strings.Contains(session.Header(request.Headers, "Accept"), "application/json")
}
