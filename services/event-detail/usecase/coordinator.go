package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/logger"
	"github.com/event-planner-client/common/metrics"
	"github.com/event-planner-client/common/scheduler"
	"github.com/event-planner-client/services/event-detail/models"
)

// DefaultNavigateDelay keeps the delete success message on screen before the route change
const DefaultNavigateDelay = 3 * time.Second

const (
	MsgDeleteSuccess = "Event deleted successfully!"
	MsgJoinSuccess   = "Successfully joined the event!"
)

// DeleteState is the delete workflow position.
// Idle -> ConfirmPending -> Deleting -> Deleted, or back to Idle when the backend refuses.
type DeleteState string

const (
	DeleteIdle           DeleteState = "idle"
	DeleteConfirmPending DeleteState = "confirm_pending"
	DeleteDeleting       DeleteState = "deleting"
	DeleteDeleted        DeleteState = "deleted"
)

// JoinState is the join workflow position
type JoinState string

const (
	JoinIdle     JoinState = "idle"
	JoinInFlight JoinState = "in_flight"
)

// ActionCoordinator runs the delete and join workflows for one event page
type ActionCoordinator struct {
	svc           EventService
	nav           Navigator
	notifier      *Notifier
	timers        *scheduler.Group
	navigateDelay time.Duration
	log           *logger.Logger

	mu          sync.Mutex
	deleteState DeleteState
	joinState   JoinState
	joined      bool
	navTimer    scheduler.Timer
}

// NewActionCoordinator wires a coordinator; timers scheduled through it stop with the group
func NewActionCoordinator(svc EventService, nav Navigator, notifier *Notifier, timers *scheduler.Group, navigateDelay time.Duration, log *logger.Logger) *ActionCoordinator {
	if navigateDelay <= 0 {
		navigateDelay = DefaultNavigateDelay
	}
	if log == nil {
		log = logger.Default()
	}
	return &ActionCoordinator{
		svc:           svc,
		nav:           nav,
		notifier:      notifier,
		timers:        timers,
		navigateDelay: navigateDelay,
		log:           log.With("component", "action_coordinator"),
		deleteState:   DeleteIdle,
		joinState:     JoinIdle,
	}
}

// ============================================================
// Delete workflow
// ============================================================

// RequestDelete opens the confirmation surface. No network call is made.
func (c *ActionCoordinator) RequestDelete(session *models.Session, event *models.Event) error {
	if !IsOwner(session, event) {
		return apperrors.AccessDenied("delete")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.deleteState {
	case DeleteIdle, DeleteConfirmPending:
		c.deleteState = DeleteConfirmPending
		return nil
	case DeleteDeleting:
		return apperrors.ActionInFlight("delete")
	default:
		return apperrors.InvalidState("Event has already been deleted")
	}
}

// CancelDelete closes the confirmation surface
func (c *ActionCoordinator) CancelDelete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteState != DeleteConfirmPending {
		return apperrors.InvalidState("No delete is awaiting confirmation")
	}
	c.deleteState = DeleteIdle
	return nil
}

// ConfirmDelete dismisses the confirmation and deletes the event.
// On success: scroll to top, success notification, then navigate home after the delay.
// On a refused delete the backend's message is shown and the workflow returns to Idle.
func (c *ActionCoordinator) ConfirmDelete(ctx context.Context, session *models.Session, event *models.Event) error {
	c.mu.Lock()
	switch c.deleteState {
	case DeleteConfirmPending:
	case DeleteDeleting:
		c.mu.Unlock()
		return apperrors.ActionInFlight("delete")
	default:
		c.mu.Unlock()
		return apperrors.InvalidState("Delete must be confirmed from the confirmation dialog")
	}
	if !IsOwner(session, event) {
		c.deleteState = DeleteIdle
		c.mu.Unlock()
		return apperrors.AccessDenied("delete")
	}
	// confirmation is hidden before the call resolves
	c.deleteState = DeleteDeleting
	c.mu.Unlock()

	err := c.svc.DeleteEvent(ctx, event.EventID)
	if err != nil {
		c.mu.Lock()
		c.deleteState = DeleteIdle
		c.mu.Unlock()
		c.reportFailure(ctx, "delete", session, event, err)
		return err
	}

	c.mu.Lock()
	c.deleteState = DeleteDeleted
	c.mu.Unlock()

	c.nav.ScrollToTop()
	c.notifier.Success(MsgDeleteSuccess)
	timer := c.timers.AfterFunc(c.navigateDelay, func() { c.nav.Navigate(HomeRoute) })

	c.mu.Lock()
	c.navTimer = timer
	c.mu.Unlock()

	metrics.ObserveWorkflow("delete", "success")
	c.log.LogEvent(logger.EventLog{
		Event:    "EVENT_DELETE",
		UserID:   session.UserID,
		EntityID: event.EventID,
		Entity:   "event",
		Action:   "delete",
		Success:  true,
	})
	return nil
}

// ============================================================
// Join workflow
// ============================================================

// Join registers the viewer as an accepted guest.
// Eligibility is re-derived from the session and event, not taken from rendered buttons.
func (c *ActionCoordinator) Join(ctx context.Context, session *models.Session, event *models.Event) error {
	if session == nil {
		return apperrors.Unauthorized("Sign in to join this event")
	}
	if event == nil || IsOwner(session, event) {
		return apperrors.AccessDenied("join")
	}

	c.mu.Lock()
	if c.joinState == JoinInFlight {
		c.mu.Unlock()
		return apperrors.ActionInFlight("join")
	}
	if c.joined {
		c.mu.Unlock()
		return apperrors.InvalidState("You have already joined this event")
	}
	c.joinState = JoinInFlight
	c.mu.Unlock()

	req := models.JoinRequest{
		UserID:  session.UserID,
		EventID: event.EventID,
		Status:  models.GuestStatusAccepted,
	}
	err := c.svc.JoinEvent(ctx, event.UserID, req, session.Token)

	c.mu.Lock()
	c.joinState = JoinIdle
	if err == nil {
		c.joined = true
	}
	c.mu.Unlock()

	if err != nil {
		c.reportFailure(ctx, "join", session, event, err)
		return err
	}

	c.notifier.Success(MsgJoinSuccess)
	metrics.ObserveWorkflow("join", "success")
	c.log.LogEvent(logger.EventLog{
		Event:    "EVENT_JOIN",
		UserID:   session.UserID,
		EntityID: event.EventID,
		Entity:   "event",
		Action:   "join",
		Success:  true,
	})
	return nil
}

// ============================================================
// State accessors
// ============================================================

func (c *ActionCoordinator) DeleteState() DeleteState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteState
}

func (c *ActionCoordinator) JoinState() JoinState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joinState
}

// Joined reports whether a join succeeded during this visit
func (c *ActionCoordinator) Joined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined
}

// Stop cancels a pending home navigation
func (c *ActionCoordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.navTimer != nil {
		c.navTimer.Stop()
		c.navTimer = nil
	}
}

// reportFailure turns a mutation error into one notification.
// Refusals carry the backend's text; anything without a response gets the generic message.
func (c *ActionCoordinator) reportFailure(ctx context.Context, action string, session *models.Session, event *models.Event, err error) {
	outcome := "failed"
	message := GenericFailureMessage
	if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeActionFailure {
		outcome = "refused"
		message = appErr.Message
	} else if ctx.Err() != nil {
		outcome = "cancelled"
		message = ""
	}

	metrics.ObserveWorkflow(action, outcome)
	c.log.LogEvent(logger.EventLog{
		Event:    "EVENT_" + strings.ToUpper(action),
		UserID:   session.UserID,
		EntityID: event.EventID,
		Entity:   "event",
		Action:   action,
		Success:  false,
		Metadata: map[string]interface{}{"outcome": outcome},
		Error:    err.Error(),
	})

	if message != "" {
		c.notifier.Danger(message)
	}
}
