package usecase

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/logger"
	"github.com/event-planner-client/common/metrics"
	"github.com/event-planner-client/common/scheduler"
	"github.com/event-planner-client/services/event-detail/models"
)

// Dependencies are the collaborators an EventDetailPage needs
type Dependencies struct {
	Service         EventService
	Navigator       Navigator
	Clock           scheduler.Clock
	NavigateDelay   time.Duration
	NotificationTTL time.Duration
	Logger          *logger.Logger
}

// PageView is everything a renderer needs for one frame of the detail page
type PageView struct {
	EventID          int                 `json:"eventId"`
	Status           LoadStatus          `json:"status"`
	State            models.ViewState    `json:"state"`
	MismatchWarning  bool                `json:"mismatchWarning"`
	Capabilities     CapabilitySet       `json:"capabilities"`
	Notification     models.Notification `json:"notification"`
	DeleteState      DeleteState         `json:"deleteState"`
	ConfirmVisible   bool                `json:"confirmVisible"`
	JoinInFlight     bool                `json:"joinInFlight"`
	Joined           bool                `json:"joined"`
	VenueActionLabel string              `json:"venueActionLabel"`
}

// Found reports whether the event can be rendered; an unnamed event renders as not found
func (v PageView) Found() bool {
	return v.Status == StatusLoaded && v.State.Event != nil && v.State.Event.EventName != ""
}

// Can reports whether the capability is offered
func (v PageView) Can(c Capability) bool {
	return v.Capabilities.Has(c)
}

// visit is the per-event-id lifetime: its timers, message slot and workflows die together
type visit struct {
	eventID  int
	gen      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	timers   *scheduler.Group
	notifier *Notifier
	actions  *ActionCoordinator
	result   FetchResult
}

// EventDetailPage owns the ViewState of the event detail page.
// Opening a different event id discards the previous visit; late responses for it are dropped.
type EventDetailPage struct {
	deps    Dependencies
	fetcher *ResourceFetcher
	log     *logger.Logger

	mu    sync.Mutex
	gen   uint64
	state models.ViewState
	cur   *visit
}

// NewEventDetailPage creates a page with no event opened
func NewEventDetailPage(deps Dependencies) *EventDetailPage {
	if deps.Clock == nil {
		deps.Clock = scheduler.System
	}
	if deps.Navigator == nil {
		deps.Navigator = &RouteRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	return &EventDetailPage{
		deps:    deps,
		fetcher: NewResourceFetcher(deps.Service, deps.Logger),
		log:     deps.Logger.With("component", "event_detail_page"),
	}
}

// Open starts loading eventID and returns a channel closed when that load ends.
// Re-opening the current id is a no-op. Opening another id cancels the running load.
func (p *EventDetailPage) Open(ctx context.Context, eventID int) <-chan struct{} {
	p.mu.Lock()
	if p.cur != nil && p.cur.eventID == eventID {
		done := p.cur.done
		p.mu.Unlock()
		return done
	}
	p.endVisitLocked()

	p.gen++
	loadCtx, cancel := context.WithCancel(ctx)
	timers := scheduler.NewGroup(p.deps.Clock)
	notifier := NewNotifier(timers, p.deps.NotificationTTL)
	v := &visit{
		eventID:  eventID,
		gen:      p.gen,
		cancel:   cancel,
		done:     make(chan struct{}),
		timers:   timers,
		notifier: notifier,
		actions:  NewActionCoordinator(p.deps.Service, p.deps.Navigator, notifier, timers, p.deps.NavigateDelay, p.deps.Logger),
	}
	p.cur = v
	p.state = models.ViewState{Loading: true}
	p.mu.Unlock()

	go p.run(loadCtx, v)
	return v.done
}

// Load opens eventID and waits for the load to finish or ctx to end
func (p *EventDetailPage) Load(ctx context.Context, eventID int) LoadStatus {
	done := p.Open(ctx, eventID)
	select {
	case <-done:
	case <-ctx.Done():
	}
	return p.Status()
}

// Close ends the visit: in-flight requests are cancelled and pending timers stopped
func (p *EventDetailPage) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.endVisitLocked()
	p.gen++
	p.state = models.ViewState{}
}

func (p *EventDetailPage) endVisitLocked() {
	if p.cur == nil {
		return
	}
	p.cur.cancel()
	p.cur.actions.Stop()
	p.cur.timers.StopAll()
	p.cur = nil
}

func (p *EventDetailPage) run(ctx context.Context, v *visit) {
	defer close(v.done)
	res := p.fetcher.Fetch(ctx, v.eventID, func(u Update) { p.apply(v.gen, u) })
	p.finish(v, res)
}

// apply mutates the view only while gen is still the current load
func (p *EventDetailPage) apply(gen uint64, u Update) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		metrics.ObserveStaleUpdate()
		return
	}
	u(&p.state)
	p.state.ConsistencyMatch = ConsistencyMatch(p.state.Event, p.state.Booking)
}

func (p *EventDetailPage) finish(v *visit, res FetchResult) {
	p.mu.Lock()
	if v.gen != p.gen {
		p.mu.Unlock()
		return
	}
	v.result = res
	p.mu.Unlock()

	metrics.ObservePageLoad(string(res.Status))
	if len(res.Partial) > 0 {
		p.log.With("event_id", v.eventID).Debug("Loaded with missing resources: %v", res.Partial)
	}
	if apperrors.HasCode(res.Err, apperrors.ErrCodeTransportFailure) {
		v.notifier.Danger(GenericFailureMessage)
	}
}

// ============================================================
// Read side
// ============================================================

// EventID is the open event id, 0 when nothing is open
func (p *EventDetailPage) EventID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		return 0
	}
	return p.cur.eventID
}

// Status derives the load status from the current view
func (p *EventDetailPage) Status() LoadStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return StatusOf(p.state)
}

// State returns a copy of the current view
func (p *EventDetailPage) State() models.ViewState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// Result returns how the current load ended; ok is false while it is still running
func (p *EventDetailPage) Result() (FetchResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		return FetchResult{}, false
	}
	select {
	case <-p.cur.done:
		return p.cur.result, true
	default:
		return FetchResult{}, false
	}
}

// Snapshot renders the page for the given viewer. Capabilities are recomputed on every call.
func (p *EventDetailPage) Snapshot(session *models.Session) PageView {
	p.mu.Lock()
	state := p.state.Clone()
	v := p.cur
	p.mu.Unlock()

	view := PageView{
		Status:           StatusOf(state),
		State:            state,
		MismatchWarning:  MismatchWarning(state.Event, state.Booking),
		Capabilities:     ResolveCapabilities(session, state.Event),
		DeleteState:      DeleteIdle,
		VenueActionLabel: VenueActionLabel(state.Venue),
	}
	if v == nil {
		return view
	}

	view.EventID = v.eventID
	view.Notification = v.notifier.Current()
	view.DeleteState = v.actions.DeleteState()
	view.ConfirmVisible = view.DeleteState == DeleteConfirmPending
	view.JoinInFlight = v.actions.JoinState() == JoinInFlight
	view.Joined = v.actions.Joined()
	if view.Joined {
		view.Capabilities = view.Capabilities.Without(CapJoin)
	}
	return view
}

// ============================================================
// Actions - forwarded to the current visit's coordinator
// ============================================================

func (p *EventDetailPage) visitAndEvent() (*visit, *models.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil || p.state.Event == nil {
		return nil, nil, apperrors.InvalidState("No event is loaded")
	}
	return p.cur, p.state.Event, nil
}

// RequestDelete shows the delete confirmation
func (p *EventDetailPage) RequestDelete(session *models.Session) error {
	v, event, err := p.visitAndEvent()
	if err != nil {
		return err
	}
	return v.actions.RequestDelete(session, event)
}

// CancelDelete hides the delete confirmation
func (p *EventDetailPage) CancelDelete() error {
	p.mu.Lock()
	v := p.cur
	p.mu.Unlock()
	if v == nil {
		return apperrors.InvalidState("No event is loaded")
	}
	return v.actions.CancelDelete()
}

// ConfirmDelete deletes the open event
func (p *EventDetailPage) ConfirmDelete(ctx context.Context, session *models.Session) error {
	v, event, err := p.visitAndEvent()
	if err != nil {
		return err
	}
	return v.actions.ConfirmDelete(ctx, session, event)
}

// Join adds the viewer to the open event's guest list
func (p *EventDetailPage) Join(ctx context.Context, session *models.Session) error {
	v, event, err := p.visitAndEvent()
	if err != nil {
		return err
	}
	return v.actions.Join(ctx, session, event)
}

// DismissNotification hides the current message
func (p *EventDetailPage) DismissNotification() {
	p.mu.Lock()
	v := p.cur
	p.mu.Unlock()
	if v != nil {
		v.notifier.Dismiss()
	}
}
