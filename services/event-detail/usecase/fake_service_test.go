package usecase

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/services/event-detail/models"
)

type joinCall struct {
	ownerUserID int
	req         models.JoinRequest
	token       string
}

// fakeService is an in-memory EventService.
// gates, when set for an event id, hold GetEvent until the channel is closed;
// venueGates (by venue id) and budgetGates (by event id) do the same for the dependents.
type fakeService struct {
	mu sync.Mutex

	events      map[int]*models.EventDTO
	venues      map[int]*models.Venue
	bookings    map[int]*models.VenueBookingDTO
	budgets     map[int]*models.Budget
	gates       map[int]chan struct{}
	venueGates  map[int]chan struct{}
	budgetGates map[int]chan struct{}

	eventErr   error
	deleteErr  error
	joinErr    error
	joinGate   chan struct{}
	deleteGate chan struct{}
	calls      []string
	deleted    []int
	joins      []joinCall
}

func newFakeService() *fakeService {
	return &fakeService{
		events:      map[int]*models.EventDTO{},
		venues:      map[int]*models.Venue{},
		bookings:    map[int]*models.VenueBookingDTO{},
		budgets:     map[int]*models.Budget{},
		gates:       map[int]chan struct{}{},
		venueGates:  map[int]chan struct{}{},
		budgetGates: map[int]chan struct{}{},
	}
}

func (f *fakeService) wait(gates map[int]chan struct{}, id int) {
	f.mu.Lock()
	gate := gates[id]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (f *fakeService) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeService) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func (f *fakeService) GetEvent(ctx context.Context, eventID int) (*models.EventDTO, error) {
	f.record("event")
	f.wait(f.gates, eventID)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	dto, ok := f.events[eventID]
	if !ok {
		return nil, apperrors.NotFound("event")
	}
	return dto, nil
}

func (f *fakeService) GetVenue(ctx context.Context, venueID int) (*models.Venue, error) {
	f.record("venue")
	f.wait(f.venueGates, venueID)
	f.mu.Lock()
	defer f.mu.Unlock()
	venue, ok := f.venues[venueID]
	if !ok {
		return nil, apperrors.PartialFetchFailure("venue", 404)
	}
	return venue, nil
}

func (f *fakeService) GetBooking(ctx context.Context, eventID int) (*models.VenueBookingDTO, error) {
	f.record("booking")
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[eventID]
	if !ok {
		return nil, apperrors.PartialFetchFailure("venue booking", 404)
	}
	return booking, nil
}

func (f *fakeService) GetBudget(ctx context.Context, eventID int) (*models.Budget, error) {
	f.record("budget")
	f.wait(f.budgetGates, eventID)
	f.mu.Lock()
	defer f.mu.Unlock()
	budget, ok := f.budgets[eventID]
	if !ok {
		return nil, apperrors.PartialFetchFailure("budget", 404)
	}
	return budget, nil
}

func (f *fakeService) DeleteEvent(ctx context.Context, eventID int) error {
	f.record("delete")
	f.mu.Lock()
	gate := f.deleteGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, eventID)
	return nil
}

func (f *fakeService) JoinEvent(ctx context.Context, ownerUserID int, req models.JoinRequest, token string) error {
	f.record("join")
	f.mu.Lock()
	gate := f.joinGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, joinCall{ownerUserID: ownerUserID, req: req, token: token})
	return f.joinErr
}

func (f *fakeService) joinCalls() []joinCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]joinCall(nil), f.joins...)
}

func intPtr(v int) *int { return &v }

// seedEvent stores an event owned by ownerID at 2024-05-01 10:00-12:00
func (f *fakeService) seedEvent(eventID, ownerID int, venueID *int) {
	f.events[eventID] = &models.EventDTO{
		EventID:        eventID,
		UserID:         ownerID,
		EventName:      "Gala",
		EventType:      "Party",
		EventDate:      []int{2024, 5, 1},
		EventStartTime: []int{10, 0},
		EventEndTime:   []int{12, 0},
		VenueID:        venueID,
	}
	f.budgets[eventID] = &models.Budget{
		VenueCost:             decimal.RequireFromString("1500.00"),
		BeverageCostPerPerson: decimal.RequireFromString("12.50"),
		GuestNumber:           40,
		TotalBudget:           decimal.RequireFromString("2000.00"),
	}
}
