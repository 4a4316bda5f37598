package usecase

import (
	"context"
	"sync"

	"github.com/event-planner-client/services/event-detail/models"
)

// EventService is the part of the event REST API the detail page consumes.
// repository.EventRepository implements it.
type EventService interface {
	GetEvent(ctx context.Context, eventID int) (*models.EventDTO, error)
	GetVenue(ctx context.Context, venueID int) (*models.Venue, error)
	GetBooking(ctx context.Context, eventID int) (*models.VenueBookingDTO, error)
	GetBudget(ctx context.Context, eventID int) (*models.Budget, error)
	DeleteEvent(ctx context.Context, eventID int) error
	JoinEvent(ctx context.Context, ownerUserID int, req models.JoinRequest, token string) error
}

// Navigator performs client-side navigation side effects
type Navigator interface {
	ScrollToTop()
	Navigate(route string)
}

// HomeRoute is where a deleted event's page sends the viewer
const HomeRoute = "/"

// RouteRecorder is a Navigator that remembers what was asked of it.
// Server-rendered pages read it back to emit scroll and redirect instructions.
type RouteRecorder struct {
	mu       sync.Mutex
	scrolled bool
	routes   []string
}

func (r *RouteRecorder) ScrollToTop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scrolled = true
}

func (r *RouteRecorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Scrolled reports whether ScrollToTop was called
func (r *RouteRecorder) Scrolled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scrolled
}

// Routes returns every navigation in call order
func (r *RouteRecorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}
