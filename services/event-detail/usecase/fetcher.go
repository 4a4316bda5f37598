package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/common/logger"
	"github.com/event-planner-client/services/event-detail/models"
)

// LoadStatus is the discriminated result of a detail load
type LoadStatus string

const (
	StatusLoading  LoadStatus = "loading"
	StatusLoaded   LoadStatus = "loaded"
	StatusNotFound LoadStatus = "not_found"
)

// StatusOf derives the load status from a view
func StatusOf(v models.ViewState) LoadStatus {
	switch {
	case v.Loading:
		return StatusLoading
	case v.Event != nil:
		return StatusLoaded
	default:
		return StatusNotFound
	}
}

// Update mutates a view. Updates are applied only while the load that produced them is current.
type Update func(*models.ViewState)

// FetchResult describes how a fetch ended
type FetchResult struct {
	Status LoadStatus
	// Err is the primary-resource failure, nil when the event loaded
	Err error
	// Partial lists dependent resources that failed and were left empty
	Partial []string
}

// ResourceFetcher retrieves the event and its dependent resources
type ResourceFetcher struct {
	svc EventService
	log *logger.Logger
}

// NewResourceFetcher creates a fetcher over the event service
func NewResourceFetcher(svc EventService, log *logger.Logger) *ResourceFetcher {
	if log == nil {
		log = logger.Default()
	}
	return &ResourceFetcher{svc: svc, log: log.With("component", "resource_fetcher")}
}

// Fetch loads eventID, publishing state as each request resolves.
// The event is published (with Loading cleared) before any dependent request starts.
// Venue and booking are requested only when the event has a venue; budget always.
// Dependent failures are logged and leave their slot empty. Nothing is retried.
func (f *ResourceFetcher) Fetch(ctx context.Context, eventID int, publish func(Update)) FetchResult {
	dto, err := f.svc.GetEvent(ctx, eventID)
	if err == nil {
		var event *models.Event
		event, err = dto.Normalize()
		if err == nil {
			return f.fetchDependents(ctx, event, publish)
		}
		err = apperrors.InvalidFormat("event", eventID).WithCause(err)
	}

	if ctx.Err() != nil {
		return FetchResult{Status: StatusLoading, Err: ctx.Err()}
	}
	f.log.WithError(err).With("event_id", eventID).Error("Failed to fetch event details")
	publish(func(v *models.ViewState) {
		v.Event = nil
		v.Loading = false
	})
	return FetchResult{Status: StatusNotFound, Err: err}
}

func (f *ResourceFetcher) fetchDependents(ctx context.Context, event *models.Event, publish func(Update)) FetchResult {
	publish(func(v *models.ViewState) {
		v.Event = event
		v.Loading = false
	})

	// a failed slot stays empty and is reported through partial, so the
	// goroutines never return an error and one failure cannot cancel the others
	var (
		g       errgroup.Group
		partial = make(chan string, 3)
	)

	if event.HasVenue() {
		venueID := *event.VenueID
		g.Go(func() error {
			venue, err := f.svc.GetVenue(ctx, venueID)
			if err != nil {
				f.logPartial(ctx, "venue", event.EventID, err)
				partial <- "venue"
				return nil
			}
			publish(func(v *models.ViewState) { v.Venue = venue })
			return nil
		})

		g.Go(func() error {
			dto, err := f.svc.GetBooking(ctx, event.EventID)
			var booking *models.VenueBooking
			if err == nil {
				booking, err = dto.Normalize()
			}
			if err != nil {
				f.logPartial(ctx, "venue booking", event.EventID, err)
				partial <- "venue booking"
				return nil
			}
			publish(func(v *models.ViewState) { v.Booking = booking })
			return nil
		})
	}

	g.Go(func() error {
		budget, err := f.svc.GetBudget(ctx, event.EventID)
		if err != nil {
			f.logPartial(ctx, "budget", event.EventID, err)
			partial <- "budget"
			return nil
		}
		publish(func(v *models.ViewState) { v.Budget = budget })
		return nil
	})

	g.Wait()
	close(partial)

	res := FetchResult{Status: StatusLoaded}
	for name := range partial {
		res.Partial = append(res.Partial, name)
	}
	return res
}

func (f *ResourceFetcher) logPartial(ctx context.Context, resource string, eventID int, err error) {
	if ctx.Err() != nil {
		return
	}
	f.log.WithError(err).WithFields(map[string]interface{}{
		"event_id": eventID,
		"resource": resource,
	}).Warn("Failed to fetch %s details", resource)
}
