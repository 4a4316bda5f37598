package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/event-planner-client/common/errors"
	"github.com/event-planner-client/services/event-detail/models"
)

// collector applies updates in order and keeps a copy of the view after each one
type collector struct {
	mu     sync.Mutex
	state  models.ViewState
	frames []models.ViewState
}

func (c *collector) publish(u Update) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u(&c.state)
	c.frames = append(c.frames, c.state.Clone())
}

func TestFetchWithoutVenue(t *testing.T) {
	svc := newFakeService()
	svc.seedEvent(7, 9, nil)

	c := &collector{state: models.ViewState{Loading: true}}
	res := NewResourceFetcher(svc, nil).Fetch(context.Background(), 7, c.publish)

	assert.Equal(t, StatusLoaded, res.Status)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Partial)

	assert.False(t, svc.called("venue"), "venue must not be requested")
	assert.False(t, svc.called("booking"), "booking must not be requested")
	assert.True(t, svc.called("budget"))

	require.NotNil(t, c.state.Event)
	assert.Equal(t, "2024-05-01", c.state.Event.EventDate)
	assert.Equal(t, "10:00", c.state.Event.EventStartTime)
	assert.Nil(t, c.state.Venue)
	assert.Nil(t, c.state.Booking)
	require.NotNil(t, c.state.Budget)
	assert.Equal(t, 40, c.state.Budget.GuestNumber)
}

func TestFetchPublishesEventBeforeDependents(t *testing.T) {
	svc := newFakeService()
	svc.seedEvent(7, 9, intPtr(3))
	svc.venues[3] = &models.Venue{VenueID: 3, VenueName: "Hall A", City: "Hanoi"}
	svc.bookings[7] = &models.VenueBookingDTO{
		BookingDate:      []int{2024, 5, 1},
		BookingStartTime: []int{10, 0},
		BookingEndTime:   []int{12, 0},
	}

	c := &collector{state: models.ViewState{Loading: true}}
	res := NewResourceFetcher(svc, nil).Fetch(context.Background(), 7, c.publish)
	require.Equal(t, StatusLoaded, res.Status)

	require.Len(t, c.frames, 4)
	first := c.frames[0]
	assert.NotNil(t, first.Event)
	assert.False(t, first.Loading)
	assert.Nil(t, first.Venue)
	assert.Nil(t, first.Booking)
	assert.Nil(t, first.Budget)

	require.NotNil(t, c.state.Venue)
	assert.Equal(t, "Hall A", c.state.Venue.VenueName)
	require.NotNil(t, c.state.Booking)
	assert.Equal(t, "12:00", c.state.Booking.BookingEndTime)
}

func TestFetchPartialFailures(t *testing.T) {
	svc := newFakeService()
	svc.seedEvent(7, 9, intPtr(3))
	delete(svc.budgets, 7)
	// venue 3 and booking for 7 are not seeded

	c := &collector{state: models.ViewState{Loading: true}}
	res := NewResourceFetcher(svc, nil).Fetch(context.Background(), 7, c.publish)

	assert.Equal(t, StatusLoaded, res.Status)
	assert.ElementsMatch(t, []string{"venue", "venue booking", "budget"}, res.Partial)
	assert.NotNil(t, c.state.Event)
	assert.Nil(t, c.state.Venue)
	assert.Nil(t, c.state.Booking)
	assert.Nil(t, c.state.Budget)
}

func TestFetchEventFailure(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*fakeService)
		wantCode apperrors.ErrorCode
	}{
		{
			name:     "non-success status",
			setup:    func(*fakeService) {},
			wantCode: apperrors.ErrCodeNotFound,
		},
		{
			name: "no response",
			setup: func(f *fakeService) {
				f.eventErr = apperrors.TransportFailure(errors.New("connection refused"))
			},
			wantCode: apperrors.ErrCodeTransportFailure,
		},
		{
			name: "unparseable date",
			setup: func(f *fakeService) {
				f.seedEvent(7, 9, nil)
				f.events[7].EventDate = []int{2024, 13, 1}
			},
			wantCode: apperrors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			tt.setup(svc)

			c := &collector{state: models.ViewState{Loading: true}}
			res := NewResourceFetcher(svc, nil).Fetch(context.Background(), 7, c.publish)

			assert.Equal(t, StatusNotFound, res.Status)
			assert.True(t, apperrors.HasCode(res.Err, tt.wantCode), "got %v", res.Err)
			assert.Nil(t, c.state.Event)
			assert.False(t, c.state.Loading)
			assert.Equal(t, StatusNotFound, StatusOf(c.state))
			assert.False(t, svc.called("budget"))
		})
	}
}

func TestFetchCancelledDoesNotPublish(t *testing.T) {
	svc := newFakeService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &collector{state: models.ViewState{Loading: true}}
	res := NewResourceFetcher(svc, nil).Fetch(ctx, 7, c.publish)

	assert.Equal(t, StatusLoading, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, c.frames)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusLoading, StatusOf(models.ViewState{Loading: true}))
	assert.Equal(t, StatusLoaded, StatusOf(models.ViewState{Event: &models.Event{EventID: 1}}))
	assert.Equal(t, StatusNotFound, StatusOf(models.ViewState{}))
}
