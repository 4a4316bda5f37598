package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/event-planner-client/services/event-detail/models"
)

func TestConsistencyMatch(t *testing.T) {
	event := &models.Event{EventDate: "2024-05-01", EventStartTime: "10:00", EventEndTime: "12:00"}

	tests := []struct {
		name         string
		event        *models.Event
		booking      *models.VenueBooking
		wantMatch    bool
		wantMismatch bool
	}{
		{
			name:      "identical booking",
			event:     event,
			booking:   &models.VenueBooking{BookingDate: "2024-05-01", BookingStartTime: "10:00", BookingEndTime: "12:00"},
			wantMatch: true,
		},
		{
			name:         "different date",
			event:        event,
			booking:      &models.VenueBooking{BookingDate: "2024-05-02", BookingStartTime: "10:00", BookingEndTime: "12:00"},
			wantMismatch: true,
		},
		{
			name:         "different start",
			event:        event,
			booking:      &models.VenueBooking{BookingDate: "2024-05-01", BookingStartTime: "09:30", BookingEndTime: "12:00"},
			wantMismatch: true,
		},
		{
			name:         "different end",
			event:        event,
			booking:      &models.VenueBooking{BookingDate: "2024-05-01", BookingStartTime: "10:00", BookingEndTime: "13:00"},
			wantMismatch: true,
		},
		{
			name:  "no booking shows no warning",
			event: event,
		},
		{
			name:    "no event",
			booking: &models.VenueBooking{BookingDate: "2024-05-01"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, ConsistencyMatch(tt.event, tt.booking))
			assert.Equal(t, tt.wantMismatch, MismatchWarning(tt.event, tt.booking))
		})
	}
}
