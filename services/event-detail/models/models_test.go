package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		name    string
		parts   []int
		want    string
		wantErr bool
	}{
		{"pads month and day", []int{2024, 3, 9}, "2024-03-09", false},
		{"two digit month and day", []int{2024, 12, 25}, "2024-12-25", false},
		{"pads short year", []int{987, 1, 1}, "0987-01-01", false},
		{"invalid day", []int{2024, 2, 30}, "", true},
		{"missing day", []int{2024, 2}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatDate(tt.parts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		name    string
		parts   []int
		want    string
		wantErr bool
	}{
		{"pads both", []int{9, 5}, "09:05", false},
		{"afternoon", []int{18, 30}, "18:30", false},
		{"drops seconds", []int{7, 0, 45}, "07:00", false},
		{"hour out of range", []int{25, 0}, "", true},
		{"empty", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatTime(tt.parts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEventDTO_Normalize(t *testing.T) {
	raw := `{
		"eventId": 42, "userId": 9, "eventName": "Launch", "eventType": "Party",
		"eventDate": [2024, 6, 1], "eventStartTime": [8, 0], "eventEndTime": [17, 45],
		"eventDescription": "Product launch", "venueId": null
	}`

	var dto EventDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))

	event, err := dto.Normalize()
	require.NoError(t, err)

	assert.Equal(t, 42, event.EventID)
	assert.Equal(t, 9, event.UserID)
	assert.Equal(t, "2024-06-01", event.EventDate)
	assert.Equal(t, "08:00", event.EventStartTime)
	assert.Equal(t, "17:45", event.EventEndTime)
	assert.Nil(t, event.VenueID)
	assert.False(t, event.HasVenue())
}

func TestEventDTO_NormalizeRejectsBadTime(t *testing.T) {
	dto := EventDTO{EventDate: []int{2024, 6, 1}, EventStartTime: []int{8}, EventEndTime: []int{9, 0}}
	_, err := dto.Normalize()
	assert.ErrorContains(t, err, "eventStartTime")
}

func TestVenueBookingDTO_Normalize(t *testing.T) {
	dto := VenueBookingDTO{
		BookingDate:      []int{2024, 6, 1},
		BookingStartTime: []int{8, 0},
		BookingEndTime:   []int{17, 45},
	}
	booking, err := dto.Normalize()
	require.NoError(t, err)
	assert.Equal(t, VenueBooking{BookingDate: "2024-06-01", BookingStartTime: "08:00", BookingEndTime: "17:45"}, *booking)
}

func TestBudget_DecodesNumbers(t *testing.T) {
	var b Budget
	raw := `{"venueCost": 1500.50, "beverageCostPerPerson": 12.25, "guestNumber": 40, "totalBudget": "1990.50"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &b))

	assert.True(t, b.VenueCost.Equal(decimal.RequireFromString("1500.5")))
	assert.True(t, b.BeverageCostPerPerson.Equal(decimal.RequireFromString("12.25")))
	assert.Equal(t, 40, b.GuestNumber)
	assert.True(t, b.TotalBudget.Equal(decimal.RequireFromString("1990.5")))
}

func TestViewState_CloneIsDeep(t *testing.T) {
	venueID := 3
	v := ViewState{
		Event:   &Event{EventID: 1, VenueID: &venueID},
		Booking: &VenueBooking{BookingDate: "2024-01-01"},
	}
	c := v.Clone()
	c.Event.EventName = "changed"
	*c.Event.VenueID = 99
	c.Booking.BookingDate = "2025-01-01"

	assert.Empty(t, v.Event.EventName)
	assert.Equal(t, 3, *v.Event.VenueID)
	assert.Equal(t, "2024-01-01", v.Booking.BookingDate)
}
