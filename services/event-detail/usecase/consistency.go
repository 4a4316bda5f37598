package usecase

import "github.com/event-planner-client/services/event-detail/models"

// ConsistencyMatch reports whether a booking exists and agrees with the event on date, start and end.
// Comparison uses the normalized YYYY-MM-DD / HH:MM strings.
func ConsistencyMatch(event *models.Event, booking *models.VenueBooking) bool {
	if event == nil || booking == nil {
		return false
	}
	return booking.BookingDate == event.EventDate &&
		booking.BookingStartTime == event.EventStartTime &&
		booking.BookingEndTime == event.EventEndTime
}

// MismatchWarning reports whether the informational "booking does not match" notice should show.
// A missing booking means nothing has been booked yet, which is not a mismatch.
func MismatchWarning(event *models.Event, booking *models.VenueBooking) bool {
	if event == nil || booking == nil {
		return false
	}
	return !ConsistencyMatch(event, booking)
}
