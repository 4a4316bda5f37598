package models

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/event-planner-client/common/validator"
)

// ============================================================
// Wire shapes - as the event service serializes them
// Dates arrive as [year, month, day], times as [hour, minute]
// ============================================================

// EventDTO is the body of GET /events/{eventId}
type EventDTO struct {
	EventID          int    `json:"eventId"`
	UserID           int    `json:"userId"`
	EventName        string `json:"eventName"`
	EventType        string `json:"eventType"`
	EventDate        []int  `json:"eventDate"`
	EventStartTime   []int  `json:"eventStartTime"`
	EventEndTime     []int  `json:"eventEndTime"`
	EventDescription string `json:"eventDescription"`
	VenueID          *int   `json:"venueId"`
}

// VenueBookingDTO is the body of GET /bookings/{eventId}
type VenueBookingDTO struct {
	BookingID        int   `json:"bookingId,omitempty"`
	EventID          int   `json:"eventId,omitempty"`
	VenueID          int   `json:"venueId,omitempty"`
	BookingDate      []int `json:"bookingDate"`
	BookingStartTime []int `json:"bookingStartTime"`
	BookingEndTime   []int `json:"bookingEndTime"`
}

// ============================================================
// View models - normalized for rendering and comparison
// ============================================================

// Event is owned by exactly one user (the organizer)
type Event struct {
	EventID          int    `json:"eventId"`
	UserID           int    `json:"userId"`
	EventName        string `json:"eventName"`
	EventType        string `json:"eventType"`
	EventDate        string `json:"eventDate"`      // YYYY-MM-DD
	EventStartTime   string `json:"eventStartTime"` // HH:MM
	EventEndTime     string `json:"eventEndTime"`   // HH:MM
	EventDescription string `json:"eventDescription"`
	VenueID          *int   `json:"venueId"`
}

// HasVenue reports whether dependent venue and booking lookups apply
func (e *Event) HasVenue() bool {
	return e != nil && e.VenueID != nil
}

// Venue is present only when the event references one
type Venue struct {
	VenueID   int    `json:"venueId"`
	VenueName string `json:"venueName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
	ImageURL  string `json:"imageUrl"`
}

// VenueBooking is the reservation tied 1:1 to an event; it may disagree with the event's date and times
type VenueBooking struct {
	BookingDate      string `json:"bookingDate"`
	BookingStartTime string `json:"bookingStartTime"`
	BookingEndTime   string `json:"bookingEndTime"`
}

// Budget is 1:1 with an event
type Budget struct {
	VenueCost             decimal.Decimal `json:"venueCost"`
	BeverageCostPerPerson decimal.Decimal `json:"beverageCostPerPerson"`
	GuestNumber           int             `json:"guestNumber"`
	TotalBudget           decimal.Decimal `json:"totalBudget"`
}

// Session is the signed-in identity; a nil *Session is an anonymous viewer
type Session struct {
	UserID int    `json:"userId"`
	Token  string `json:"token"`
}

// ViewState is the aggregate held for one detail-page visit
type ViewState struct {
	Event            *Event        `json:"event"`
	Venue            *Venue        `json:"venue"`
	Booking          *VenueBooking `json:"booking"`
	Budget           *Budget       `json:"budget"`
	Loading          bool          `json:"loading"`
	ConsistencyMatch bool          `json:"consistencyMatch"`
}

// Clone returns a copy whose pointers can be handed to renderers
func (v ViewState) Clone() ViewState {
	out := v
	if v.Event != nil {
		e := *v.Event
		if v.Event.VenueID != nil {
			id := *v.Event.VenueID
			e.VenueID = &id
		}
		out.Event = &e
	}
	if v.Venue != nil {
		venue := *v.Venue
		out.Venue = &venue
	}
	if v.Booking != nil {
		b := *v.Booking
		out.Booking = &b
	}
	if v.Budget != nil {
		b := *v.Budget
		out.Budget = &b
	}
	return out
}

// ============================================================
// Join request - POST /guests/{ownerUserId}/manage
// ============================================================

// GuestStatusAccepted is the guest status a self-join records
const GuestStatusAccepted = "accepted"

// JoinRequest is the guest record a viewer submits to join an event
type JoinRequest struct {
	UserID  int    `json:"userId"`
	EventID int    `json:"eventId"`
	Status  string `json:"status"`
}

// ============================================================
// Notifications
// ============================================================

// Variant selects how a notification is styled
type Variant string

const (
	VariantSuccess Variant = "success"
	VariantDanger  Variant = "danger"
	VariantInfo    Variant = "info"
)

// Notification is the single transient message slot
type Notification struct {
	Text    string  `json:"text"`
	Variant Variant `json:"variant"`
	Visible bool    `json:"visible"`
}

// ============================================================
// Normalization
// ============================================================

// FormatDate renders [year, month, day] as zero-padded YYYY-MM-DD
func FormatDate(parts []int) (string, error) {
	if !validator.IsValidDateArray(parts) {
		return "", fmt.Errorf("invalid date %v", parts)
	}
	return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2]), nil
}

// FormatTime renders [hour, minute] as zero-padded HH:MM; trailing seconds are dropped
func FormatTime(parts []int) (string, error) {
	if !validator.IsValidTimeArray(parts) {
		return "", fmt.Errorf("invalid time %v", parts)
	}
	return fmt.Sprintf("%02d:%02d", parts[0], parts[1]), nil
}

// Normalize converts the wire event into its view form
func (d EventDTO) Normalize() (*Event, error) {
	date, err := FormatDate(d.EventDate)
	if err != nil {
		return nil, fmt.Errorf("eventDate: %w", err)
	}
	start, err := FormatTime(d.EventStartTime)
	if err != nil {
		return nil, fmt.Errorf("eventStartTime: %w", err)
	}
	end, err := FormatTime(d.EventEndTime)
	if err != nil {
		return nil, fmt.Errorf("eventEndTime: %w", err)
	}

	return &Event{
		EventID:          d.EventID,
		UserID:           d.UserID,
		EventName:        d.EventName,
		EventType:        d.EventType,
		EventDate:        date,
		EventStartTime:   start,
		EventEndTime:     end,
		EventDescription: d.EventDescription,
		VenueID:          d.VenueID,
	}, nil
}

// Normalize converts the wire booking into its view form
func (d VenueBookingDTO) Normalize() (*VenueBooking, error) {
	date, err := FormatDate(d.BookingDate)
	if err != nil {
		return nil, fmt.Errorf("bookingDate: %w", err)
	}
	start, err := FormatTime(d.BookingStartTime)
	if err != nil {
		return nil, fmt.Errorf("bookingStartTime: %w", err)
	}
	end, err := FormatTime(d.BookingEndTime)
	if err != nil {
		return nil, fmt.Errorf("bookingEndTime: %w", err)
	}

	return &VenueBooking{
		BookingDate:      date,
		BookingStartTime: start,
		BookingEndTime:   end,
	}, nil
}
