package usecase

import (
	"fmt"

	"github.com/event-planner-client/services/event-detail/models"
)

// Capability is a mutating action a viewer may invoke on an event
type Capability string

const (
	CapUpdate       Capability = "update"
	CapManageVenue  Capability = "manage-venue"
	CapManageBudget Capability = "manage-budget"
	CapManageGuests Capability = "manage-guests"
	CapDelete       Capability = "delete"
	CapJoin         Capability = "join"
)

var ownerCapabilities = []Capability{CapUpdate, CapManageVenue, CapManageBudget, CapManageGuests, CapDelete}

// CapabilitySet is an ordered set of capabilities
type CapabilitySet []Capability

// Has reports membership
func (s CapabilitySet) Has(c Capability) bool {
	for _, have := range s {
		if have == c {
			return true
		}
	}
	return false
}

// Without returns a copy with c removed
func (s CapabilitySet) Without(c Capability) CapabilitySet {
	out := make(CapabilitySet, 0, len(s))
	for _, have := range s {
		if have != c {
			out = append(out, have)
		}
	}
	return out
}

// IsOwner reports whether the session belongs to the event's organizer
func IsOwner(session *models.Session, event *models.Event) bool {
	return session != nil && event != nil && session.UserID == event.UserID
}

// ResolveCapabilities derives the viewer's permitted actions from ownership.
// It holds no state; call it on every render.
func ResolveCapabilities(session *models.Session, event *models.Event) CapabilitySet {
	if session == nil || event == nil {
		return CapabilitySet{}
	}
	if session.UserID == event.UserID {
		return append(CapabilitySet{}, ownerCapabilities...)
	}
	return CapabilitySet{CapJoin}
}

// OwnerRoute is the page an owner action navigates to
func OwnerRoute(c Capability, eventID int) (string, bool) {
	switch c {
	case CapUpdate:
		return fmt.Sprintf("/event/%d/update", eventID), true
	case CapManageVenue:
		return fmt.Sprintf("/venue-booking/%d", eventID), true
	case CapManageBudget:
		return fmt.Sprintf("/event/%d/budget-management", eventID), true
	case CapManageGuests:
		return fmt.Sprintf("/event/%d/guests", eventID), true
	}
	return "", false
}

// VenueActionLabel names the venue button depending on whether a venue is booked
func VenueActionLabel(venue *models.Venue) string {
	if venue != nil {
		return "Change Venue Booking"
	}
	return "Book Venue"
}
