package booking

import "fmt"

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusAssigned   BookingStatus = "assigned"
	StatusAccepted   BookingStatus = "accepted"
	StatusRejected   BookingStatus = "rejected"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
	StatusFailed     BookingStatus = "failed"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []BookingStatus{
	StatusPending,
	StatusAssigned,
	StatusAccepted,
	StatusRejected,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
	StatusFailed,
}

// validTransitions defines the state machine for non-admin status transitions.
var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusAccepted, StatusRejected, StatusCancelled},
	StatusAccepted:   {StatusInProgress, StatusNoShow, StatusCancelled},
	StatusRejected:   {StatusPending, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
	StatusNoShow:     {StatusPending, StatusCancelled},
	StatusFailed:     {StatusPending, StatusCancelled},
}

// CanTransition reports whether current may move to requested. An admin override
// bypasses the table entirely.
func CanTransition(current, requested BookingStatus, adminOverride bool) bool {
	if adminOverride {
		return true
	}
	return current.CanTransitionTo(requested)
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s BookingStatus) IsTerminal() bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return true
	}
	return len(allowed) == 0
}

// IsAssignable reports whether a provider may be assigned from this status.
func (s BookingStatus) IsAssignable() bool {
	switch s {
	case StatusPending, StatusRejected, StatusNoShow:
		return true
	case StatusAssigned, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled, StatusFailed:
		return false
	}
	return false
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}
