package booking

// DefaultMaxRetries is the retry ceiling after which a rejection or no-show sticks.
const DefaultMaxRetries = 3

// RetryPolicy decides whether a rejected or no-show booking is recycled to pending.
type RetryPolicy struct {
	MaxRetries int
}

// NewRetryPolicy returns a policy with the given ceiling, falling back to the default
// for non-positive values.
func NewRetryPolicy(maxRetries int) RetryPolicy {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return RetryPolicy{MaxRetries: maxRetries}
}

// RetryDecision is the outcome of RetryPolicy.Decide.
type RetryDecision struct {
	Recycle        bool
	FinalStatus    BookingStatus
	NextRetryCount int
	// Reason is the status that triggered the recycle (rejected or no_show).
	Reason BookingStatus
}

// Decide computes the status that will actually be persisted for requested.
func (p RetryPolicy) Decide(requested BookingStatus, retryCount int) RetryDecision {
	keep := RetryDecision{FinalStatus: requested, NextRetryCount: retryCount}

	switch requested {
	case StatusRejected, StatusNoShow:
		if retryCount >= p.MaxRetries {
			return keep
		}
		return RetryDecision{
			Recycle:        true,
			FinalStatus:    StatusPending,
			NextRetryCount: retryCount + 1,
			Reason:         requested,
		}
	case StatusPending, StatusAssigned, StatusAccepted, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusFailed:
		return keep
	}
	return keep
}
