package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_Decide(t *testing.T) {
	policy := NewRetryPolicy(3)

	tests := []struct {
		name       string
		requested  BookingStatus
		retryCount int
		want       RetryDecision
	}{
		{
			name:       "rejection below ceiling recycles",
			requested:  StatusRejected,
			retryCount: 0,
			want:       RetryDecision{Recycle: true, FinalStatus: StatusPending, NextRetryCount: 1, Reason: StatusRejected},
		},
		{
			name:       "no-show below ceiling recycles",
			requested:  StatusNoShow,
			retryCount: 2,
			want:       RetryDecision{Recycle: true, FinalStatus: StatusPending, NextRetryCount: 3, Reason: StatusNoShow},
		},
		{
			name:       "no-show at ceiling sticks",
			requested:  StatusNoShow,
			retryCount: 3,
			want:       RetryDecision{FinalStatus: StatusNoShow, NextRetryCount: 3},
		},
		{
			name:       "rejection at ceiling sticks",
			requested:  StatusRejected,
			retryCount: 3,
			want:       RetryDecision{FinalStatus: StatusRejected, NextRetryCount: 3},
		},
		{
			name:       "other statuses pass through",
			requested:  StatusAccepted,
			retryCount: 1,
			want:       RetryDecision{FinalStatus: StatusAccepted, NextRetryCount: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Decide(tt.requested, tt.retryCount))
		})
	}
}

func TestNewRetryPolicy_DefaultsCeiling(t *testing.T) {
	assert.Equal(t, DefaultMaxRetries, NewRetryPolicy(0).MaxRetries)
	assert.Equal(t, 5, NewRetryPolicy(5).MaxRetries)
}
