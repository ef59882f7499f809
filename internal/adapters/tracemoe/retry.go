package tracemoe

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultMinWait     = 1 * time.Second
	defaultMaxWait     = 5 * time.Second
)

// RetryPolicy decides, after each attempt, whether the search should be
// resubmitted and how long to wait first. It holds no state of its own.
type RetryPolicy struct {
	MaxAttempts int
	MinWait     time.Duration
	MaxWait     time.Duration
	// Jitter returns a value in [0, 1). Defaults to math/rand.
	Jitter func() float64
}

// DefaultRetryPolicy allows five attempts with a 1-5s randomized wait.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: defaultMaxAttempts,
		MinWait:     defaultMinWait,
		MaxWait:     defaultMaxWait,
		Jitter:      rand.Float64,
	}
}

// Retryable reports whether an attempt ending with status may be retried.
// Status 0 means no response was obtained. 402 is what the backend answers
// when the per-second quota is briefly exhausted.
func Retryable(status int) bool {
	return status == 0 || status == http.StatusServiceUnavailable || status == http.StatusPaymentRequired
}

// Next is called with the 1-based number of attempts made so far and the
// status of the last one.
func (p RetryPolicy) Next(attempt, status int) (retry bool, wait time.Duration) {
	if attempt >= p.maxAttempts() || !Retryable(status) {
		return false, 0
	}
	return true, p.backoff()
}

func (p RetryPolicy) maxAttempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) backoff() time.Duration {
	if p.MaxWait <= p.MinWait {
		return p.MinWait
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	return p.MinWait + time.Duration(jitter()*float64(p.MaxWait-p.MinWait))
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
