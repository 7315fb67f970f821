package generate

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

// RetryPolicy configures exponential backoff with jitter.
type RetryPolicy struct {
	MaxRetries int
	Base       time.Duration
	Cap        time.Duration
}

// DefaultRetryPolicy allows three retries starting at half a second and
// never sleeping more than eight seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Base:       500 * time.Millisecond,
		Cap:        8 * time.Second,
	}
}

// Delay returns the sleep before retry number attempt (0-based).
// jitter is in [0, 1) and scales the delay into [50%, 100%).
func (p RetryPolicy) Delay(attempt int, jitter float64) time.Duration {
	raw := float64(p.Base) * math.Pow(2, float64(attempt))
	if limit := float64(p.Cap); p.Cap > 0 && raw > limit {
		raw = limit
	}
	return time.Duration(raw * (0.5 + jitter/2))
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepContext is the default SleepFunc.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retrier runs an operation under a RetryPolicy.
type retrier struct {
	policy RetryPolicy
	sleep  SleepFunc
	jitter func() float64
	logger *slog.Logger
}

// do calls op until it succeeds, fails with a non-retryable error or the
// attempts run out. The last error is returned unmodified.
func (r retrier) do(ctx context.Context, op func(ctx context.Context) (Response, error)) (Response, error) {
	sleep := r.sleep
	if sleep == nil {
		sleep = SleepContext
	}
	jitter := r.jitter
	if jitter == nil {
		jitter = rand.Float64
	}
	logger := r.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	maxRetries := r.policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := op(ctx)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !Retryable(err) || attempt == maxRetries {
			break
		}
		delay := r.policy.Delay(attempt, jitter())
		logger.Debug("retrying generation request", "attempt", attempt+1, "max_retries", maxRetries, "delay", delay, "kind", KindOf(err).String(), "error", err)
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return Response{}, &Error{Kind: KindCanceled, Err: sleepErr}
		}
	}
	return Response{}, lastErr
}
