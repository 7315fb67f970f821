package generate

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// TestRetryPolicyDelay verifies exponential growth, the cap and jitter scaling.
func TestRetryPolicyDelay(t *testing.T) {
	p := DefaultRetryPolicy()
	cases := []struct {
		attempt int
		jitter  float64
		want    time.Duration
	}{
		{0, 1, 500 * time.Millisecond},
		{1, 1, time.Second},
		{2, 1, 2 * time.Second},
		{5, 1, 8 * time.Second},
		{10, 1, 8 * time.Second},
		{0, 0, 250 * time.Millisecond},
		{5, 0, 4 * time.Second},
	}
	for _, tc := range cases {
		if got := p.Delay(tc.attempt, tc.jitter); got != tc.want {
			t.Fatalf("Delay(%d, %v) = %v, want %v", tc.attempt, tc.jitter, got, tc.want)
		}
	}
}

// TestRetrierStopsOnSleepCancel verifies cancellation during backoff.
func TestRetrierStopsOnSleepCancel(t *testing.T) {
	calls := 0
	r := retrier{
		policy: DefaultRetryPolicy(),
		sleep: func(context.Context, time.Duration) error {
			return context.Canceled
		},
		jitter: func() float64 { return 0.5 },
	}
	_, err := r.do(context.Background(), func(context.Context) (Response, error) {
		calls++
		return Response{}, &Error{Kind: KindNetwork, Err: errors.New("reset")}
	})
	if calls != 1 {
		t.Fatalf("expected one attempt, got %d", calls)
	}
	if KindOf(err) != KindCanceled {
		t.Fatalf("expected canceled, got %v", err)
	}
}

// TestRetrierZeroRetries verifies a single attempt when retries are disabled.
func TestRetrierZeroRetries(t *testing.T) {
	calls := 0
	r := retrier{policy: RetryPolicy{MaxRetries: 0}, sleep: noSleep}
	want := &Error{Kind: KindServer, Status: 500}
	_, err := r.do(context.Background(), func(context.Context) (Response, error) {
		calls++
		return Response{}, want
	})
	if calls != 1 {
		t.Fatalf("expected one attempt, got %d", calls)
	}
	if err != want {
		t.Fatalf("expected last error unmodified, got %v", err)
	}
}

// TestRetrierUnclassifiedErrorNotRetried verifies plain errors stop the loop.
func TestRetrierUnclassifiedErrorNotRetried(t *testing.T) {
	calls := 0
	r := retrier{policy: DefaultRetryPolicy(), sleep: noSleep}
	_, err := r.do(context.Background(), func(context.Context) (Response, error) {
		calls++
		return Response{}, errors.New("boom")
	})
	if err == nil || calls != 1 {
		t.Fatalf("expected single failing attempt, got calls=%d err=%v", calls, err)
	}
}

// TestStatusKind verifies HTTP status classification.
func TestStatusKind(t *testing.T) {
	cases := map[int]Kind{
		http.StatusTooManyRequests:     KindRateLimit,
		http.StatusRequestTimeout:      KindTimeout,
		http.StatusInternalServerError: KindServer,
		http.StatusGatewayTimeout:      KindServer,
		http.StatusBadRequest:          KindClient,
		http.StatusUnauthorized:        KindClient,
		http.StatusNotFound:            KindClient,
	}
	for status, want := range cases {
		if got := statusKind(status); got != want {
			t.Fatalf("statusKind(%d) = %s, want %s", status, got, want)
		}
	}
}

// TestTransportError verifies cancellation and timeout classification.
func TestTransportError(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := transportError(canceled, errors.New("x")); got.Kind != KindCanceled {
		t.Fatalf("expected canceled, got %s", got.Kind)
	}
	if got := transportError(context.Background(), context.DeadlineExceeded); got.Kind != KindTimeout {
		t.Fatalf("expected timeout, got %s", got.Kind)
	}
	if got := transportError(context.Background(), errors.New("connection refused")); got.Kind != KindNetwork {
		t.Fatalf("expected network, got %s", got.Kind)
	}
}

// TestErrorMessage verifies error rendering.
func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindClient, Status: 401, Message: "bad key"}
	if got := err.Error(); got != "generation failed (client, HTTP 401): bad key" {
		t.Fatalf("unexpected message: %q", got)
	}
	wrapped := &Error{Kind: KindNetwork, Err: errors.New("reset")}
	if got := wrapped.Error(); got != "generation failed (network): reset" {
		t.Fatalf("unexpected message: %q", got)
	}
}
