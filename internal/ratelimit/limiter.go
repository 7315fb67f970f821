// Package ratelimit keeps generation calls under per-minute request and
// token budgets using rolling windows.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"cfgprobe/internal/generate"
)

// Window is the rolling window both budgets are measured over.
const Window = time.Minute

// OutputReserve is the output token estimate held for a call until its
// real usage is known.
const OutputReserve uint64 = 2048

// minWait keeps a denied caller from spinning when an expiry is due now.
const minWait = 10 * time.Millisecond

// Limits are per-minute budgets. Zero disables a budget.
type Limits struct {
	RequestsPerMinute int
	TokensPerMinute   int
}

// Enabled reports whether any budget is set.
func (l Limits) Enabled() bool {
	return l.RequestsPerMinute > 0 || l.TokensPerMinute > 0
}

// Decision is the outcome of a reservation attempt.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter admits calls against the configured budgets. It is safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	requests *rollingLimit
	tokens   *rollingLimit
	now      func() time.Time
}

// New builds a limiter. A nil now uses time.Now.
func New(limits Limits, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	l := &Limiter{now: now}
	if limits.RequestsPerMinute > 0 {
		l.requests = newRollingLimit(uint64(limits.RequestsPerMinute))
	}
	if limits.TokensPerMinute > 0 {
		l.tokens = newRollingLimit(uint64(limits.TokensPerMinute))
	}
	return l
}

// Reserve tries to admit one request using tokens tokens under leaseID.
// A token estimate above the budget is clamped so a single large call can
// still run in an otherwise empty window.
func (l *Limiter) Reserve(leaseID string, tokens uint64) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	limits := l.active()
	for _, lim := range limits {
		lim.expire(now)
	}
	if l.tokens != nil && tokens > l.tokens.cap {
		tokens = l.tokens.cap
	}

	var wait time.Duration
	for _, lim := range limits {
		amount := uint64(1)
		if lim == l.tokens {
			amount = tokens
		}
		if lim.fits(amount) {
			continue
		}
		d := minWait
		if next, ok := lim.nextExpiry(); ok && next.Sub(now) > d {
			d = next.Sub(now)
		}
		wait = max(wait, d)
	}
	if wait > 0 {
		return Decision{RetryAfter: wait}
	}

	expiresAt := now.Add(Window)
	if l.requests != nil {
		l.requests.add(leaseID, 1, expiresAt)
	}
	if l.tokens != nil {
		l.tokens.add(leaseID, tokens, expiresAt)
	}
	return Decision{Allowed: true}
}

// Reconcile lowers the token reservation of leaseID to the actual usage.
func (l *Limiter) Reconcile(leaseID string, actual uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tokens != nil {
		l.tokens.reduce(leaseID, actual)
	}
}

func (l *Limiter) active() []*rollingLimit {
	var out []*rollingLimit
	if l.requests != nil {
		out = append(out, l.requests)
	}
	if l.tokens != nil {
		out = append(out, l.tokens)
	}
	return out
}

// EstimateTokens approximates the tokens a request consumes: four bytes
// per input token over the prompt and grammar, plus the output reserve.
func EstimateTokens(req generate.Request) uint64 {
	size := len(req.Prompt)
	if req.Tool != nil {
		size += len(req.Tool.Description) + len(req.Tool.Grammar.Definition)
	}
	return uint64(size/4) + OutputReserve
}

// Option configures a wrapped generator.
type Option func(*generator)

// WithClock sets the clock used for the rolling windows.
func WithClock(now func() time.Time) Option {
	return func(g *generator) { g.now = now }
}

// WithSleep sets the wait used between denied reservations.
func WithSleep(sleep generate.SleepFunc) Option {
	return func(g *generator) { g.sleep = sleep }
}

// WithLogger sets the logger for throttling events.
func WithLogger(logger *slog.Logger) Option {
	return func(g *generator) { g.logger = logger }
}

type generator struct {
	inner   generate.Generator
	limiter *Limiter
	now     func() time.Time
	sleep   generate.SleepFunc
	logger  *slog.Logger
}

// Wrap returns a generator that waits for budget before each call to
// inner. With no budgets set inner is returned unchanged.
func Wrap(inner generate.Generator, limits Limits, opts ...Option) generate.Generator {
	if !limits.Enabled() {
		return inner
	}
	g := &generator{inner: inner, sleep: generate.SleepContext}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.New(slog.DiscardHandler)
	}
	g.limiter = New(limits, g.now)
	return g
}

// Generate reserves budget, calls the inner generator and reconciles the
// token reservation with the reported usage.
func (g *generator) Generate(ctx context.Context, req generate.Request) (generate.Response, error) {
	leaseID := uuid.NewString()
	estimate := EstimateTokens(req)
	for {
		if err := ctx.Err(); err != nil {
			return generate.Response{}, err
		}
		decision := g.limiter.Reserve(leaseID, estimate)
		if decision.Allowed {
			break
		}
		g.logger.Debug("rate limited", "model", req.Model, "retry_after", decision.RetryAfter)
		if err := g.sleep(ctx, decision.RetryAfter); err != nil {
			return generate.Response{}, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}
	resp, err := g.inner.Generate(ctx, req)
	if err == nil && resp.Usage != nil {
		g.limiter.Reconcile(leaseID, uint64(max(0, resp.Usage.InputTokens+resp.Usage.OutputTokens)))
	}
	return resp, err
}
