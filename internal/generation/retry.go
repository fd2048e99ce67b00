package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Default retry settings.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// RetryState is a state of the retry state machine for one call.
type RetryState string

// Retry states. A call moves Idle → Requesting, then to Succeeded, Failed or
// Backoff; Backoff always returns to Requesting with the attempt incremented.
const (
	StateIdle       RetryState = "idle"
	StateRequesting RetryState = "requesting"
	StateBackoff    RetryState = "backoff"
	StateSucceeded  RetryState = "succeeded"
	StateFailed     RetryState = "failed"
)

// RetryConfig bounds the retry loop.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int

	// BaseDelay is the backoff unit; the wait before retry n (0-based) is
	// BaseDelay * 2^n plus jitter.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns a RetryConfig with the default settings.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
	}
}

// WaitFunc blocks for d or until ctx is done, returning the context error in
// the latter case.
type WaitFunc func(ctx context.Context, d time.Duration) error

// JitterFunc returns a random extra delay for the given base delay.
type JitterFunc func(base time.Duration) time.Duration

// CallFunc issues one request attempt.
type CallFunc func(ctx context.Context) (string, error)

// Retrier wraps a completion call with bounded exponential-backoff retry on
// rate-limit signals. It keeps no state between calls and is safe for
// concurrent use.
type Retrier struct {
	maxRetries int
	baseDelay  time.Duration
	wait       WaitFunc
	jitter     JitterFunc
	logger     *slog.Logger
}

// RetrierOption customizes a Retrier.
type RetrierOption func(*Retrier)

// WithWaitFunc replaces the timer-based wait, mainly for tests.
func WithWaitFunc(wait WaitFunc) RetrierOption {
	return func(r *Retrier) {
		if wait != nil {
			r.wait = wait
		}
	}
}

// WithJitter replaces the random jitter source.
func WithJitter(jitter JitterFunc) RetrierOption {
	return func(r *Retrier) {
		if jitter != nil {
			r.jitter = jitter
		}
	}
}

// NewRetrier creates a Retrier. Invalid settings fall back to the defaults.
func NewRetrier(cfg RetryConfig, logger *slog.Logger, opts ...RetrierOption) (*Retrier, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.MaxRetries < 0 {
		logger.Warn("invalid max retries value, using default",
			"max_retries", cfg.MaxRetries,
			"default", DefaultMaxRetries)
		cfg.MaxRetries = DefaultMaxRetries
	}

	if cfg.BaseDelay <= 0 {
		logger.Warn("invalid base delay value, using default",
			"base_delay", cfg.BaseDelay,
			"default", DefaultBaseDelay)
		cfg.BaseDelay = DefaultBaseDelay
	}

	r := &Retrier{
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		wait:       Sleep,
		jitter:     randomJitter,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// MaxRetries returns the configured retry bound.
func (r *Retrier) MaxRetries() int {
	return r.maxRetries
}

// Delay returns the backoff before the retry that follows attempt (0-based):
// baseDelay * 2^attempt + jitter.
func (r *Retrier) Delay(attempt int) time.Duration {
	return r.baseDelay<<attempt + r.jitter(r.baseDelay)
}

// Do runs call until it succeeds, fails with a non-rate-limit error, or is
// still rate limited after MaxRetries retries.
//
// Errors other than rate limiting are returned at once, wrapped in
// ErrUpstream. Exhausted retries return ErrRateLimitExceeded. Context
// cancellation during a call or a backoff wait returns the context error.
func (r *Retrier) Do(ctx context.Context, call CallFunc) (string, error) {
	state := StateIdle

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("completion cancelled before attempt %d: %w", attempt+1, err)
		}

		state = r.transition(ctx, state, StateRequesting, attempt)
		resp, err := call(ctx)
		if err == nil {
			r.transition(ctx, state, StateSucceeded, attempt)
			return resp, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			r.transition(ctx, state, StateFailed, attempt)
			return "", fmt.Errorf("completion cancelled during attempt %d: %w", attempt+1, ctxErr)
		}

		if !IsRateLimited(err) {
			r.transition(ctx, state, StateFailed, attempt)
			r.logger.WarnContext(ctx, "non-retryable completion error, not retrying",
				"attempt", attempt+1,
				"error", err)
			return "", asUpstream(err)
		}

		if attempt >= r.maxRetries {
			r.transition(ctx, state, StateFailed, attempt)
			r.logger.WarnContext(ctx, "maximum retry attempts reached",
				"max_retries", r.maxRetries)
			return "", fmt.Errorf("%w: still rate limited after %d retries: %v",
				ErrRateLimitExceeded, r.maxRetries, err)
		}

		delay := r.Delay(attempt)
		state = r.transition(ctx, state, StateBackoff, attempt)
		r.logger.InfoContext(ctx, "rate limited, retrying after delay",
			"attempt", attempt+1,
			"max_retries", r.maxRetries,
			"delay_ms", delay.Milliseconds())

		if err := r.wait(ctx, delay); err != nil {
			r.transition(ctx, state, StateFailed, attempt)
			return "", fmt.Errorf("completion cancelled during backoff: %w", err)
		}
	}
}

// transition logs a state change and returns the new state.
func (r *Retrier) transition(ctx context.Context, from, to RetryState, attempt int) RetryState {
	r.logger.DebugContext(ctx, "retry state transition",
		"from", string(from),
		"to", string(to),
		"attempt", attempt+1,
		"max_retries", r.maxRetries)
	return to
}

// asUpstream wraps err in ErrUpstream unless it already is one.
func asUpstream(err error) error {
	if errors.Is(err, ErrUpstream) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstream, err)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// randomJitter returns a uniform delay in [0, base).
func randomJitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(base)))
}
