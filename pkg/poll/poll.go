// Package poll runs a check function on a fixed interval until it reports
// completion. Every loop must be bounded by a timeout, an attempt cap, or both.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrUnbounded is returned by Validate when neither Timeout nor MaxAttempts is set.
	ErrUnbounded = errors.New("poll loop requires a timeout or an attempt cap")

	// ErrTimeout is returned when Timeout elapses before completion.
	ErrTimeout = errors.New("poll timed out")

	// ErrAttemptsExhausted is returned when MaxAttempts checks ran without completion.
	ErrAttemptsExhausted = errors.New("poll attempts exhausted")
)

// Config bounds a poll loop.
type Config struct {
	Interval    time.Duration
	Timeout     time.Duration
	MaxAttempts int
}

// Validate rejects non-positive intervals, negative bounds, and loops with no bound.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Interval)
	}
	if c.Timeout < 0 || c.MaxAttempts < 0 {
		return fmt.Errorf("poll bounds must not be negative")
	}
	if c.Timeout == 0 && c.MaxAttempts == 0 {
		return ErrUnbounded
	}
	return nil
}

// CheckFunc reports whether polling is complete. A non-nil error stops the loop
// and is returned from Until unchanged.
type CheckFunc func(ctx context.Context) (bool, error)

// Until calls fn immediately and then once per Interval until fn reports done,
// fn errors, ctx is cancelled, Timeout elapses, or MaxAttempts is reached.
// Cancellation of ctx returns ctx.Err().
func Until(ctx context.Context, cfg Config, fn CheckFunc) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	var deadline <-chan time.Time
	if cfg.Timeout > 0 {
		timer := time.NewTimer(cfg.Timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, attempt)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("%w after %s", ErrTimeout, cfg.Timeout)
		case <-ticker.C:
		}
	}
}
