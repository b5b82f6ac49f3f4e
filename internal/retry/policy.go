// Package retry computes backoff delays and retries transient failures.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       config.RetryBackoffMode // fixed|linear|exponential
	Initial    time.Duration           // base delay
	Max        time.Duration           // cap for growth
	MaxRetries int                     // maximum retry attempts after the first failure
}

// DefaultPolicy returns linear backoff from 500ms, capped at 5s, with 2 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: 500 * time.Millisecond, Max: 5 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy from raw config fields; zero/invalid values fall back to defaults.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDuration time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDuration > 0 {
		p.Max = maxDuration
	}
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromConfig builds the policy for a retry section of the configuration.
func FromConfig(c config.RetryConfig) Policy {
	return NewPolicy(c.Backoff, c.Initial, c.Max, c.MaxRetries)
}

// Delay returns the backoff delay for the given retry attempt number (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		if retryCount > 30 {
			return p.Max
		}
		d := p.Initial * (1 << (retryCount - 1))
		if d > p.Max || d <= 0 {
			return p.Max
		}
		return d
	default: // linear
		d := time.Duration(retryCount) * p.Initial
		if d > p.Max {
			return p.Max
		}
		return d
	}
}

// Validate ensures invariants; returns error if policy impossible to apply.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return errors.ValidationError("retry initial delay must be > 0").Build()
	}
	if p.Max <= 0 {
		return errors.ValidationError("retry max delay must be > 0").Build()
	}
	if p.MaxRetries < 0 {
		return errors.ValidationError("retry count cannot be negative").Build()
	}
	return nil
}

// Do calls fn until it succeeds or fails permanently. Only classified errors
// that allow a retry are retried; immediate retries skip the delay. The last
// error is returned once the retries are used up or ctx is done.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		ce, ok := errors.AsClassified(err)
		if !ok || !ce.CanRetry() || attempt >= p.MaxRetries {
			return err
		}
		delay := p.Delay(attempt + 1)
		if ce.RetryStrategy() == errors.RetryImmediate {
			delay = 0
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
