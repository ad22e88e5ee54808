package task

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/compozy/taskrun/pkg/config"
)

// RetryPolicy re-runs the business logic after an error, a bounded number of
// times with exponential backoff and jitter. Interrupts (Skip/Fail/Throw) are
// never retried; RetryIf narrows retries to an allowlist of errors.
type RetryPolicy struct {
	// Attempts is the number of retries after the initial try.
	Attempts    int
	BackoffBase time.Duration
	BackoffMax  time.Duration
	Jitter      time.Duration
	// RetryIf reports whether an error is retryable. Nil retries every
	// non-interrupt error.
	RetryIf func(error) bool
}

// RetryPolicyFromConfig lifts the global retry defaults into a policy.
// A zero attempt count yields nil (no retries).
func RetryPolicyFromConfig(cfg *config.RetryConfig) *RetryPolicy {
	if cfg == nil || cfg.Attempts <= 0 {
		return nil
	}
	return &RetryPolicy{
		Attempts:    cfg.Attempts,
		BackoffBase: cfg.BackoffBase,
		BackoffMax:  cfg.BackoffMax,
		Jitter:      cfg.Jitter,
	}
}

// run invokes fn under the policy. The returned error is the last one fn
// produced, never a backoff wrapper, so normalization sees the original.
func (p *RetryPolicy) run(ctx context.Context, fn Next) error {
	if p == nil || p.Attempts <= 0 {
		return fn(ctx)
	}
	base := p.BackoffBase
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	backoff := retry.NewExponential(base)
	if p.BackoffMax > 0 {
		backoff = retry.WithMaxDuration(p.BackoffMax, backoff)
	}
	if p.Jitter > 0 {
		backoff = retry.WithJitter(p.Jitter, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(p.Attempts), backoff)

	var lastErr error
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callErr := fn(ctx)
		if callErr == nil {
			lastErr = nil
			return nil
		}
		lastErr = callErr
		if _, ok := asInterrupt(callErr); ok {
			return callErr
		}
		if p.RetryIf != nil && !p.RetryIf(callErr) {
			return callErr
		}
		return retry.RetryableError(callErr)
	})
	if err == nil {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return err
}
