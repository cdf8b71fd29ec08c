// Package retry implements the bounded retry/backoff state machine that
// wraps the reasoning-provider call. Only rate-limit signals are retried;
// every other failure short-circuits.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/pixelmart/order-agent/agent/contract"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
)

// Policy drives Do. Zero-value fields fall back to the defaults above; Sleep
// is injectable so tests can run without wall-clock delays.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	Retryable func(error) bool
	Sleep     func(ctx context.Context, d time.Duration) error
}

func (p Policy) attempts() int {
	if p.Attempts <= 0 {
		return DefaultAttempts
	}
	return p.Attempts
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay <= 0 {
		return DefaultBaseDelay
	}
	return p.BaseDelay
}

func (p Policy) retryable() func(error) bool {
	if p.Retryable == nil {
		return IsRateLimited
	}
	return p.Retryable
}

func (p Policy) sleep() func(ctx context.Context, d time.Duration) error {
	if p.Sleep == nil {
		return sleepContext
	}
	return p.Sleep
}

// Do runs op under the policy's state machine: Attempting(n) for n=attempts
// down to 1, a delay of 2^(attempts-n)*base between rate-limited attempts,
// then either the successful result or the final error once exhausted.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.attempts()
	retryable := p.retryable()
	sleep := p.sleep()

	var lastErr error
	for remaining := attempts; remaining >= 1; remaining-- {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !retryable(err) || remaining == 1 {
			return zero, err
		}

		delay := p.baseDelay() << (attempts - remaining)
		log.Debug().
			Err(err).
			Int("remaining", remaining-1).
			Dur("delay", delay).
			Msg("provider rate limited, backing off")

		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
	}
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRateLimited recognizes the provider's rate-limit signal, either as the
// contract sentinel or by sniffing the provider error text.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, contractx.ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") {
		// Quota exhaustion also surfaces as 429 but is terminal.
		return false
	}
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}

// IsQuotaExhausted distinguishes the terminal quota signal for logging.
func IsQuotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, contractx.ErrQuotaExhausted) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "quota")
}
