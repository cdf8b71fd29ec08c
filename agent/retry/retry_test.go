package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/pixelmart/order-agent/agent/contract"
)

func capturePolicy(delays *[]time.Duration) Policy {
	return Policy{
		Sleep: func(ctx context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
}

func TestDoExhaustsOnRepeatedRateLimit(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	calls := 0
	rateErr := errors.New("provider: 429 too many requests")

	_, err := Do(context.Background(), capturePolicy(&delays), func(ctx context.Context) (string, error) {
		calls++
		return "", rateErr
	})

	if calls != 3 {
		t.Fatalf("op called %d times, want 3", calls)
	}
	if !errors.Is(err, rateErr) {
		t.Fatalf("Do() error = %v, want the final rate-limit error", err)
	}
	if len(delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(delays))
	}
	if delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Fatalf("delays = %v, want [1s 2s]", delays)
	}
	if delays[1] < delays[0] {
		t.Fatalf("delays not non-decreasing: %v", delays)
	}
}

func TestDoRecoversAfterOneRateLimit(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	calls := 0

	out, err := Do(context.Background(), capturePolicy(&delays), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", contractx.ErrRateLimited
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if out != "ok" {
		t.Fatalf("Do() = %q, want ok", out)
	}
	if calls != 2 || len(delays) != 1 {
		t.Fatalf("calls=%d delays=%v, want 2 calls and 1 delay", calls, delays)
	}
}

func TestDoShortCircuitsNonRetryable(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	calls := 0
	fatal := errors.New("provider: connection refused")

	_, err := Do(context.Background(), capturePolicy(&delays), func(ctx context.Context) (string, error) {
		calls++
		return "", fatal
	})

	if calls != 1 {
		t.Fatalf("op called %d times, want 1", calls)
	}
	if !errors.Is(err, fatal) {
		t.Fatalf("Do() error = %v, want %v", err, fatal)
	}
	if len(delays) != 0 {
		t.Fatalf("slept on a non-retryable error: %v", delays)
	}
}

func TestDoSleepCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	_, err := Do(ctx, p, func(ctx context.Context) (string, error) {
		return "", contractx.ErrRateLimited
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Do() error = %v, want context.Canceled", err)
	}
}

func TestIsRateLimited(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{contractx.ErrRateLimited, true},
		{errors.New("http 429"), true},
		{errors.New("Rate limit exceeded"), true},
		{errors.New("too many requests"), true},
		{errors.New("insufficient_quota: please upgrade"), false},
		{errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := IsRateLimited(tc.err); got != tc.want {
			t.Fatalf("IsRateLimited(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestIsQuotaExhausted(t *testing.T) {
	t.Parallel()

	if !IsQuotaExhausted(contractx.ErrQuotaExhausted) {
		t.Fatal("sentinel not recognized")
	}
	if !IsQuotaExhausted(errors.New("insufficient_quota")) {
		t.Fatal("provider quota text not recognized")
	}
	if IsQuotaExhausted(errors.New("429 slow down")) {
		t.Fatal("plain rate limit misclassified as quota")
	}
}
