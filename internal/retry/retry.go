package retry

import (
	"context"
	"math/rand"
	"time"
)

// IsRetryableFunc decides whether an error is worth another attempt.
type IsRetryableFunc func(error) bool

// Backoff yields the delay before a given attempt (1-based).
type Backoff interface {
	Delay(attempt int) time.Duration
}

type Retrier interface {
	Do(ctx context.Context, fn func() error) error
}

type retrier struct {
	maxAttempts int
	backoff     Backoff
	isRetryable IsRetryableFunc
}

type RetryOption func(*retrier)

func WithMaxAttempts(n int) RetryOption {
	return func(r *retrier) { r.maxAttempts = n }
}

func WithBackoff(b Backoff) RetryOption {
	return func(r *retrier) { r.backoff = b }
}

func WithIsRetryableFunc(fn IsRetryableFunc) RetryOption {
	return func(r *retrier) { r.isRetryable = fn }
}

func New(opts ...RetryOption) Retrier {
	r := &retrier{
		maxAttempts: 1,
		backoff:     NoBackoff{},
		isRetryable: func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.maxAttempts < 1 {
		r.maxAttempts = 1
	}
	return r
}

func (r *retrier) Do(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !r.isRetryable(err) || attempt == r.maxAttempts {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff.Delay(attempt)):
		}
	}
	return err
}

type NoBackoff struct{}

func (NoBackoff) Delay(int) time.Duration { return 0 }

// ExponentialBackoff grows the delay by Factor each attempt, capped at Max,
// with optional proportional jitter.
type ExponentialBackoff struct {
	Base   time.Duration
	Factor float64
	Max    time.Duration
	Jitter float64
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	d := float64(b.Base)
	for i := 1; i < attempt; i++ {
		d *= b.Factor
	}
	if b.Max > 0 && d > float64(b.Max) {
		d = float64(b.Max)
	}
	if b.Jitter > 0 {
		d += d * b.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
