package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrLimited is returned when no request slot is available within the
// caller's deadline
var ErrLimited = errors.New("rate limit exceeded")

// Clock abstracts time so limiter behaviour can be tested without real timers
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock is the wall clock
var SystemClock Clock = systemClock{}

// Config defines an upstream request budget
type Config struct {
	RequestsPerMinute int
	MinDelay          time.Duration // minimum spacing between two requests
	Burst             int
}

// Bucket is an in-process token bucket over golang.org/x/time/rate.
// The refill interval is the larger of 1min/RequestsPerMinute and MinDelay.
// ⭐ SSOT: 업스트림 요청 간격은 여기서만 관리
type Bucket struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	clock   Clock
}

// NewBucket creates a bucket for cfg using clock (nil means SystemClock)
func NewBucket(cfg Config, clock Clock) *Bucket {
	if clock == nil {
		clock = SystemClock
	}

	interval := time.Minute
	if cfg.RequestsPerMinute > 0 {
		interval = time.Minute / time.Duration(cfg.RequestsPerMinute)
	}
	if cfg.MinDelay > interval {
		interval = cfg.MinDelay
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Bucket{
		limiter: rate.NewLimiter(rate.Every(interval), burst),
		clock:   clock,
	}
}

// Allow reports whether a request may happen now, consuming a token if so
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.limiter.AllowN(b.clock.Now(), 1)
}

// Delay reserves a token and returns how long the caller must wait for it
func (b *Bucket) Delay() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock.Now()
	return b.limiter.ReserveN(now, 1).DelayFrom(now)
}

// Wait blocks until a token is available. If ctx carries a deadline that the
// wait would overrun, it returns ErrLimited immediately without consuming.
func (b *Bucket) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	now := b.clock.Now()
	r := b.limiter.ReserveN(now, 1)
	if !r.OK() {
		b.mu.Unlock()
		return ErrLimited
	}

	delay := r.DelayFrom(now)
	if deadline, ok := ctx.Deadline(); ok && now.Add(delay).After(deadline) {
		r.CancelAt(now)
		b.mu.Unlock()
		return ErrLimited
	}
	b.mu.Unlock()

	if delay == 0 {
		return nil
	}

	select {
	case <-b.clock.After(delay):
		return nil
	case <-ctx.Done():
		b.mu.Lock()
		r.CancelAt(b.clock.Now())
		b.mu.Unlock()
		return ctx.Err()
	}
}
