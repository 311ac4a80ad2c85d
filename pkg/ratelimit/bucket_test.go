package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock advances only when told to; After fires immediately and moves
// the clock forward by the requested duration.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	// Anchored at wall time so context deadlines derived from it are live
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

func TestBucket_AllowFivePerMinute(t *testing.T) {
	clock := newFakeClock()
	b := NewBucket(Config{RequestsPerMinute: 5, Burst: 5}, clock)

	for i := 0; i < 5; i++ {
		assert.True(t, b.Allow(), "request %d should be allowed", i+1)
	}
	assert.False(t, b.Allow(), "sixth request in the same instant must be refused")

	clock.Advance(12 * time.Second)
	assert.True(t, b.Allow(), "one token refills after 12s")
	assert.False(t, b.Allow())
}

func TestBucket_MinDelaySpacing(t *testing.T) {
	clock := newFakeClock()
	b := NewBucket(Config{RequestsPerMinute: 60, MinDelay: 12 * time.Second}, clock)

	assert.Equal(t, time.Duration(0), b.Delay())
	assert.Equal(t, 12*time.Second, b.Delay())
	assert.Equal(t, 24*time.Second, b.Delay())
}

func TestBucket_Wait(t *testing.T) {
	clock := newFakeClock()
	b := NewBucket(Config{RequestsPerMinute: 5}, clock)
	start := clock.Now()

	require.NoError(t, b.Wait(context.Background()))
	require.NoError(t, b.Wait(context.Background()))

	assert.Equal(t, 12*time.Second, clock.Now().Sub(start))
}

func TestBucket_WaitDeadlineTooShort(t *testing.T) {
	clock := newFakeClock()
	b := NewBucket(Config{RequestsPerMinute: 5}, clock)

	require.True(t, b.Allow())

	ctx, cancel := context.WithDeadline(context.Background(), clock.Now().Add(time.Second))
	defer cancel()

	err := b.Wait(ctx)
	assert.True(t, errors.Is(err, ErrLimited))

	// The refused reservation must not have consumed the next slot
	clock.Advance(12 * time.Second)
	assert.True(t, b.Allow())
}

func TestBucket_WaitCancelled(t *testing.T) {
	b := NewBucket(Config{RequestsPerMinute: 5}, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
}
