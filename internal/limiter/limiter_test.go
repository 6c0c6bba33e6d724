package limiter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// virtualClock advances its own time on Sleep and records every requested pause.
type virtualClock struct {
	mu       sync.Mutex
	now      time.Time
	sleeps   []time.Duration
	sleepErr error
}

func newVirtualClock() *virtualClock {
	return &virtualClock{now: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *virtualClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sleeps = append(c.sleeps, d)
	if c.sleepErr != nil {
		return c.sleepErr
	}

	return ctx.Err()
}

func (c *virtualClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func (c *virtualClock) recorded() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]time.Duration(nil), c.sleeps...)
}

func TestNew_DisabledWithoutInterval(t *testing.T) {
	t.Parallel()

	require.Nil(t, New(0, newVirtualClock()))
	require.Nil(t, New(-time.Millisecond, nil))
	require.NotNil(t, New(time.Second, nil))

	var disabled *Limiter
	require.NoError(t, disabled.Wait(context.Background()))
}

func TestInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rps   float64
		delay time.Duration
		want  time.Duration
	}{
		{name: "rps wins over delay", rps: 4, delay: time.Second, want: 250 * time.Millisecond},
		{name: "huge rps floors at one nanosecond", rps: 1e12, want: time.Nanosecond},
		{name: "delay only", delay: 300 * time.Millisecond, want: 300 * time.Millisecond},
		{name: "negative delay disables", delay: -time.Second, want: 0},
		{name: "negative rps falls back to delay", rps: -2, delay: time.Second, want: time.Second},
		{name: "nothing configured", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tt.want, Interval(tt.rps, tt.delay))
		})
	}
}

func TestWait_SpacesSequentialRequests(t *testing.T) {
	t.Parallel()

	clock := newVirtualClock()
	limiter := New(100*time.Millisecond, clock)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx))

	clock.advance(30 * time.Millisecond)
	require.NoError(t, limiter.Wait(ctx))

	clock.advance(500 * time.Millisecond)
	require.NoError(t, limiter.Wait(ctx))

	require.Equal(t, []time.Duration{70 * time.Millisecond}, clock.recorded())
}

func TestWait_ConcurrentCallersReserveDistinctSlots(t *testing.T) {
	t.Parallel()

	clock := newVirtualClock()
	limiter := New(50*time.Millisecond, clock)

	require.NoError(t, limiter.Wait(context.Background()))

	var wg sync.WaitGroup
	for range 4 {
		wg.Go(func() {
			_ = limiter.Wait(context.Background())
		})
	}
	wg.Wait()

	require.ElementsMatch(t, []time.Duration{
		50 * time.Millisecond,
		100 * time.Millisecond,
		150 * time.Millisecond,
		200 * time.Millisecond,
	}, clock.recorded())
}

func TestWait_PropagatesSleepFailure(t *testing.T) {
	t.Parallel()

	errInterrupted := errors.New("interrupted")
	clock := newVirtualClock()
	clock.sleepErr = errInterrupted
	limiter := New(time.Second, clock)

	require.NoError(t, limiter.Wait(context.Background()))
	require.ErrorIs(t, limiter.Wait(context.Background()), errInterrupted)
}

func TestWait_CanceledContextReturnsSlot(t *testing.T) {
	t.Parallel()

	clock := newVirtualClock()
	limiter := New(100*time.Millisecond, clock)

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, limiter.Wait(ctx), context.Canceled)

	// The canceled slot is released, so the next caller one interval later goes straight through.
	clock.advance(100 * time.Millisecond)
	require.NoError(t, limiter.Wait(context.Background()))

	require.Equal(t, []time.Duration{100 * time.Millisecond}, clock.recorded())
}
