package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type Timer interface {
	Now() time.Time
	Sleep(ctx context.Context, duration time.Duration) error
}

// Limiter spaces outbound requests by a fixed interval with a burst of one.
// A nil *Limiter never waits.
type Limiter struct {
	bucket *rate.Limiter
	clock  Timer
}

// New returns a limiter spacing requests by interval, or nil when interval <= 0.
func New(interval time.Duration, clock Timer) *Limiter {
	if interval <= 0 {
		return nil
	}

	if clock == nil {
		clock = Clock{}
	}

	return &Limiter{
		bucket: rate.NewLimiter(rate.Every(interval), 1),
		clock:  clock,
	}
}

// Interval converts a requests-per-second rate or a fixed delay into a spacing interval.
// A positive rps takes precedence over delay.
func Interval(rps float64, delay time.Duration) time.Duration {
	if rps > 0 {
		interval := time.Duration(float64(time.Second) / rps)
		if interval <= 0 {
			return time.Nanosecond
		}

		return interval
	}

	if delay > 0 {
		return delay
	}

	return 0
}

// Wait reserves the next slot and sleeps until it comes up. On cancellation the
// reservation is returned so later callers are not delayed by it.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	now := l.clock.Now()
	reservation := l.bucket.ReserveN(now, 1)

	delay := reservation.DelayFrom(now)
	if delay <= 0 {
		return nil
	}

	if err := l.clock.Sleep(ctx, delay); err != nil {
		reservation.CancelAt(l.clock.Now())

		return err
	}

	return nil
}
