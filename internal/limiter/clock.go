package limiter

import (
	"context"
	"time"
)

// Clock is the system Timer. The zero value is ready to use.
type Clock struct{}

func NewClock() Clock {
	return Clock{}
}

func (Clock) Now() time.Time {
	return time.Now()
}

func (Clock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	wake := time.NewTimer(d)
	defer wake.Stop()

	select {
	case <-wake.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
