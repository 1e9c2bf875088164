package application

import (
	"context"
	"time"
)

// SleepFunc blocks for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Delay simulates the latency of a remote call that the site does not make.
type Delay struct {
	Duration time.Duration
	Sleep    SleepFunc
}

// Wait blocks for the configured duration.
func (d Delay) Wait(ctx context.Context) error {
	sleep := d.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	return sleep(ctx, d.Duration)
}
