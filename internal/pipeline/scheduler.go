package pipeline

import (
	"context"
	"time"
)

// DefaultInterval is the pause between two polls of the artifact
const DefaultInterval = 3 * time.Second

// Scheduler paces the poll loop: a fixed interval between cycles, and an
// optional shorter interval after a rollback. A retry always ignores the
// artifact's modification time, whatever the interval.
type Scheduler struct {
	Interval      time.Duration
	RetryInterval time.Duration
}

// NewScheduler returns a scheduler; a non-positive retry interval means "same as interval"
func NewScheduler(interval, retryInterval time.Duration) Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retryInterval <= 0 {
		retryInterval = interval
	}
	return Scheduler{Interval: interval, RetryInterval: retryInterval}
}

// Next returns how long to wait before the next cycle
func (s Scheduler) Next(retryPending bool) time.Duration {
	if retryPending {
		return s.RetryInterval
	}
	return s.Interval
}

// Wait blocks for d or until ctx is done
func (s Scheduler) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
