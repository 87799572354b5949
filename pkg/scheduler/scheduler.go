package scheduler

import (
	"context"
	"time"
)

// MaxDelay is the longest delay SQS accepts on a single message.
const MaxDelay = 15 * time.Minute

// ExpiryCheck asks the expiry worker to look at a bet once its deadline has passed.
type ExpiryCheck struct {
	BetID    string    `json:"betId"`
	Deadline time.Time `json:"deadline"`
}

// ExpiryScheduler defines the interface for a component that schedules a bet's expiry check.
type ExpiryScheduler interface {
	// ScheduleExpiryCheck enqueues a check to be delivered after delay.
	ScheduleExpiryCheck(ctx context.Context, check ExpiryCheck, delay time.Duration) error
}

// DelayUntil returns how long to wait before checking a bet with the given deadline,
// clamped to [0, MaxDelay]. Checks for far-off deadlines are re-enqueued by the worker.
func DelayUntil(deadline, now time.Time) time.Duration {
	// A second of slack so the check lands strictly after the deadline.
	d := deadline.Sub(now) + time.Second
	if d < 0 {
		return 0
	}
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}
