package util

import (
	"context"
	"math/rand"
	"time"
)

// JitteredDelay returns base plus a symmetric random offset in [-jitter, +jitter],
// clamped at zero.
func JitteredDelay(base, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		if base < 0 {
			return 0
		}
		return base
	}
	offset := time.Duration(rand.Int63n(int64(2*jitter))) - jitter
	d := base + offset
	if d < 0 {
		return 0
	}
	return d
}

// SleepContext sleeps for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
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
