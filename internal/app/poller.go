package app

import (
	"context"
	"time"

	"github.com/odlove/tealeaf/internal/logging"
)

const defaultPollInterval = 30 * time.Second

// refresher is the slice of the session the poller drives.
type refresher interface {
	LoadLatest(ctx context.Context) error
}

// StartPoller launches a background goroutine that asks the session for
// new posts at a fixed cadence. It returns immediately.
func StartPoller(ctx context.Context, r refresher, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := r.LoadLatest(ctx); err != nil {
				logging.Warn.Printf("background refresh failed: %v", err)
			}
		}
	}()
}
