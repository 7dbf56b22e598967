package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingRefresher struct {
	calls atomic.Int64
}

func (c *countingRefresher) LoadLatest(ctx context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestStartPollerTicksAndStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	r := &countingRefresher{}
	StartPoller(ctx, r, 5*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for r.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("poller never ticked (calls=%d)", r.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := r.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if r.calls.Load() != settled {
		t.Fatalf("poller kept ticking after cancel")
	}
}
