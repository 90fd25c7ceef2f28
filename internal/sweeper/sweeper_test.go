package sweeper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type countingCleaner struct {
	calls atomic.Int64
}

func (c *countingCleaner) CleanupExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestSweeperRunsImmediatelyAndOnTicks(t *testing.T) {
	cleaner := &countingCleaner{}
	s := New(cleaner, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for cleaner.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatalf("sweeper ran %d times, want at least 2", cleaner.calls.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancel")
	}
}

func TestSweeperDefaultsInterval(t *testing.T) {
	s := New(&countingCleaner{}, 0, zerolog.Nop())
	if s.interval != 24*time.Hour {
		t.Fatalf("interval = %v, want 24h", s.interval)
	}
}
