// Package sweeper periodically retires stale pending invitations. It owns
// no business logic; the invitation service decides what is expired.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Cleaner is the part of the invitation service the sweeper needs.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Sweeper invokes a Cleaner on a fixed interval until its context is
// cancelled.
type Sweeper struct {
	cleaner  Cleaner
	interval time.Duration
	log      zerolog.Logger
}

// New returns a Sweeper. A non-positive interval defaults to 24h.
func New(cleaner Cleaner, interval time.Duration, log zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{cleaner: cleaner, interval: interval, log: log}
}

// Run sweeps once immediately and then on every tick. It blocks until ctx
// is cancelled, so callers usually run it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	deleted, err := s.cleaner.CleanupExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup expired invitations")
		return
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("swept expired invitations")
	}
}
