package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"shopify-ai-advisor/internal/domain/ports/repository"
	"shopify-ai-advisor/internal/infra/metrics"
)

// SessionReaper periodically removes sessions idle longer than the TTL.
// The default deployment runs without one; sessions then live until restart.
type SessionReaper struct {
	interval time.Duration
	ttl      time.Duration
	sessions repository.SessionStore
	log      *zerolog.Logger
}

func NewSessionReaper(interval, ttl time.Duration, sessions repository.SessionStore, logger *zerolog.Logger) *SessionReaper {
	l := logger.With().Str("component", "SessionReaper").Logger()
	return &SessionReaper{
		interval: interval,
		ttl:      ttl,
		sessions: sessions,
		log:      &l,
	}
}

func (w *SessionReaper) Run(ctx context.Context) error {
	w.log.Info().Dur("ttl", w.ttl).Msg("starting session reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping session reaper")
			return ctx.Err()
		case <-ticker.C:
			n := w.sessions.PurgeIdle(time.Now().Add(-w.ttl))
			if n > 0 {
				metrics.IncSessionsReaped(n)
				metrics.SetActiveSessions(w.sessions.Count())
				w.log.Info().Int("count", n).Msg("idle sessions reaped")
			}
		}
	}
}
