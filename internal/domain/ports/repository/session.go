package repository

import (
	"context"
	"time"

	"shopify-ai-advisor/internal/domain/model"
)

// SessionStore maps session ids to live conversational state. State is
// in-process only; it is legitimately lost on restart.
//
// With serializes callers on the same session id: fn runs holding that
// session's lock, so two concurrent turns on one session observe a single
// total order. Different ids do not contend. Deleting a session makes its id
// permanently invalid (ids are never reused).
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	With(ctx context.Context, id string, fn func(s *model.Session) error) error
	Delete(ctx context.Context, id string) error
	Count() int

	// PurgeIdle removes sessions whose last activity predates cutoff and
	// reports how many were removed. Sessions with a turn in flight are
	// skipped.
	PurgeIdle(cutoff time.Time) int
}
