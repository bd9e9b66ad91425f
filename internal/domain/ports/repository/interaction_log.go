package repository

import (
	"context"

	"shopify-ai-advisor/internal/domain/model"
)

// InteractionLogRepository is the append-only audit sink. Writes are
// best-effort: callers must not block a user-facing response on Append nor
// propagate its failure.
type InteractionLogRepository interface {
	Append(ctx context.Context, rec *model.InteractionRecord) error
}
