package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/repository"
	"shopify-ai-advisor/internal/infra/security"
)

// Compile-time check
var _ repository.InteractionLogRepository = (*InteractionLogRepo)(nil)

// InteractionLogRepo appends query/context/response tuples to the audit
// table. With an encryption service configured, user text and model replies
// are encrypted at rest; the context summary stays plain (it only describes
// catalog content).
type InteractionLogRepo struct {
	pool *pgxpool.Pool
	enc  *security.EncryptionService // nil = store plaintext
}

func NewInteractionLogRepo(pool *pgxpool.Pool, enc *security.EncryptionService) *InteractionLogRepo {
	return &InteractionLogRepo{pool: pool, enc: enc}
}

const insertInteractionSQL = `
INSERT INTO chat_interactions (id, session_id, user_query, retrieved_context_summary, ai_response, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (r *InteractionLogRepo) Append(ctx context.Context, rec *model.InteractionRecord) error {
	query, response := rec.UserQuery, rec.AIResponse
	if r.enc != nil {
		var err error
		if query, err = r.enc.Encrypt(query); err != nil {
			return fmt.Errorf("encrypt user query: %w", err)
		}
		if response, err = r.enc.Encrypt(response); err != nil {
			return fmt.Errorf("encrypt ai response: %w", err)
		}
	}

	id := ulid.Make().String()
	if _, err := r.pool.Exec(ctx, insertInteractionSQL,
		id, rec.SessionID, query, rec.ContextSummary, response, rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}
