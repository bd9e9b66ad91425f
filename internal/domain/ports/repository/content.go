package repository

import (
	"context"

	"shopify-ai-advisor/internal/domain/model"
)

// ContentRepository is the read side of the vector-indexed store content.
// Both methods return items ordered by descending similarity, excluding
// anything at or below threshold; no match is an empty slice, not an error.
// Product and article lookups are independent failure domains.
type ContentRepository interface {
	MatchProducts(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.RetrievedItem, error)
	MatchArticles(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.RetrievedItem, error)
}
