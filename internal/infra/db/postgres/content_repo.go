package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"shopify-ai-advisor/internal/domain"
	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.ContentRepository = (*ContentRepo)(nil)

// ContentRepo reads the vector-indexed catalog content populated by the
// ingestion process. Cosine similarity against pgvector columns; rows at or
// below the threshold are filtered in SQL so results arrive ordered and
// pre-cut.
type ContentRepo struct {
	pool *pgxpool.Pool
}

func NewContentRepo(pool *pgxpool.Pool) *ContentRepo {
	return &ContentRepo{pool: pool}
}

const matchProductsSQL = `
SELECT COALESCE(title, ''), COALESCE(product_type, ''), COALESCE(short_description, ''), COALESCE(handle, ''),
       1 - (embedding <=> $1) AS similarity
FROM products
WHERE embedding IS NOT NULL AND 1 - (embedding <=> $1) > $2
ORDER BY embedding <=> $1
LIMIT $3`

const matchArticlesSQL = `
SELECT COALESCE(title, ''), COALESCE(excerpt, ''), COALESCE(handle, ''),
       1 - (embedding <=> $1) AS similarity
FROM articles
WHERE embedding IS NOT NULL AND 1 - (embedding <=> $1) > $2
ORDER BY embedding <=> $1
LIMIT $3`

func (r *ContentRepo) MatchProducts(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.RetrievedItem, error) {
	rows, err := r.pool.Query(ctx, matchProductsSQL, pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: match products: %v", domain.ErrRetrieval, err)
	}
	defer rows.Close()

	var items []model.RetrievedItem
	for rows.Next() {
		it := model.RetrievedItem{Kind: model.KindProduct}
		if err := rows.Scan(&it.Title, &it.Category, &it.ShortDescription, &it.Handle, &it.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scan product: %v", domain.ErrRetrieval, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: match products: %v", domain.ErrRetrieval, err)
	}
	return items, nil
}

func (r *ContentRepo) MatchArticles(ctx context.Context, embedding []float32, threshold float64, limit int) ([]model.RetrievedItem, error) {
	rows, err := r.pool.Query(ctx, matchArticlesSQL, pgvector.NewVector(embedding), threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: match articles: %v", domain.ErrRetrieval, err)
	}
	defer rows.Close()

	var items []model.RetrievedItem
	for rows.Next() {
		it := model.RetrievedItem{Kind: model.KindArticle}
		if err := rows.Scan(&it.Title, &it.Excerpt, &it.Handle, &it.Similarity); err != nil {
			return nil, fmt.Errorf("%w: scan article: %v", domain.ErrRetrieval, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: match articles: %v", domain.ErrRetrieval, err)
	}
	return items, nil
}
