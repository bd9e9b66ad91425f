package model

type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindArticle ItemKind = "article"
)

// RetrievedItem is a product or article surfaced by semantic retrieval.
// Instances live for one request only; they are never persisted beyond the
// interaction log's context summary.
type RetrievedItem struct {
	Kind             ItemKind
	Title            string
	Handle           string
	Category         string // products
	ShortDescription string // products
	Excerpt          string // articles
	Similarity       float64
}
