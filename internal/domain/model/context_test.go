package model

import (
	"strings"
	"testing"
)

func product(title, handle, category, desc string, sim float64) RetrievedItem {
	return RetrievedItem{
		Kind:             KindProduct,
		Title:            title,
		Handle:           handle,
		Category:         category,
		ShortDescription: desc,
		Similarity:       sim,
	}
}

func article(title, handle, excerpt string, sim float64) RetrievedItem {
	return RetrievedItem{
		Kind:       KindArticle,
		Title:      title,
		Handle:     handle,
		Excerpt:    excerpt,
		Similarity: sim,
	}
}

func TestAssembleContextFormatsBothKinds(t *testing.T) {
	products := []RetrievedItem{product("Trail Shoe", "trail-shoe", "Footwear", "Light hiking shoe", 0.91)}
	articles := []RetrievedItem{article("Sizing Guide", "sizing-guide", "How to pick a size", 0.88)}

	got := AssembleContext(products, articles, 3, nil, 0)

	if !strings.HasPrefix(got, "Relevant context from the store:\n") {
		t.Fatalf("missing header: %q", got)
	}
	wantProduct := "- Title: Trail Shoe, Category: Footwear, Description: Light hiking shoe, Handle: trail-shoe\n"
	if !strings.Contains(got, "Products:\n"+wantProduct) {
		t.Errorf("product line missing or malformed:\n%s", got)
	}
	wantArticle := "- Title: Sizing Guide, Excerpt: How to pick a size, Handle: sizing-guide\n"
	if !strings.Contains(got, "Articles:\n"+wantArticle) {
		t.Errorf("article line missing or malformed:\n%s", got)
	}
}

func TestAssembleContextNoMatches(t *testing.T) {
	got := AssembleContext(nil, nil, 3, nil, 0)

	want := "Relevant context from the store:\nNo specific products or articles found matching your query in the database.\n"
	if got != want {
		t.Fatalf("no-match block mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestAssembleContextMissingFieldsRenderNA(t *testing.T) {
	products := []RetrievedItem{product("Bare", "", "  ", "", 0.8)}

	got := AssembleContext(products, nil, 3, nil, 0)

	if !strings.Contains(got, "- Title: Bare, Category: N/A, Description: N/A, Handle: N/A\n") {
		t.Fatalf("empty fields must render as N/A:\n%s", got)
	}
}

func TestAssembleContextCapsPerKind(t *testing.T) {
	var products []RetrievedItem
	for i := 0; i < 5; i++ {
		products = append(products, product("P", "p", "C", "D", 0.9))
	}

	got := AssembleContext(products, nil, 3, nil, 0)

	if n := strings.Count(got, "- Title:"); n != 3 {
		t.Fatalf("expected 3 items after cap, got %d\n%s", n, got)
	}
}

// wordCounter approximates tokens as whitespace-separated words, which is
// enough to exercise the budget loop deterministically.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func TestAssembleContextTokenBudgetDropsLowestSimilarityFirst(t *testing.T) {
	products := []RetrievedItem{
		product("Keep Product", "keep-p", "Cat", "Desc", 0.95),
		product("Drop Product", "drop-p", "Cat", "Desc", 0.76),
	}
	articles := []RetrievedItem{
		article("Keep Article", "keep-a", "Excerpt", 0.90),
	}

	full := AssembleContext(products, articles, 3, nil, 0)
	budget := wordCounter{}.Count(full) - 1

	got := AssembleContext(products, articles, 3, wordCounter{}, budget)

	if strings.Contains(got, "Drop Product") {
		t.Fatalf("lowest-similarity trailing item should be dropped first:\n%s", got)
	}
	if !strings.Contains(got, "Keep Product") || !strings.Contains(got, "Keep Article") {
		t.Fatalf("higher-similarity items must survive:\n%s", got)
	}
}

func TestAssembleContextBudgetExhaustedFallsBackToNoMatch(t *testing.T) {
	products := []RetrievedItem{product("Only", "only", "Cat", "Desc", 0.9)}

	got := AssembleContext(products, nil, 3, wordCounter{}, 1)

	// With every item dropped the block reduces to the explicit no-match text.
	if !strings.Contains(got, "No specific products or articles found") {
		t.Fatalf("expected no-match fallback, got:\n%s", got)
	}
}
