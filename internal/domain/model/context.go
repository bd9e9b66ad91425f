package model

import (
	"fmt"
	"strings"
)

const (
	contextHeader   = "Relevant context from the store:"
	noMatchSentence = "No specific products or articles found matching your query in the database."

	// EmbeddingUnavailableContext replaces the assembled block when the query
	// could not be embedded. The model must still be told that retrieval did
	// not run rather than being left to infer it.
	EmbeddingUnavailableContext = "Could not process query for semantic search (embedding failed).\n"
)

// TokenCounter reports how many model tokens a piece of text consumes.
type TokenCounter interface {
	Count(text string) int
}

// AssembleContext formats retrieved items into the bounded text block injected
// into the prompt for one turn. Items keep retrieval order (highest similarity
// first) and each kind is capped at maxPerKind. When counter is non-nil and
// budget is positive, the lowest-similarity trailing items are dropped until
// the block fits the token budget. Both kinds empty yields an explicit
// no-match sentence.
func AssembleContext(products, articles []RetrievedItem, maxPerKind int, counter TokenCounter, budget int) string {
	if maxPerKind > 0 {
		if len(products) > maxPerKind {
			products = products[:maxPerKind]
		}
		if len(articles) > maxPerKind {
			articles = articles[:maxPerKind]
		}
	}

	block := renderContext(products, articles)
	if counter == nil || budget <= 0 {
		return block
	}

	for counter.Count(block) > budget && len(products)+len(articles) > 0 {
		// Drop the trailing item with the lower similarity first.
		switch {
		case len(articles) == 0:
			products = products[:len(products)-1]
		case len(products) == 0:
			articles = articles[:len(articles)-1]
		case products[len(products)-1].Similarity < articles[len(articles)-1].Similarity:
			products = products[:len(products)-1]
		default:
			articles = articles[:len(articles)-1]
		}
		block = renderContext(products, articles)
	}
	return block
}

func renderContext(products, articles []RetrievedItem) string {
	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString("\n")
	if len(products) > 0 {
		b.WriteString("Products:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "- Title: %s, Category: %s, Description: %s, Handle: %s\n",
				orNA(p.Title), orNA(p.Category), orNA(p.ShortDescription), orNA(p.Handle))
		}
	}
	if len(articles) > 0 {
		b.WriteString("Articles:\n")
		for _, a := range articles {
			fmt.Fprintf(&b, "- Title: %s, Excerpt: %s, Handle: %s\n",
				orNA(a.Title), orNA(a.Excerpt), orNA(a.Handle))
		}
	}
	if len(products) == 0 && len(articles) == 0 {
		b.WriteString(noMatchSentence)
		b.WriteString("\n")
	}
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
