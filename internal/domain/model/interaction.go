package model

import "time"

// InteractionRecord is one query/context/response tuple destined for the
// append-only interaction log. Write-only: the core never reads these back.
type InteractionRecord struct {
	SessionID      string
	UserQuery      string
	ContextSummary string
	AIResponse     string
	CreatedAt      time.Time
}
