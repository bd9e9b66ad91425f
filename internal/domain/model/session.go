package model

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message in a conversation's ordered history. The user's stored
// turn always holds the clean query, never the context-augmented composite
// that was sent to the model.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the model-side handle bound to one session. The system
// instruction is fixed at creation and cannot change for the handle's
// lifetime. Send submits the explicit history plus one new user message and
// returns the generated reply.
type Conversation interface {
	Send(ctx context.Context, history []Turn, message string) (string, error)
}

// Session is the aggregate root for one running conversation. It is owned by
// the session store; all mutation happens under the store's per-session lock.
type Session struct {
	ID           string
	StoreName    string
	StoreDomain  string
	Conversation Conversation
	History      []Turn
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewSession(id, storeName, storeDomain string, conv Conversation) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		StoreName:    storeName,
		StoreDomain:  storeDomain,
		Conversation: conv,
		History:      make([]Turn, 0, 8),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *Session) AddTurn(role Role, text string) {
	s.History = append(s.History, Turn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// TrimHistory drops the oldest user+model pairs until at most maxPairs pairs
// remain. Whole pairs are always removed together so the retained sequence
// keeps its user/model alternation; a lone trailing turn is never stranded.
func (s *Session) TrimHistory(maxPairs int) {
	if maxPairs <= 0 {
		return
	}
	max := maxPairs * 2
	if len(s.History) <= max {
		return
	}
	drop := len(s.History) - max
	if drop%2 != 0 {
		drop++
	}
	s.History = append(s.History[:0], s.History[drop:]...)
}

// HistoryView returns a copy of the history so callers can read it without
// holding the session lock across their own suspension points.
func (s *Session) HistoryView() []Turn {
	out := make([]Turn, len(s.History))
	copy(out, s.History)
	return out
}
