package memstore

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"shopify-ai-advisor/internal/domain"
	"shopify-ai-advisor/internal/domain/model"
	"shopify-ai-advisor/internal/domain/ports/repository"
)

// Compile-time check
var _ repository.SessionStore = (*SessionStore)(nil)

const shardCount = 16

// SessionStore keeps live sessions in process memory behind a sharded map.
// Each session carries its own mutex, so turns on the same session serialize
// while different sessions only contend on their shard for the brief map
// operations. Without a reaper configured, abandoned sessions accumulate
// until restart; that leak is accepted scope.
type SessionStore struct {
	shards [shardCount]shard
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	mu sync.Mutex
	s  *model.Session
}

func NewSessionStore() *SessionStore {
	st := &SessionStore{}
	for i := range st.shards {
		st.shards[i].sessions = make(map[string]*entry)
	}
	return st
}

func (st *SessionStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &st.shards[h.Sum32()%shardCount]
}

func (st *SessionStore) Create(ctx context.Context, s *model.Session) error {
	sh := st.shardFor(s.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.sessions[s.ID]; ok {
		return domain.ErrAlreadyExists
	}
	sh.sessions[s.ID] = &entry{s: s}
	return nil
}

func (st *SessionStore) With(ctx context.Context, id string, fn func(s *model.Session) error) error {
	sh := st.shardFor(id)
	sh.mu.RLock()
	e, ok := sh.sessions[id]
	sh.mu.RUnlock()
	if !ok {
		return domain.ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// The session may have been deleted while we waited for its lock.
	sh.mu.RLock()
	cur, ok := sh.sessions[id]
	sh.mu.RUnlock()
	if !ok || cur != e {
		return domain.ErrNotFound
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(e.s)
}

func (st *SessionStore) Delete(ctx context.Context, id string) error {
	sh := st.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(sh.sessions, id)
	return nil
}

func (st *SessionStore) Count() int {
	n := 0
	for i := range st.shards {
		sh := &st.shards[i]
		sh.mu.RLock()
		n += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return n
}

func (st *SessionStore) PurgeIdle(cutoff time.Time) int {
	purged := 0
	for i := range st.shards {
		sh := &st.shards[i]
		sh.mu.Lock()
		for id, e := range sh.sessions {
			// A held lock means a turn is in flight, so the session is not idle.
			if !e.mu.TryLock() {
				continue
			}
			if e.s.UpdatedAt.Before(cutoff) {
				delete(sh.sessions, id)
				purged++
			}
			e.mu.Unlock()
		}
		sh.mu.Unlock()
	}
	return purged
}
