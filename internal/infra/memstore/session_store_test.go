package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopify-ai-advisor/internal/domain"
	"shopify-ai-advisor/internal/domain/model"
)

func newTestSession(id string) *model.Session {
	return model.NewSession(id, "Store", "store.example.com", nil)
}

func TestCreateAndWith(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()

	if err := st.Create(ctx, newTestSession("session_a")); err != nil {
		t.Fatalf("create: %v", err)
	}

	var seen string
	err := st.With(ctx, "session_a", func(s *model.Session) error {
		seen = s.ID
		return nil
	})
	if err != nil {
		t.Fatalf("with: %v", err)
	}
	if seen != "session_a" {
		t.Fatalf("wrong session: %q", seen)
	}
}

func TestCreateDuplicate(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()

	if err := st.Create(ctx, newTestSession("session_a")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.Create(ctx, newTestSession("session_a")); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestWithUnknownSession(t *testing.T) {
	st := NewSessionStore()

	err := st.With(context.Background(), "session_missing", func(*model.Session) error {
		t.Fatal("fn must not run for a missing session")
		return nil
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsTerminal(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()

	_ = st.Create(ctx, newTestSession("session_a"))
	if err := st.Delete(ctx, "session_a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, "session_a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
	if err := st.With(ctx, "session_a", func(*model.Session) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("with after delete: expected ErrNotFound, got %v", err)
	}
}

func TestWithSeesDeleteWhileWaiting(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()
	_ = st.Create(ctx, newTestSession("session_a"))

	inFirst := make(chan struct{})
	releaseFirst := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = st.With(ctx, "session_a", func(*model.Session) error {
			close(inFirst)
			<-releaseFirst
			return nil
		})
	}()

	<-inFirst
	secondErr := make(chan error, 1)
	go func() {
		defer wg.Done()
		secondErr <- st.With(ctx, "session_a", func(*model.Session) error { return nil })
	}()

	// Give the second caller time to block on the entry lock, then delete
	// the session out from under it.
	time.Sleep(20 * time.Millisecond)
	_ = st.Delete(ctx, "session_a")
	close(releaseFirst)
	wg.Wait()

	if err := <-secondErr; !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("waiter on a deleted session: expected ErrNotFound, got %v", err)
	}
}

func TestSameSessionTurnsSerialize(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()
	_ = st.Create(ctx, newTestSession("session_a"))

	const callers = 8
	var inside, maxInside int
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_ = st.With(ctx, "session_a", func(s *model.Session) error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				s.AddTurn(model.RoleUser, "q")
				s.AddTurn(model.RoleModel, "a")
				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("turns on the same session overlapped: max concurrency %d", maxInside)
	}
	_ = st.With(ctx, "session_a", func(s *model.Session) error {
		if len(s.History) != callers*2 {
			t.Fatalf("expected %d turns, got %d", callers*2, len(s.History))
		}
		return nil
	})
}

func TestCount(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()
	for _, id := range []string{"session_a", "session_b", "session_c"} {
		_ = st.Create(ctx, newTestSession(id))
	}
	if got := st.Count(); got != 3 {
		t.Fatalf("count: got %d", got)
	}
	_ = st.Delete(ctx, "session_b")
	if got := st.Count(); got != 2 {
		t.Fatalf("count after delete: got %d", got)
	}
}

func TestPurgeIdle(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()

	stale := newTestSession("session_stale")
	stale.UpdatedAt = time.Now().Add(-time.Hour)
	fresh := newTestSession("session_fresh")
	_ = st.Create(ctx, stale)
	_ = st.Create(ctx, fresh)

	purged := st.PurgeIdle(time.Now().Add(-30 * time.Minute))

	if purged != 1 {
		t.Fatalf("expected 1 purged, got %d", purged)
	}
	if err := st.With(ctx, "session_stale", func(*model.Session) error { return nil }); !errors.Is(err, domain.ErrNotFound) {
		t.Fatal("stale session should be gone")
	}
	if err := st.With(ctx, "session_fresh", func(*model.Session) error { return nil }); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
}

func TestPurgeIdleSkipsInFlightSession(t *testing.T) {
	st := NewSessionStore()
	ctx := context.Background()

	busy := newTestSession("session_busy")
	busy.UpdatedAt = time.Now().Add(-time.Hour)
	_ = st.Create(ctx, busy)

	inTurn := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = st.With(ctx, "session_busy", func(*model.Session) error {
			close(inTurn)
			<-release
			return nil
		})
	}()

	<-inTurn
	if purged := st.PurgeIdle(time.Now()); purged != 0 {
		t.Fatalf("a session with a turn in flight must not be purged, got %d", purged)
	}
	close(release)
	<-done
}
