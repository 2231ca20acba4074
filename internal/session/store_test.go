package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"zuscore/internal/domain"
)

func TestWithSession_CreatesLazily(t *testing.T) {
	store := NewInMemoryStore(time.Hour, nil)
	if store.Len() != 0 {
		t.Fatalf("Len() = %d, want 0 before any session is touched", store.Len())
	}
	snap, err := store.WithSession(context.Background(), "s1", func(s *domain.Session) error {
		s.AppendTurn(domain.Turn{Role: domain.RoleUser, Text: "hi"}, 50)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ID != "s1" {
		t.Errorf("ID = %q, want s1", snap.ID)
	}
	if len(snap.Turns) != 1 {
		t.Fatalf("got %d turns, want 1", len(snap.Turns))
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}

func TestWithSession_HistoryIncrementsMonotonically(t *testing.T) {
	// Each turn strictly grows history until the cap is reached.
	store := NewInMemoryStore(time.Hour, nil)
	for i := 0; i < 5; i++ {
		snap, err := store.WithSession(context.Background(), "s1", func(s *domain.Session) error {
			s.AppendTurn(domain.Turn{Role: domain.RoleUser, Text: "msg"}, 100)
			return nil
		})
		if err != nil {
			t.Fatalf("turn %d: unexpected error: %v", i, err)
		}
		if len(snap.Turns) != i+1 {
			t.Fatalf("turn %d: history length = %d, want %d", i, len(snap.Turns), i+1)
		}
	}
}

func TestWithSession_HistoryCapTruncatesOldest(t *testing.T) {
	store := NewInMemoryStore(time.Hour, nil)
	var last domain.Session
	for i := 0; i < 10; i++ {
		snap, err := store.WithSession(context.Background(), "s1", func(s *domain.Session) error {
			s.AppendTurn(domain.Turn{Role: domain.RoleUser, Text: "msg"}, 3)
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		last = snap
	}
	if len(last.Turns) != 3 {
		t.Errorf("history length = %d, want capped at 3", len(last.Turns))
	}
}

func TestWithSession_IsolatedAcrossSessionIDs(t *testing.T) {
	store := NewInMemoryStore(time.Hour, nil)
	_, err := store.WithSession(context.Background(), "a", func(s *domain.Session) error {
		s.AppendTurn(domain.Turn{Role: domain.RoleUser, Text: "from a"}, 50)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapB, err := store.WithSession(context.Background(), "b", func(s *domain.Session) error {
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapB.Turns) != 0 {
		t.Errorf("session b saw %d turns, want 0; sessions must be isolated", len(snapB.Turns))
	}
}

func TestEvict_RemovesExpiredSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewInMemoryStore(time.Minute, nil).WithClock(func() time.Time { return now })

	_, err := store.WithSession(context.Background(), "stale", func(s *domain.Session) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	// Touching any session triggers the opportunistic sweep.
	_, err = store.WithSession(context.Background(), "fresh", func(s *domain.Session) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (only the fresh session survives eviction)", store.Len())
	}
}

func TestWithSession_ConcurrentAccessSameSessionSerializes(t *testing.T) {
	store := NewInMemoryStore(time.Hour, nil)
	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := store.WithSession(context.Background(), "shared", func(s *domain.Session) error {
				s.AppendTurn(domain.Turn{Role: domain.RoleUser, Text: "x"}, 1000)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	snap, err := store.WithSession(context.Background(), "shared", func(s *domain.Session) error { return nil })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Turns) != n {
		t.Errorf("got %d turns after %d concurrent writers, want exactly %d (no lost updates)", len(snap.Turns), n, n)
	}
}

func TestSnapshotRestore_RoundTrips(t *testing.T) {
	s := domain.NewSession("s1", time.Now())
	s.LastIntent = domain.IntentOutletSearch
	s.LastShownOutlets = []domain.Outlet{{Name: "ZUS Coffee KLCC"}}
	s.PreferredLocation = "kuala lumpur"

	snap := s.Snapshot()

	s.LastIntent = domain.IntentProductSearch
	s.LastShownOutlets = nil
	s.PreferredLocation = "penang"

	s.Restore(snap)
	if s.LastIntent != domain.IntentOutletSearch {
		t.Errorf("LastIntent = %v after restore, want OUTLET_SEARCH", s.LastIntent)
	}
	if len(s.LastShownOutlets) != 1 || s.LastShownOutlets[0].Name != "ZUS Coffee KLCC" {
		t.Errorf("LastShownOutlets = %+v after restore, want the KLCC outlet back", s.LastShownOutlets)
	}
	if s.PreferredLocation != "kuala lumpur" {
		t.Errorf("PreferredLocation = %q after restore, want kuala lumpur", s.PreferredLocation)
	}
}
