package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "jobapply/internal/domain/jobform"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)}
	s := NewMemoryStore(ttl)
	s.now = clock.Now
	return s, clock
}

// TestMemoryStore_CreateAndWith tests that a created draft is reachable by its token.
func TestMemoryStore_CreateAndWith(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Hour)

	token, err := s.Create(ctx, domain.NewDraft("ref-1", time.Now()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}

	err = s.With(ctx, token, func(d *domain.Draft) error {
		return d.UpdateField(domain.FieldFullName, "Jane Doe")
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}

	var name string
	_ = s.With(ctx, token, func(d *domain.Draft) error {
		name = d.Form().FullName
		return nil
	})
	if name != "Jane Doe" {
		t.Errorf("FullName = %q, want %q", name, "Jane Doe")
	}
}

// TestMemoryStore_With_PropagatesError tests that fn's error is returned unchanged.
func TestMemoryStore_With_PropagatesError(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Hour)
	token, _ := s.Create(ctx, domain.NewDraft("ref-1", time.Now()))

	err := s.With(ctx, token, func(d *domain.Draft) error {
		return d.UpdateField("salary", "1")
	})
	if !errors.Is(err, domain.ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
}

// TestMemoryStore_UnknownToken tests lookups of tokens that were never issued or were deleted.
func TestMemoryStore_UnknownToken(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(time.Hour)

	noop := func(*domain.Draft) error { return nil }
	if err := s.With(ctx, "missing", noop); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	token, _ := s.Create(ctx, domain.NewDraft("ref-1", time.Now()))
	s.Delete(ctx, token)
	if err := s.With(ctx, token, noop); !errors.Is(err, ErrNotFound) {
		t.Errorf("after Delete err = %v, want ErrNotFound", err)
	}
}

// TestMemoryStore_Expiry tests that idle drafts expire and active ones are kept.
func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(time.Hour)
	noop := func(*domain.Draft) error { return nil }

	idle, _ := s.Create(ctx, domain.NewDraft("idle", time.Now()))
	active, _ := s.Create(ctx, domain.NewDraft("active", time.Now()))

	clock.Advance(40 * time.Minute)
	if err := s.With(ctx, active, noop); err != nil {
		t.Fatalf("active With: %v", err)
	}
	clock.Advance(40 * time.Minute)

	if n := s.Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if err := s.With(ctx, idle, noop); !errors.Is(err, ErrNotFound) {
		t.Errorf("idle err = %v, want ErrNotFound", err)
	}
	if err := s.With(ctx, active, noop); err != nil {
		t.Errorf("active err = %v, want nil", err)
	}

	clock.Advance(2 * time.Hour)
	if err := s.With(ctx, active, noop); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired err = %v, want ErrNotFound", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after expired lookup", s.Len())
	}
}

// TestMemoryStore_SerializesEvents tests that concurrent events on one draft never interleave.
func TestMemoryStore_SerializesEvents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(time.Hour)
	token, _ := s.Create(ctx, domain.NewDraft("ref-1", time.Now()))

	var (
		wg      sync.WaitGroup
		inside  int
		maxSeen int
		mu      sync.Mutex
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.With(ctx, token, func(d *domain.Draft) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				err := d.SetSkill(domain.SkillCSS, true)

				mu.Lock()
				inside--
				mu.Unlock()
				return err
			})
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("max concurrent handlers = %d, want 1", maxSeen)
	}
}

// TestMemoryStore_RunJanitor tests that the janitor stops with its context.
func TestMemoryStore_RunJanitor(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
