package session

import (
	"context"
	"testing"
	"time"

	"vendexa_backend/internal/ai"

	"github.com/google/uuid"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()
	leadID := uuid.New()

	if _, err := store.Get(ctx, leadID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	sess := Session{
		LeadID:       leadID,
		History:      []ai.Turn{{Role: "model", Text: "Ola!"}},
		MessageCount: 1,
		StartedAt:    time.Now(),
		LastActiveAt: time.Now(),
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, leadID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MessageCount != 1 || len(got.History) != 1 {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, leadID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, leadID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_ExpiresAfterTTL(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()
	leadID := uuid.New()

	now := time.Now()
	store.now = func() time.Time { return now }

	sess := Session{LeadID: leadID, StartedAt: now, LastActiveAt: now}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, err := store.Get(ctx, leadID); err != nil {
		t.Fatalf("session should still be live: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, leadID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestMemoryStore_CountSkipsExpired(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	fresh := Session{LeadID: uuid.New(), LastActiveAt: now}
	stale := Session{LeadID: uuid.New(), LastActiveAt: now.Add(-5 * time.Minute)}
	if err := store.Save(ctx, fresh); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Save(ctx, stale); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 live session, got %d", count)
	}
}
