package history

import (
	"context"
	"fmt"
	"testing"
)

func TestMemoryStoreAppendAssignsIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.Append(ctx, "sess-1", "hi", true)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	second, err := store.Append(ctx, "sess-1", "hello, which account?", false)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if first == 0 || second <= first {
		t.Fatalf("ids = %d, %d, want monotonically increasing", first, second)
	}
}

func TestMemoryStoreRecentOldestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 4; i++ {
		if _, err := store.Append(ctx, "sess-1", fmt.Sprintf("m%d", i), i%2 == 0); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, "sess-1", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[0].Text != "m0" || got[3].Text != "m3" {
		t.Fatalf("order wrong: first=%q last=%q", got[0].Text, got[3].Text)
	}
	if !got[0].FromUser || got[1].FromUser {
		t.Fatalf("from_user flags lost: %v %v", got[0].FromUser, got[1].FromUser)
	}
}

func TestMemoryStoreRecentWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 15; i++ {
		if _, err := store.Append(ctx, "sess-1", fmt.Sprintf("m%d", i), true); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.Recent(ctx, "sess-1", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	if got[0].Text != "m5" || got[9].Text != "m14" {
		t.Fatalf("window wrong: first=%q last=%q", got[0].Text, got[9].Text)
	}
}

func TestMemoryStoreSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if _, err := store.Append(ctx, "sess-1", "one", true); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := store.Append(ctx, "sess-2", "two", true); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := store.Recent(ctx, "sess-1", 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "one" {
		t.Fatalf("sess-1 history = %#v", got)
	}
}

func TestMemoryStoreRecentZeroLimit(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	got, err := store.Recent(context.Background(), "sess-1", 0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
