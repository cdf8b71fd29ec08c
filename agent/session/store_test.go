package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemoryStoreLoadNotFound(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreSaveLoadCopies(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	sess := New("tok-1", "u1", "Olena", "uk", time.Now())
	sess.MergeSlots(map[string]string{SlotAccountID: "42"})

	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	loaded.Slots[SlotAccountID] = "tampered"

	again, err := store.Load(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.Slot(SlotAccountID) != "42" {
		t.Fatalf("store leaked internal state: %q", again.Slot(SlotAccountID))
	}
}

func TestMemoryStoreMergeSlotsNotFound(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	err := store.MergeSlots(context.Background(), "missing", map[string]string{SlotPhone: "0671234567"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("MergeSlots() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreMergeSlotsFirstWriterWins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Save(ctx, New("tok-1", "", "", "", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.MergeSlots(ctx, "tok-1", map[string]string{SlotPlatform: "PS4"}); err != nil {
		t.Fatalf("MergeSlots() error = %v", err)
	}
	if err := store.MergeSlots(ctx, "tok-1", map[string]string{SlotPlatform: "PS5"}); err != nil {
		t.Fatalf("MergeSlots() error = %v", err)
	}

	sess, err := store.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sess.Slot(SlotPlatform) != "PS4" {
		t.Fatalf("platform = %q, want PS4", sess.Slot(SlotPlatform))
	}
}

func TestMemoryStoreConcurrentMergesSameToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Save(ctx, New("tok-1", "", "", "", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		value := "PS4"
		if i%2 == 1 {
			value = "PS5"
		}
		go func(v string) {
			defer wg.Done()
			_ = store.MergeSlots(ctx, "tok-1", map[string]string{SlotPlatform: v})
		}(value)
	}
	wg.Wait()

	sess, err := store.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := sess.Slot(SlotPlatform); got != "PS4" && got != "PS5" {
		t.Fatalf("platform = %q, want one writer to win cleanly", got)
	}
}

func TestMemoryStoreClearSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	sess := New("tok-1", "", "", "", time.Now())
	sess.MergeSlots(map[string]string{SlotPhone: "0671234567"})
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := store.ClearSlot(ctx, "tok-1", SlotPhone); err != nil {
		t.Fatalf("ClearSlot() error = %v", err)
	}

	loaded, err := store.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.HasSlot(SlotPhone) {
		t.Fatalf("phone still set after clear: %q", loaded.Slot(SlotPhone))
	}
}
