package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestUpstashRedisStoreRedisKey(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	got, err := store.redisKey("abc")
	if err != nil {
		t.Fatalf("redisKey() error = %v", err)
	}
	if got != "order:session:abc" {
		t.Fatalf("redisKey() = %q, want %q", got, "order:session:abc")
	}
}

func TestUpstashRedisStoreRedisKeyEmptyToken(t *testing.T) {
	t.Parallel()

	store := &UpstashRedisStore{}
	if _, err := store.redisKey("   "); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("redisKey() error = %v, want ErrEmptyToken", err)
	}
}

func TestUpstashRedisStoreSaveCommandShape(t *testing.T) {
	t.Parallel()

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Errorf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
		WithTTL(0),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	sess := New("tok-1", "", "", "", time.Now())
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 3 {
		t.Fatalf("command = %#v, want [SET key payload]", gotCommand)
	}
	if gotCommand[0] != "SET" || gotCommand[1] != "order:session:tok-1" {
		t.Fatalf("command = %#v", gotCommand)
	}
}

func TestUpstashRedisStoreLoadNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	if _, err := store.Load(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestUpstashRedisStoreMergeSlotsRoundTrip(t *testing.T) {
	t.Parallel()

	// A tiny single-key Redis fake: GET returns what SET stored.
	var stored string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var cmd []any
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("decode command: %v", err)
			return
		}
		switch cmd[0] {
		case "SET":
			stored = cmd[2].(string)
			fmt.Fprint(w, `{"result":"OK"}`)
		case "GET":
			if stored == "" {
				fmt.Fprint(w, `{"result":null}`)
				return
			}
			encoded, _ := json.Marshal(stored)
			fmt.Fprintf(w, `{"result":%s}`, encoded)
		default:
			t.Errorf("unexpected command %v", cmd)
		}
	}))
	t.Cleanup(server.Close)

	store, err := NewUpstashRedisStore(
		UpstashRedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewUpstashRedisStore() error = %v", err)
	}

	ctx := context.Background()
	if err := store.Save(ctx, New("tok-1", "", "", "", time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.MergeSlots(ctx, "tok-1", map[string]string{SlotAccountID: "42"}); err != nil {
		t.Fatalf("MergeSlots() error = %v", err)
	}
	if err := store.MergeSlots(ctx, "tok-1", map[string]string{SlotAccountID: "99"}); err != nil {
		t.Fatalf("MergeSlots() error = %v", err)
	}

	sess, err := store.Load(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sess.Slot(SlotAccountID) != "42" {
		t.Fatalf("account = %q, want 42 (first writer wins)", sess.Slot(SlotAccountID))
	}
}
