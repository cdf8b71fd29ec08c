package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process history used in dev mode and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]Message
	nextID   int64
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[string][]Message),
		now:      time.Now,
	}
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, text string, fromUser bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	msg := Message{
		ID:        s.nextID,
		SessionID: sessionID,
		Text:      text,
		FromUser:  fromUser,
		Kind:      KindText,
		CreatedAt: s.now().UTC(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], msg)
	return msg.ID, nil
}

func (s *MemoryStore) Recent(_ context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.messages[sessionID]
	start := 0
	if len(all) > limit {
		start = len(all) - limit
	}

	out := make([]Message, len(all)-start)
	copy(out, all[start:])
	return out, nil
}
