package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Store is the persistence contract for the session context.
// MergeSlots and ClearSlot must be atomic per token; cross-token operations
// are independent.
type Store interface {
	Load(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	MergeSlots(ctx context.Context, token string, pairs map[string]string) error
	ClearSlot(ctx context.Context, token string, key string) error
	Delete(ctx context.Context, token string) error
}

// MemoryStore keeps sessions in process memory. Per-token atomicity comes
// from one lock per token, lazily created under the index lock.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
		now:      time.Now,
	}
}

func (m *MemoryStore) tokenLock(token string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[token]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[token] = lock
	}
	return lock
}

func (m *MemoryStore) Load(_ context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.Token) == "" {
		return ErrEmptyToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s.Clone()
	return nil
}

func (m *MemoryStore) MergeSlots(_ context.Context, token string, pairs map[string]string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	lock := m.tokenLock(token)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return fmt.Errorf("%w: token=%s", ErrNotFound, token)
	}
	if s.MergeSlots(pairs) > 0 {
		s.Touch(m.now())
	}
	return nil
}

func (m *MemoryStore) ClearSlot(_ context.Context, token string, key string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	lock := m.tokenLock(token)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return fmt.Errorf("%w: token=%s", ErrNotFound, token)
	}
	s.ClearSlot(key)
	s.Touch(m.now())
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	delete(m.locks, token)
	return nil
}
