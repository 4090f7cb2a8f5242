package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is the in-memory Storage implementation. Entries live for
// the process lifetime with no eviction.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]*Conversation
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory conversation store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]*Conversation),
	}
}

// Get returns a copy of the stored conversation or ErrStateNotFound.
func (s *MemoryStorage) Get(_ context.Context, userID string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.data[userID]
	if !ok {
		return nil, ErrStateNotFound
	}

	return conv.Clone(), nil
}

// Set stores a copy of the conversation keyed by user.
func (s *MemoryStorage) Set(_ context.Context, userID string, conv *Conversation) error {
	if conv == nil {
		return ErrInvalidConversation
	}

	cp := conv.Clone()
	cp.UserID = userID
	cp.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.data[userID] = cp
	s.mu.Unlock()

	return nil
}

// Clear removes the conversation for the user. Clearing an absent entry is a
// no-op.
func (s *MemoryStorage) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.data, userID)
	s.mu.Unlock()
	return nil
}

// All returns copies of every stored conversation.
func (s *MemoryStorage) All(_ context.Context) ([]*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Conversation, 0, len(s.data))
	for _, conv := range s.data {
		out = append(out, conv.Clone())
	}

	return out, nil
}
