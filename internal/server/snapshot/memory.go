package snapshot

import (
	"context"
	"sync"
)

// MemoryStore keeps the body in process memory. It counts saves so tests
// can assert how often the store persisted.
type MemoryStore struct {
	mu    sync.Mutex
	body  []byte
	saves int
	err   error
}

// NewMemoryStore returns an empty store; a nil body means ErrNoSnapshot.
func NewMemoryStore(body []byte) *MemoryStore {
	m := &MemoryStore{}
	if body != nil {
		m.body = append([]byte(nil), body...)
	}
	return m
}

func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.body == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), m.body...), nil
}

func (m *MemoryStore) Save(ctx context.Context, body []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.body = append([]byte(nil), body...)
	m.saves++
	return nil
}

// Saves returns how many successful Save calls happened.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Body returns a copy of the stored body.
func (m *MemoryStore) Body() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.body...)
}

// FailSaves makes every following Save return err; nil restores saving.
func (m *MemoryStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
