package tokenstore

import (
	"context"
	"sync"
)

// Memory keeps the slot in process memory. It is the default for tests and
// for sessions that should not survive a restart.
type Memory struct {
	mu       sync.RWMutex
	token    string
	username string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Save(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *Memory) Read(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.token == "" {
		return "", ErrNotFound
	}
	return m.token, nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.username = ""
	m.mu.Unlock()
	return nil
}

func (m *Memory) SaveDisplayName(_ context.Context, name string) error {
	m.mu.Lock()
	m.username = name
	m.mu.Unlock()
	return nil
}

func (m *Memory) ReadDisplayName(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.username == "" {
		return "", ErrNotFound
	}
	return m.username, nil
}
