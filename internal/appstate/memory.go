package appstate

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu    sync.RWMutex
	store map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{store: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	values, ok := m.store[sessionID]
	if !ok {
		return "", false, nil
	}
	value, ok := values[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	values, ok := m.store[sessionID]
	if !ok {
		values = make(map[string]string)
		m.store[sessionID] = values
	}
	values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if values, ok := m.store[sessionID]; ok {
		delete(values, key)
		if len(values) == 0 {
			delete(m.store, sessionID)
		}
	}
	return nil
}
