package persistence

import (
	"context"
	"errors"
	"sync"
)

// ErrEmpty signals that no snapshot has been saved yet. Callers treat it as
// an empty store, not a failure.
var ErrEmpty = errors.New("no snapshot")

// Memory is an in-process backend for tests and ephemeral deployments.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, ErrEmpty
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}
