package state

import (
	"context"
	"sync"
)

// MemoryStore keeps states for the lifetime of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (m *MemoryStore) Get(_ context.Context, userID int64) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.states[userID]), nil
}

func (m *MemoryStore) Set(ctx context.Context, userID int64, s State) error {
	if s.IsIdle() {
		return m.Clear(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = clone(s)
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	return nil
}

// clone detaches slices so callers cannot mutate stored state.
func clone(s State) State {
	if s.Questions != nil {
		s.Questions = append([]string(nil), s.Questions...)
	}
	if s.Answers != nil {
		s.Answers = append([]string{}, s.Answers...)
	}
	return s
}
