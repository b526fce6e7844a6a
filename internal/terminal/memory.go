package terminal

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps terminal state in process memory. It is used when no
// redis URL is configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	states  map[string]State
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks:   make(map[string]*sync.Mutex),
		states:  make(map[string]State),
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryStore) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	return l
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[sessionID]
	if !ok {
		return NewState(), nil
	}
	return state.clone(), nil
}

func (m *MemoryStore) Update(ctx context.Context, sessionID string, fn func(*State) error) (State, error) {
	l := m.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	state, err := m.Load(ctx, sessionID)
	if err != nil {
		return State{}, err
	}
	if err := fn(&state); err != nil {
		return State{}, err
	}

	m.mu.Lock()
	m.states[sessionID] = state.clone()
	m.mu.Unlock()
	return state, nil
}

func (m *MemoryStore) Drop(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	delete(m.locks, sessionID)
	return nil
}

func (m *MemoryStore) Revoke(_ context.Context, sessionID string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[sessionID] = until
	return nil
}

func (m *MemoryStore) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[sessionID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(until) {
		delete(m.revoked, sessionID)
		return false, nil
	}
	return true, nil
}
