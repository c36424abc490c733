package game

import (
	"sync"
	"time"
)

// Manager keeps the live sessions by id.
type Manager struct {
	games map[string]*Session
	mu    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		games: make(map[string]*Session),
	}
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.games[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Set(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[s.ID()] = s
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Stale lists the sessions not touched since cutoff, finished or not.
func (m *Manager) Stale(cutoff time.Time) []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stale []*Session
	for _, s := range m.games {
		if s.UpdatedAt().Before(cutoff) {
			stale = append(stale, s)
		}
	}
	return stale
}
