package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/legalease/internal/metrics"
)

// Manager holds the live sessions of a server process. Sessions are
// in-memory only and do not survive a restart.
type Manager struct {
	mu       sync.RWMutex
	pipeline *Pipeline
	sessions map[string]*Session
}

func NewManager(p *Pipeline) *Manager {
	return &Manager{pipeline: p, sessions: make(map[string]*Session)}
}

func (m *Manager) Create() *Session {
	s := NewSession(uuid.NewString(), m.pipeline)

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Expire drops sessions idle for longer than maxIdle and returns their IDs.
func (m *Manager) Expire(maxIdle time.Duration) []string {
	cutoff := time.Now().Add(-maxIdle)

	// Sessions are checked outside the map lock: a session answering a
	// question holds its own lock for the whole generation.
	m.mu.RLock()
	snapshot := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		snapshot = append(snapshot, s)
	}
	m.mu.RUnlock()

	var idle []string
	for _, s := range snapshot {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s.ID)
		}
	}

	m.mu.Lock()
	for _, id := range idle {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	return idle
}
