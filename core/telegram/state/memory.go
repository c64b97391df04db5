package state

import "sync"

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryManager constructs the in-memory Manager.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]Session),
	}
}

func (m *memoryManager) Get(adminID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[adminID]; ok {
		return s
	}
	return Session{State: StateIdle}
}

func (m *memoryManager) Await(adminID, target int64) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, ok := m.sessions[adminID]
	if !ok {
		prev = Session{State: StateIdle}
	}
	m.sessions[adminID] = Session{State: StateAwaitingReply, Target: target}
	return prev
}

func (m *memoryManager) Clear(adminID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[adminID]
	delete(m.sessions, adminID)
	return ok
}

func (m *memoryManager) ClearIf(adminID, target int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[adminID]
	if !ok || s.Target != target {
		return false
	}
	delete(m.sessions, adminID)
	return true
}

func (m *memoryManager) InProgress(adminID int64) bool {
	return m.Get(adminID).State == StateAwaitingReply
}
