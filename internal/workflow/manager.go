package workflow

import "sync"

// Manager holds one workflow machine per session token. Machines are created
// lazily on first use and dropped at logout.
type Manager struct {
	mu       sync.Mutex
	machines map[string]*Machine
}

func NewManager() *Manager {
	return &Manager{machines: make(map[string]*Machine)}
}

func (m *Manager) ForSession(token string) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	machine, ok := m.machines[token]
	if !ok {
		machine = NewMachine()
		m.machines[token] = machine
	}
	return machine
}

func (m *Manager) Drop(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.machines, token)
}
