package reward

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Manager holds the registered reward definitions. A Manager is created by
// the owner of the server and passed to whatever needs it.
type Manager struct {
	mu    sync.RWMutex
	order []Identifier
	defs  map[Identifier]Definition
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{defs: make(map[Identifier]Definition)}
}

// Register adds d. Registering the same identifier twice fails.
func (m *Manager) Register(d Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.defs[d.id]; ok {
		return fmt.Errorf("%s: %w", d.id, ErrDuplicateReward)
	}
	m.defs[d.id] = d
	m.order = append(m.order, d.id)
	return nil
}

// Reward returns the definition registered under id.
func (m *Manager) Reward(id Identifier) (Definition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.defs[id]
	return d, ok
}

// Rewards returns all definitions in registration order.
func (m *Manager) Rewards() []Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Definition, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.defs[id])
	}
	return out
}

// Collect returns the identifiers of every reward the player is eligible
// for, in registration order.
func (m *Manager) Collect(player uuid.UUID) []Identifier {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Identifier
	for _, id := range m.order {
		if m.defs[id].rule.Eligible(player) {
			out = append(out, id)
		}
	}
	return out
}
