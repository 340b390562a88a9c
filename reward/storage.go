package reward

import (
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/oriumgames/titanium/nbthandler"
)

// Storage is the reward ledger of one world: which option of which reward
// each player holds, and which players have already received their login
// rewards.
type Storage struct {
	world string

	mu         sync.RWMutex
	players    map[uuid.UUID]map[Identifier]int
	configured map[uuid.UUID]struct{}
	dirty      bool
	// version counts MarkDirty calls.
	version uint64
}

// NewStorage returns an empty ledger for world.
func NewStorage(world string) *Storage {
	return &Storage{
		world:      world,
		players:    make(map[uuid.UUID]map[Identifier]int),
		configured: make(map[uuid.UUID]struct{}),
	}
}

// World returns the world the ledger belongs to.
func (s *Storage) World() string { return s.world }

// Add records that player holds option of reward. An existing entry for the
// same reward is overwritten.
func (s *Storage) Add(player uuid.UUID, reward Identifier, option int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rewards, ok := s.players[player]
	if !ok {
		rewards = make(map[Identifier]int)
		s.players[player] = rewards
	}
	rewards[reward] = option
}

// Remove deletes the entry for reward. It reports whether one existed.
func (s *Storage) Remove(player uuid.UUID, reward Identifier) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rewards, ok := s.players[player]
	if !ok {
		return false
	}
	if _, ok := rewards[reward]; !ok {
		return false
	}
	delete(rewards, reward)
	if len(rewards) == 0 {
		delete(s.players, player)
	}
	return true
}

// Option returns the option player holds for reward.
func (s *Storage) Option(player uuid.UUID, reward Identifier) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	opt, ok := s.players[player][reward]
	return opt, ok
}

// Rewards returns a copy of the rewards held by player.
func (s *Storage) Rewards(player uuid.UUID) map[Identifier]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.players[player])
}

// Players returns every player holding at least one reward, sorted.
func (s *Storage) Players() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(maps.Keys(s.players))
}

// IsConfigured reports whether player already received login rewards.
func (s *Storage) IsConfigured(player uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.configured[player]
	return ok
}

// Configure marks player as having received login rewards.
func (s *Storage) Configure(player uuid.UUID) {
	s.mu.Lock()
	s.configured[player] = struct{}{}
	s.mu.Unlock()
}

// ConfiguredPlayers returns the configured players, sorted.
func (s *Storage) ConfiguredPlayers() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(maps.Keys(s.configured))
}

// MarkDirty flags the ledger to be written on the next flush.
func (s *Storage) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.version++
	s.mu.Unlock()
}

// Dirty reports whether the ledger changed since it was last flushed.
func (s *Storage) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// saveState returns the persisted form of the ledger and the version it was
// taken at, or false if there is nothing to save.
func (s *Storage) saveState() (map[string]any, uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.dirty {
		return nil, s.version, false
	}
	return s.serialize(), s.version, true
}

// markCleanAt clears the dirty flag unless the ledger changed after version.
func (s *Storage) markCleanAt(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return false
	}
	s.dirty = false
	return true
}

// SerializeSimple returns the ledger without server bookkeeping, suitable for
// sending to clients.
func (s *Storage) SerializeSimple() nbthandler.Compound {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return nbthandler.Compound{"Players": s.encodePlayers()}
}

// Serialize returns the full persisted form of the ledger.
func (s *Storage) Serialize() nbthandler.Compound {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serialize()
}

// serialize must be called with s.mu held.
func (s *Storage) serialize() nbthandler.Compound {
	configured := make([]string, 0, len(s.configured))
	for _, id := range sortedIDs(maps.Keys(s.configured)) {
		configured = append(configured, id.String())
	}
	return nbthandler.Compound{
		"Players":    s.encodePlayers(),
		"Configured": configured,
	}
}

// Deserialize replaces the ledger's contents with c. The dirty flag is left
// untouched.
func (s *Storage) Deserialize(c nbthandler.Compound) error {
	players, err := decodePlayers(c)
	if err != nil {
		return err
	}
	configured := make(map[uuid.UUID]struct{})
	if raw, ok := c["Configured"]; ok {
		list, ok := nbthandler.List(raw)
		if !ok {
			return fmt.Errorf("decode ledger: Configured is %T, not a list", raw)
		}
		for _, e := range list {
			str, _ := e.(string)
			id, err := uuid.Parse(str)
			if err != nil {
				return fmt.Errorf("decode ledger: configured player %q: %w", str, err)
			}
			configured[id] = struct{}{}
		}
	}

	s.mu.Lock()
	s.players = players
	s.configured = configured
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the player to reward mapping.
func (s *Storage) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(Snapshot, len(s.players))
	for p, rewards := range s.players {
		snap[p] = maps.Clone(rewards)
	}
	return snap
}

// encodePlayers must be called with s.mu held.
func (s *Storage) encodePlayers() []map[string]any {
	out := make([]map[string]any, 0, len(s.players))
	for _, p := range sortedIDs(maps.Keys(s.players)) {
		rewards := s.players[p]
		ids := make([]Identifier, 0, len(rewards))
		for id := range rewards {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

		entries := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, map[string]any{
				"Reward": id.String(),
				"Option": int32(rewards[id]),
			})
		}
		out = append(out, map[string]any{
			"UUID":    p.String(),
			"Rewards": entries,
		})
	}
	return out
}
