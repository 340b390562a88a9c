package titanium

import (
	"sync"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oriumgames/titanium/reward"
)

// Session is a joined player as seen by Titanium. It wraps the player's
// EntityHandle, which stays valid across transactions, and caches the
// identity and reward view of the player.
type Session struct {
	handle *world.EntityHandle
	uuid   uuid.UUID
	name   string
	xuid   string

	controller *Controller

	world atomic.Pointer[world.World]

	mu      sync.RWMutex
	rewards reward.Snapshot

	closed atomic.Bool
}

// Handle returns the underlying EntityHandle.
func (s *Session) Handle() *world.EntityHandle { return s.handle }

// UUID returns the player's UUID.
func (s *Session) UUID() uuid.UUID { return s.uuid }

// Name returns the player's name.
func (s *Session) Name() string { return s.name }

// XUID returns the player's XUID.
func (s *Session) XUID() string { return s.xuid }

// Controller returns the controller that owns the session.
func (s *Session) Controller() *Controller { return s.controller }

// World returns the world the player was last seen in.
func (s *Session) World() *world.World { return s.world.Load() }

// Closed reports whether the player left.
func (s *Session) Closed() bool { return s.closed.Load() }

// Player returns the player within tx, or false if it is not in tx's world.
func (s *Session) Player(tx *world.Tx) (*player.Player, bool) {
	if s.handle == nil {
		return nil, false
	}
	e, ok := s.handle.Entity(tx)
	if !ok {
		return nil, false
	}
	p, ok := e.(*player.Player)
	return p, ok
}

// Exec runs fn within the player's world transaction. It returns false if
// the player is offline or the session is closed. Exec must not be called
// from within a transaction of the same world.
func (s *Session) Exec(fn func(tx *world.Tx, p *player.Player)) bool {
	if s.closed.Load() || s.handle == nil {
		return false
	}
	return s.handle.ExecWorld(func(tx *world.Tx, e world.Entity) {
		if p, ok := e.(*player.Player); ok {
			fn(tx, p)
		}
	})
}

// Rewards returns the last reward ledger synced to the player. It describes
// every player, not only this one.
func (s *Session) Rewards() reward.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards
}

// OwnRewards returns the rewards of this player in the last synced ledger.
func (s *Session) OwnRewards() map[reward.Identifier]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards[s.uuid]
}

func (s *Session) setRewards(snap reward.Snapshot) {
	s.mu.Lock()
	s.rewards = snap
	s.mu.Unlock()
}

// Post posts event to the controller's subscriptions on behalf of the
// session.
func (s *Session) Post(event any) {
	if s.controller != nil && !s.closed.Load() {
		s.controller.Post(s, event)
	}
}

func (s *Session) close() {
	if s.closed.Swap(true) {
		return
	}
	if s.controller != nil {
		s.controller.removeSession(s)
	}
}
