package titanium

import (
	"log/slog"
	"sync"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oriumgames/titanium/nbthandler"
	"github.com/oriumgames/titanium/reward"
)

// Controller is the central Titanium coordinator. It owns the modules, the
// sessions of joined players, the event subscriptions and the scheduler.
// Create one with Builder.Init. Several controllers may coexist in one
// process.
type Controller struct {
	log      *slog.Logger
	modules  []*Module
	events   *eventManager
	registry *nbthandler.Registry
	worlds   []*world.World

	sessionsMu     sync.RWMutex
	sessions       map[*world.EntityHandle]*Session
	sessionsByUUID map[uuid.UUID]*Session
	sessionsByName map[string]*Session

	taskQueue *taskQueue
	scheduler *Scheduler
}

func newController(cfg Config, log *slog.Logger, ws []*world.World) *Controller {
	c := &Controller{
		log:            log,
		events:         newEventManager(),
		registry:       nbthandler.NewRegistry(),
		worlds:         ws,
		sessions:       make(map[*world.EntityHandle]*Session),
		sessionsByUUID: make(map[uuid.UUID]*Session),
		sessionsByName: make(map[string]*Session),
		taskQueue:      newTaskQueue(),
	}
	c.scheduler = newScheduler(c, cfg.TickRate)
	return c
}

// Logger returns the controller's logger.
func (c *Controller) Logger() *slog.Logger { return c.log }

// Registry returns the NBT field handler registry used by tiles.
func (c *Controller) Registry() *nbthandler.Registry { return c.registry }

// Worlds returns the worlds the scheduler ticks.
func (c *Controller) Worlds() []*world.World { return c.worlds }

// Modules returns every module, enabled or not.
func (c *Controller) Modules() []*Module { return c.modules }

// Module returns the module called name.
func (c *Controller) Module(name string) (*Module, bool) {
	for _, m := range c.modules {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

// Join creates the session of a player that just joined and installs its
// handler. EventJoin is posted afterwards from the player's world
// transaction, once the current one has finished.
func (c *Controller) Join(p *player.Player) *Session {
	s := c.newSession(p.H(), p.UUID(), p.Name(), p.XUID())
	s.world.Store(p.Tx().World())
	c.addSession(s)
	p.Handle(NewHandler(s))

	go s.Exec(func(tx *world.Tx, p *player.Player) {
		c.Post(s, &EventJoin{Player: p, Tx: tx})
	})
	return s
}

func (c *Controller) newSession(h *world.EntityHandle, id uuid.UUID, name, xuid string) *Session {
	return &Session{handle: h, uuid: id, name: name, xuid: xuid, controller: c}
}

func (c *Controller) addSession(s *Session) {
	c.sessionsMu.Lock()
	defer c.sessionsMu.Unlock()

	if s.handle != nil {
		c.sessions[s.handle] = s
	}
	c.sessionsByUUID[s.uuid] = s
	c.sessionsByName[s.name] = s
}

func (c *Controller) removeSession(s *Session) {
	c.sessionsMu.Lock()
	defer c.sessionsMu.Unlock()

	if s.handle != nil && c.sessions[s.handle] == s {
		delete(c.sessions, s.handle)
	}
	if c.sessionsByUUID[s.uuid] == s {
		delete(c.sessionsByUUID, s.uuid)
	}
	if c.sessionsByName[s.name] == s {
		delete(c.sessionsByName, s.name)
	}
}

// Session returns the session of p, or nil.
func (c *Controller) Session(p *player.Player) *Session {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	return c.sessions[p.H()]
}

// SessionByUUID returns the session of the player with the given UUID, or nil.
func (c *Controller) SessionByUUID(id uuid.UUID) *Session {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	return c.sessionsByUUID[id]
}

// SessionByName returns the session of the named player, or nil.
func (c *Controller) SessionByName(name string) *Session {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()
	return c.sessionsByName[name]
}

// Sessions returns every open session.
func (c *Controller) Sessions() []*Session {
	c.sessionsMu.RLock()
	defer c.sessionsMu.RUnlock()

	out := make([]*Session, 0, len(c.sessionsByUUID))
	for _, s := range c.sessionsByUUID {
		if !s.closed.Load() {
			out = append(out, s)
		}
	}
	return out
}

// Subscribe registers subscriptions that are not tied to a feature. They
// always run.
func (c *Controller) Subscribe(subs ...Subscriber) {
	for _, sub := range subs {
		c.events.add(sub, nil)
	}
}

// Post runs the subscriptions for event, which must be a pointer such as
// *EventChat. s may be nil for events without a player.
func (c *Controller) Post(s *Session, event any) {
	c.events.post(s, event, (*Feature).Enabled)
}

// Broadcast posts event once for every open session.
func (c *Controller) Broadcast(event any) {
	for _, s := range c.Sessions() {
		c.Post(s, event)
	}
}

// RewardBroadcaster returns a reward.Broadcaster that delivers ledgers to
// the joined players: each session's cached rewards are replaced and
// EventRewardSync is posted for it. It never enters a world transaction, so
// it is safe to call from one.
func (c *Controller) RewardBroadcaster() reward.Broadcaster {
	return reward.BroadcasterFunc(func(msg reward.SyncMessage) {
		snap, err := msg.Snapshot()
		if err != nil {
			c.log.Warn("titanium: dropping malformed reward sync", "err", err)
			return
		}
		for _, s := range c.Sessions() {
			s.setRewards(snap)
			c.Post(s, &EventRewardSync{Rewards: snap})
		}
	})
}

// TickNumber returns the number of ticks the scheduler has run.
func (c *Controller) TickNumber() uint64 { return c.scheduler.TickNumber() }

// WorldTime returns the controller's clock in ticks. Tiles use it as their
// world time.
func (c *Controller) WorldTime() int64 { return int64(c.scheduler.TickNumber()) }

// Start starts the scheduler. Builder.Init calls it.
func (c *Controller) Start() { c.scheduler.Start() }

// Shutdown stops the scheduler and closes every session.
func (c *Controller) Shutdown() {
	c.scheduler.Stop()
	for _, s := range c.Sessions() {
		s.close()
	}
}
