package reward

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/oriumgames/titanium/reward/store"
)

// ErrClosed is returned by Flush once the service was closed.
var ErrClosed = errors.New("reward service closed")

// Service ties the registered rewards to the per world ledgers. It grants
// login rewards, applies command changes, keeps clients in sync and writes
// dirty ledgers back to the backend.
//
// No lock of the service is held while a Broadcaster or the backend runs, so
// broadcasters may call back into the service.
type Service struct {
	manager *Manager
	backend store.Backend
	metrics *Metrics
	log     *slog.Logger

	// mu guards the ledgers. Sync messages are queued while it is held, so
	// they are queued in the order the ledgers changed.
	mu       sync.Mutex
	storages map[string]*Storage

	sendMu      sync.Mutex
	broadcaster Broadcaster
	pending     []SyncMessage
	sending     bool

	// flushMu serializes backend writes.
	flushMu sync.Mutex
	closed  bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger used for failures. slog.Default is used
// otherwise.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records service activity on m.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithBroadcaster sets where sync messages are delivered. Several calls add
// several broadcasters.
func WithBroadcaster(b Broadcaster) ServiceOption {
	return func(s *Service) {
		if b == nil {
			return
		}
		if s.broadcaster == nil {
			s.broadcaster = b
			return
		}
		s.broadcaster = Broadcasters{s.broadcaster, b}
	}
}

// NewService creates a service over the rewards of m, persisting ledgers in
// backend. A nil backend keeps ledgers in memory.
func NewService(m *Manager, backend store.Backend, opts ...ServiceOption) *Service {
	if m == nil {
		m = NewManager()
	}
	if backend == nil {
		backend = store.NewMemory()
	}
	s := &Service{
		manager:  m,
		backend:  backend,
		log:      slog.Default(),
		storages: make(map[string]*Storage),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach adds a broadcaster after construction, for recipients that only
// exist once the service is in use.
func (s *Service) Attach(b Broadcaster) {
	s.sendMu.Lock()
	WithBroadcaster(b)(s)
	s.sendMu.Unlock()
}

// Manager returns the reward registry.
func (s *Service) Manager() *Manager { return s.manager }

// Metrics returns the metrics the service records to, or nil.
func (s *Service) Metrics() *Metrics { return s.metrics }

// Storage returns the ledger of world, loading it from the backend the first
// time it is requested.
func (s *Service) Storage(ctx context.Context, world string) (*Storage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.storage(ctx, world)
}

// storage must be called with s.mu held.
func (s *Service) storage(ctx context.Context, world string) (*Storage, error) {
	if st, ok := s.storages[world]; ok {
		return st, nil
	}
	st := NewStorage(world)
	data, found, err := s.backend.Load(ctx, world)
	if err != nil {
		return nil, fmt.Errorf("load rewards of %s: %w", world, err)
	}
	if found {
		if err := st.Deserialize(data); err != nil {
			return nil, fmt.Errorf("load rewards of %s: %w", world, err)
		}
	}
	s.storages[world] = st
	return st, nil
}

// Login grants the first option of every reward player is eligible for,
// unless the player was configured before. The world's ledger is broadcast
// afterwards either way. The granted rewards are returned.
func (s *Service) Login(ctx context.Context, world string, player uuid.UUID) ([]Identifier, error) {
	var granted []Identifier
	err := s.change(ctx, world, func(st *Storage) error {
		if st.IsConfigured(player) {
			return nil
		}
		granted = s.manager.Collect(player)
		for _, id := range granted {
			st.Add(player, id, 0)
		}
		st.Configure(player)
		st.MarkDirty()
		s.metrics.grant(SourceLogin, len(granted))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// Grant gives player option of reward, replacing any option held before.
func (s *Service) Grant(ctx context.Context, world string, player uuid.UUID, reward Identifier, option int) error {
	if err := s.validate(reward, option); err != nil {
		return err
	}
	return s.change(ctx, world, func(st *Storage) error {
		st.Add(player, reward, option)
		st.MarkDirty()
		s.metrics.grant(SourceCommand, 1)
		return nil
	})
}

// Select switches the option of a reward player already holds.
func (s *Service) Select(ctx context.Context, world string, player uuid.UUID, reward Identifier, option int) error {
	if err := s.validate(reward, option); err != nil {
		return err
	}
	return s.change(ctx, world, func(st *Storage) error {
		if _, ok := st.Option(player, reward); !ok {
			return fmt.Errorf("%w: %s", ErrNotOwned, reward)
		}
		st.Add(player, reward, option)
		st.MarkDirty()
		return nil
	})
}

// Revoke takes reward away from player.
func (s *Service) Revoke(ctx context.Context, world string, player uuid.UUID, reward Identifier) error {
	return s.change(ctx, world, func(st *Storage) error {
		if !st.Remove(player, reward) {
			return fmt.Errorf("%w: %s", ErrNotOwned, reward)
		}
		st.MarkDirty()
		return nil
	})
}

func (s *Service) validate(reward Identifier, option int) error {
	def, ok := s.manager.Reward(reward)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReward, reward)
	}
	if _, ok := def.Option(option); !ok {
		return fmt.Errorf("%w: %d for %s", ErrInvalidOption, option, reward)
	}
	return nil
}

// Query returns the rewards player holds in world.
func (s *Service) Query(ctx context.Context, world string, player uuid.UUID) (map[Identifier]int, error) {
	st, err := s.Storage(ctx, world)
	if err != nil {
		return nil, err
	}
	return st.Rewards(player), nil
}

// Sync broadcasts the ledger of world without changing it.
func (s *Service) Sync(ctx context.Context, world string) error {
	return s.change(ctx, world, nil)
}

// change applies fn to the ledger of world and, if it succeeds, broadcasts
// the ledger once s.mu is released. A nil fn only broadcasts.
func (s *Service) change(ctx context.Context, world string, fn func(st *Storage) error) error {
	s.mu.Lock()
	st, err := s.storage(ctx, world)
	if err == nil && fn != nil {
		err = fn(st)
	}
	if err == nil {
		s.queue(SyncMessage{Data: st.SerializeSimple()})
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.deliver()
	return nil
}

// queue must be called with s.mu held.
func (s *Service) queue(msg SyncMessage) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.broadcaster != nil {
		s.pending = append(s.pending, msg)
	}
}

// deliver sends queued messages in order. Only one goroutine delivers at a
// time: if another one already is, deliver returns and that goroutine sends
// the messages queued since, including those queued by a broadcaster that
// changed a ledger from within Broadcast.
func (s *Service) deliver() {
	s.sendMu.Lock()
	if s.sending {
		s.sendMu.Unlock()
		return
	}
	s.sending = true
	for {
		batch, b := s.pending, s.broadcaster
		s.pending = nil
		if len(batch) == 0 {
			s.sending = false
			s.sendMu.Unlock()
			return
		}
		s.sendMu.Unlock()

		for _, msg := range batch {
			s.send(b, msg)
		}
		s.sendMu.Lock()
	}
}

func (s *Service) send(b Broadcaster, msg SyncMessage) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("titanium: reward broadcaster panicked", "panic", r)
		}
	}()
	b.Broadcast(msg)
	s.metrics.sync()
}

// Flush writes every dirty ledger to the backend. Ledgers are serialized
// under the lock and written without it, so changes made while a flush is
// writing are kept dirty for the next one. Ledgers that fail to save stay
// dirty as well.
func (s *Service) Flush(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.flush(ctx)
}

type ledgerSave struct {
	world   string
	st      *Storage
	data    map[string]any
	version uint64
}

// flush must be called with s.flushMu held.
func (s *Service) flush(ctx context.Context) error {
	s.mu.Lock()
	var saves []ledgerSave
	for _, world := range slices.Sorted(maps.Keys(s.storages)) {
		st := s.storages[world]
		if data, version, dirty := st.saveState(); dirty {
			saves = append(saves, ledgerSave{world: world, st: st, data: data, version: version})
		}
	}
	s.mu.Unlock()

	var errs []error
	for _, sv := range saves {
		err := s.backend.Save(ctx, sv.world, sv.data)
		s.metrics.flush(err)
		if err != nil {
			s.log.Error("titanium: failed to save rewards", "world", sv.world, "err", err)
			errs = append(errs, fmt.Errorf("save rewards of %s: %w", sv.world, err))
			continue
		}
		sv.st.markCleanAt(sv.version)
	}
	return errors.Join(errs...)
}

// Close flushes every ledger and closes the backend. Later flushes return
// ErrClosed.
func (s *Service) Close(ctx context.Context) error {
	s.flushMu.Lock()
	defer s.flushMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Join(s.flush(ctx), s.backend.Close())
}
