package titanium

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/titanium/reward"
	"github.com/oriumgames/titanium/reward/store"
)

func TestControllerSessions(t *testing.T) {
	c := newTestController()
	steve := c.newSession(nil, uuid.New(), "Steve", "123")
	alex := c.newSession(nil, uuid.New(), "Alex", "")
	c.addSession(steve)
	c.addSession(alex)

	assert.Same(t, steve, c.SessionByUUID(steve.UUID()))
	assert.Same(t, alex, c.SessionByName("Alex"))
	assert.Len(t, c.Sessions(), 2)
	assert.Same(t, c, steve.Controller())

	steve.close()
	assert.True(t, steve.Closed())
	assert.Nil(t, c.SessionByUUID(steve.UUID()))
	assert.Nil(t, c.SessionByName("Steve"))
	assert.Len(t, c.Sessions(), 1)

	// Closing twice is harmless.
	steve.close()
	assert.Len(t, c.Sessions(), 1)
}

func TestControllerBroadcast(t *testing.T) {
	c := newTestController()
	for _, name := range []string{"Steve", "Alex", "Noor"} {
		c.addSession(c.newSession(nil, uuid.New(), name, ""))
	}
	var names []string
	c.Subscribe(On[plainEvent]().Process(func(s *Session, _ *plainEvent) { names = append(names, s.Name()) }))

	c.Broadcast(&plainEvent{})
	assert.ElementsMatch(t, []string{"Steve", "Alex", "Noor"}, names)
}

func TestRewardBroadcasterUpdatesSessions(t *testing.T) {
	c := newTestController()
	steve := c.newSession(nil, uuid.New(), "Steve", "")
	alex := c.newSession(nil, uuid.New(), "Alex", "")
	c.addSession(steve)
	c.addSession(alex)

	synced := 0
	c.Subscribe(On[EventRewardSync]().Process(func(*Session, *EventRewardSync) { synced++ }))

	svc := reward.NewService(testRewards(t), nil, reward.WithBroadcaster(c.RewardBroadcaster()))
	_, err := svc.Login(context.Background(), "overworld", steve.UUID())
	require.NoError(t, err)

	assert.Equal(t, 2, synced)
	want := map[reward.Identifier]int{reward.MustIdentifier("welcome_hat"): 0}
	assert.Equal(t, want, steve.OwnRewards())
	assert.Empty(t, alex.OwnRewards())
	assert.Equal(t, want, alex.Rewards()[steve.UUID()])
}

func TestRewardSyncSubscriberMayUseService(t *testing.T) {
	ctx := context.Background()
	c := newTestController()
	svc := reward.NewService(testRewards(t), nil)
	svc.Attach(c.RewardBroadcaster())

	steve := c.newSession(nil, uuid.New(), "Steve", "")
	c.addSession(steve)
	var held map[reward.Identifier]int
	c.Subscribe(On[EventRewardSync]().Process(func(s *Session, _ *EventRewardSync) {
		var err error
		held, err = svc.Query(ctx, "overworld", s.UUID())
		assert.NoError(t, err)
	}))

	done := make(chan error, 1)
	go func() {
		_, err := svc.Login(ctx, "overworld", steve.UUID())
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("login blocked on a sync subscriber querying the service")
	}
	assert.Equal(t, map[reward.Identifier]int{reward.MustIdentifier("welcome_hat"): 0}, held)
}

func TestRewardsModule(t *testing.T) {
	ctx := context.Background()
	svc := reward.NewService(testRewards(t), store.NewMemory())

	cfg := DefaultConfig()
	cfg.TickRate = 5 * time.Millisecond
	cfg.Rewards.Autosave = 10 * time.Millisecond
	c := NewBuilder().Config(cfg).Module(RewardsModule(svc, cfg)).Init()
	t.Cleanup(c.Shutdown)

	m, ok := c.Module("rewards")
	require.True(t, ok)
	for _, f := range m.Features() {
		assert.True(t, f.Enabled(), f.Key())
	}

	s := c.newSession(nil, uuid.New(), "Steve", "")
	c.addSession(s)
	c.Post(s, &EventJoin{})

	assert.Equal(t, map[reward.Identifier]int{reward.MustIdentifier("welcome_hat"): 0}, s.OwnRewards())

	st, err := svc.Storage(ctx, cfg.Rewards.World)
	require.NoError(t, err)
	assert.True(t, st.IsConfigured(s.UUID()))
	require.Eventually(t, func() bool { return !st.Dirty() }, 5*time.Second, 5*time.Millisecond,
		"autosave never flushed the ledger")
}

func TestRewardsModuleIgnoresToggles(t *testing.T) {
	svc := reward.NewService(testRewards(t), nil)
	cfg := DefaultConfig()
	cfg.Modules = map[string]bool{"rewards": false}
	cfg.Rewards.Autosave = 0

	c := NewBuilder().Config(cfg).Module(RewardsModule(svc, cfg)).Init()
	t.Cleanup(c.Shutdown)

	s := c.newSession(nil, uuid.New(), "Steve", "")
	c.addSession(s)
	c.Post(s, &EventJoin{})
	assert.NotEmpty(t, s.OwnRewards())
}

func testRewards(t *testing.T) *reward.Manager {
	t.Helper()
	m := reward.NewManager()
	hat, err := reward.NewDefinition(reward.MustIdentifier("welcome_hat"), reward.Everyone{}, "plain", "festive")
	require.NoError(t, err)
	badge, err := reward.NewDefinition(reward.MustIdentifier("event_badge"), reward.Nobody{}, "bronze", "gold")
	require.NoError(t, err)
	require.NoError(t, m.Register(hat))
	require.NoError(t, m.Register(badge))
	return m
}
