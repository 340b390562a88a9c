package titanium

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/world"

	"github.com/oriumgames/titanium/reward"
)

// RewardsModule returns the module that hands out rewards. It is forced: the
// ledger must stay consistent whatever else is configured. Its features:
//
//   - rewards.login grants login rewards and syncs the ledger on join
//   - rewards.sync delivers ledgers to sessions (Session.Rewards)
//   - rewards.commands registers /rewards and /rewardgrant
//   - rewards.autosave flushes dirty ledgers every cfg.Rewards.Autosave
func RewardsModule(svc *reward.Service, cfg Config) *Module {
	ledger := cfg.Rewards.World

	login := NewFeature("login").
		Describe("Grants login rewards and syncs the ledger on join").
		Subscribe(On[EventJoin]().Process(func(s *Session, e *EventJoin) {
			granted, err := svc.Login(context.Background(), ledger, s.UUID())
			if err != nil {
				s.Controller().Logger().Error("titanium: reward login failed", "player", s.Name(), "err", err)
				return
			}
			if len(granted) > 0 {
				s.Controller().Logger().Info("titanium: granted login rewards", "player", s.Name(), "rewards", len(granted))
			}
		}))

	syncing := NewFeature("sync").
		Describe("Delivers reward ledgers to joined players").
		Setup(func(c *Controller) {
			svc.Attach(c.RewardBroadcaster())
		})

	commands := NewFeature("commands").
		Describe("Reward commands for players and admins").
		Command(rewardsCommand(svc, ledger)).
		Command(rewardGrantCommand(svc, ledger, cfg))

	autosave := NewFeature("autosave").
		Describe("Periodically writes dirty ledgers").
		Setup(func(c *Controller) {
			if cfg.Rewards.Autosave > 0 {
				ScheduleRepeating(c, &flushTask{svc: svc, ctrl: c}, cfg.Rewards.Autosave, -1)
			}
		})

	return NewModule("rewards").
		Describe("Cosmetic rewards kept per world").
		Forced().
		Feature(login, syncing, commands, autosave)
}

// flushTask writes dirty ledgers. Failures are logged by the service and
// retried on the next run.
type flushTask struct {
	svc     *reward.Service
	ctrl    *Controller
	running atomic.Bool
}

// Run starts the flush on its own goroutine, keeping backend I/O out of the
// world transaction the task runs in. A run is skipped while the previous
// one is still writing.
func (t *flushTask) Run(*world.Tx) {
	if !t.running.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer t.running.Store(false)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := t.svc.Flush(ctx); err != nil && !errors.Is(err, reward.ErrClosed) {
			t.ctrl.Logger().Warn("titanium: autosave incomplete", "err", err)
		}
	}()
}
