package titanium

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"

	"github.com/oriumgames/titanium/reward"
)

func rewardsCommand(svc *reward.Service, ledger string) cmd.Command {
	return cmd.New("rewards", "Lists and selects your rewards", nil,
		rewardsList{svc: svc, ledger: ledger},
		rewardsSelect{svc: svc, ledger: ledger},
	)
}

func rewardGrantCommand(svc *reward.Service, ledger string, cfg Config) cmd.Command {
	return cmd.New("rewardgrant", "Grants or revokes rewards", nil,
		rewardGrant{svc: svc, ledger: ledger, cfg: cfg},
		rewardRevoke{svc: svc, ledger: ledger, cfg: cfg},
	)
}

// rewardsList implements /rewards.
type rewardsList struct {
	svc    *reward.Service
	ledger string
}

func (c rewardsList) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p, ok := src.(*player.Player)
	if !ok {
		o.Error("This command can only be run by a player.")
		return
	}
	held, err := c.svc.Query(context.Background(), c.ledger, p.UUID())
	if err != nil {
		o.Errorf("Could not load rewards: %v", err)
		return
	}
	lines := describeRewards(c.svc.Manager(), held)
	if len(lines) == 0 {
		o.Print("You have no rewards.")
		return
	}
	o.Printf("You have %d reward(s):", len(lines))
	for _, l := range lines {
		o.Print(l)
	}
}

// rewardsSelect implements /rewards select <reward> <option>.
type rewardsSelect struct {
	svc    *reward.Service
	ledger string

	Select cmd.SubCommand `cmd:"select"`
	Reward string         `cmd:"reward"`
	Option int            `cmd:"option"`
}

func (c rewardsSelect) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	p, ok := src.(*player.Player)
	if !ok {
		o.Error("This command can only be run by a player.")
		return
	}
	id, err := reward.ParseIdentifier(c.Reward)
	if err != nil {
		o.Error(err)
		return
	}
	if err := c.svc.Select(context.Background(), c.ledger, p.UUID(), id, c.Option); err != nil {
		o.Error(rewardError(id, c.Option, err))
		return
	}
	o.Printf("Selected option %d of %s.", c.Option, id)
}

// rewardGrant implements /rewardgrant <targets> <reward> [option].
type rewardGrant struct {
	svc    *reward.Service
	ledger string
	cfg    Config

	Targets []cmd.Target      `cmd:"targets"`
	Reward  string            `cmd:"reward"`
	Option  cmd.Optional[int] `cmd:"option"`
}

func (c rewardGrant) Allow(src cmd.Source) bool { return allowAdmin(c.cfg, src) }

func (c rewardGrant) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	id, err := reward.ParseIdentifier(c.Reward)
	if err != nil {
		o.Error(err)
		return
	}
	option := c.Option.LoadOr(0)
	n, err := grantAll(context.Background(), c.svc, c.ledger, targetUUIDs(c.Targets), id, option)
	if err != nil {
		o.Error(rewardError(id, option, err))
		return
	}
	o.Printf("Granted %s (option %d) to %d player(s).", id, option, n)
}

// rewardRevoke implements /rewardgrant revoke <targets> <reward>.
type rewardRevoke struct {
	svc    *reward.Service
	ledger string
	cfg    Config

	Revoke  cmd.SubCommand `cmd:"revoke"`
	Targets []cmd.Target   `cmd:"targets"`
	Reward  string         `cmd:"reward"`
}

func (c rewardRevoke) Allow(src cmd.Source) bool { return allowAdmin(c.cfg, src) }

func (c rewardRevoke) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	id, err := reward.ParseIdentifier(c.Reward)
	if err != nil {
		o.Error(err)
		return
	}
	n, err := revokeAll(context.Background(), c.svc, c.ledger, targetUUIDs(c.Targets), id)
	if err != nil {
		o.Error(rewardError(id, 0, err))
		return
	}
	o.Printf("Revoked %s from %d player(s).", id, n)
}

// allowAdmin lets the console through and players listed as admins.
func allowAdmin(cfg Config, src cmd.Source) bool {
	p, ok := src.(*player.Player)
	if !ok {
		return true
	}
	return cfg.IsAdmin(p.Name(), p.XUID())
}

func targetUUIDs(targets []cmd.Target) []uuid.UUID {
	var out []uuid.UUID
	for _, t := range targets {
		if p, ok := t.(*player.Player); ok {
			out = append(out, p.UUID())
		}
	}
	return out
}

// grantAll grants the reward to every player and returns how many received
// it. It stops at the first error.
func grantAll(ctx context.Context, svc *reward.Service, ledger string, players []uuid.UUID, id reward.Identifier, option int) (int, error) {
	for i, p := range players {
		if err := svc.Grant(ctx, ledger, p, id, option); err != nil {
			return i, err
		}
	}
	return len(players), nil
}

// revokeAll revokes the reward from every player holding it and returns how
// many lost it.
func revokeAll(ctx context.Context, svc *reward.Service, ledger string, players []uuid.UUID, id reward.Identifier) (int, error) {
	if _, ok := svc.Manager().Reward(id); !ok {
		return 0, fmt.Errorf("%w: %s", reward.ErrUnknownReward, id)
	}
	n := 0
	for _, p := range players {
		err := svc.Revoke(ctx, ledger, p, id)
		switch {
		case err == nil:
			n++
		case errors.Is(err, reward.ErrNotOwned):
		default:
			return n, err
		}
	}
	return n, nil
}

// describeRewards formats held rewards as "namespace:path: option (index)",
// sorted by identifier.
func describeRewards(m *reward.Manager, held map[reward.Identifier]int) []string {
	ids := make([]reward.Identifier, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		idx := held[id]
		name := "?"
		if def, ok := m.Reward(id); ok {
			if opt, ok := def.Option(idx); ok {
				name = opt
			}
		}
		lines = append(lines, fmt.Sprintf("%s: %s (%d)", id, name, idx))
	}
	return lines
}

func rewardError(id reward.Identifier, option int, err error) string {
	switch {
	case errors.Is(err, reward.ErrUnknownReward):
		return fmt.Sprintf("Unknown reward %s.", id)
	case errors.Is(err, reward.ErrInvalidOption):
		return fmt.Sprintf("Reward %s has no option %d.", id, option)
	case errors.Is(err, reward.ErrNotOwned):
		return fmt.Sprintf("You do not own %s.", id)
	}
	return err.Error()
}
