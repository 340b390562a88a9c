package titanium

import (
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/titanium/reward"
)

// Event types wrap Dragonfly handler parameters so subscriptions do not
// depend on Dragonfly's handler signatures.

// EventJoin is posted once a joined player's session is set up, from inside
// the player's world transaction.
type EventJoin struct {
	Player *player.Player
	Tx     *world.Tx
}

// EventQuit is posted when a player leaves.
type EventQuit struct {
	Player *player.Player
}

// EventMove is posted when a player moves.
type EventMove struct {
	Ctx      *player.Context
	Position mgl64.Vec3
	Rotation cube.Rotation
}

func (e *EventMove) Cancel() { e.Ctx.Cancel() }

// EventChangeWorld is posted when a player changes worlds.
type EventChangeWorld struct {
	Player *player.Player
	Before *world.World
	After  *world.World
}

// EventChat is posted when a player sends a chat message.
type EventChat struct {
	Ctx     *player.Context
	Message *string
}

func (e *EventChat) Cancel() { e.Ctx.Cancel() }

// EventHurt is posted when a player is hurt.
type EventHurt struct {
	Ctx            *player.Context
	Damage         *float64
	Immune         bool
	AttackImmunity *time.Duration
	Source         world.DamageSource
}

func (e *EventHurt) Cancel() { e.Ctx.Cancel() }

// EventDeath is posted when a player dies.
type EventDeath struct {
	Player        *player.Player
	Source        world.DamageSource
	KeepInventory *bool
}

// EventBlockBreak is posted when a player breaks a block.
type EventBlockBreak struct {
	Ctx        *player.Context
	Position   cube.Pos
	Drops      *[]item.Stack
	Experience *int
}

func (e *EventBlockBreak) Cancel() { e.Ctx.Cancel() }

// EventBlockPlace is posted when a player places a block.
type EventBlockPlace struct {
	Ctx      *player.Context
	Position cube.Pos
	Block    world.Block
}

func (e *EventBlockPlace) Cancel() { e.Ctx.Cancel() }

// EventItemUseOnBlock is posted when a player uses an item on a block.
type EventItemUseOnBlock struct {
	Ctx           *player.Context
	Position      cube.Pos
	Face          cube.Face
	ClickPosition mgl64.Vec3
}

func (e *EventItemUseOnBlock) Cancel() { e.Ctx.Cancel() }

// EventItemPickup is posted when a player picks up an item.
type EventItemPickup struct {
	Ctx  *player.Context
	Item *item.Stack
}

func (e *EventItemPickup) Cancel() { e.Ctx.Cancel() }

// EventPunchAir is posted when a player punches air.
type EventPunchAir struct {
	Ctx *player.Context
}

func (e *EventPunchAir) Cancel() { e.Ctx.Cancel() }

// EventCommandExecution is posted when a player runs a command.
type EventCommandExecution struct {
	Ctx     *player.Context
	Command cmd.Command
	Args    []string
}

func (e *EventCommandExecution) Cancel() { e.Ctx.Cancel() }

// EventRewardSync is posted to every session when a reward ledger is
// broadcast. The session's cached rewards are already updated when it
// arrives. It is not posted from a world transaction.
type EventRewardSync struct {
	Rewards reward.Snapshot
}
