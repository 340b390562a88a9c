package titanium

import (
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// SessionHandler implements player.Handler for a session. It re-posts the
// Dragonfly callbacks Titanium knows about as events; the rest fall through
// to player.NopHandler.
//
// Concurrency:
// Dragonfly calls handlers inside the player's world transaction, so
// subscriptions for these events may use the player and its world freely.
type SessionHandler struct {
	player.NopHandler
	session *Session
}

// NewHandler creates a new player.Handler for the given session.
func NewHandler(s *Session) player.Handler {
	return &SessionHandler{session: s}
}

// Compile-time check that SessionHandler implements player.Handler.
var _ player.Handler = (*SessionHandler)(nil)

// Session returns the session associated with this handler.
func (h *SessionHandler) Session() *Session {
	return h.session
}

func (h *SessionHandler) HandleMove(ctx *player.Context, newPos mgl64.Vec3, newRot cube.Rotation) {
	h.session.Post(&EventMove{Ctx: ctx, Position: newPos, Rotation: newRot})
}

func (h *SessionHandler) HandleChangeWorld(p *player.Player, before, after *world.World) {
	h.session.world.Store(after)
	h.session.Post(&EventChangeWorld{Player: p, Before: before, After: after})
}

func (h *SessionHandler) HandleChat(ctx *player.Context, message *string) {
	h.session.Post(&EventChat{Ctx: ctx, Message: message})
}

func (h *SessionHandler) HandleHurt(ctx *player.Context, damage *float64, immune bool, attackImmunity *time.Duration, src world.DamageSource) {
	h.session.Post(&EventHurt{Ctx: ctx, Damage: damage, Immune: immune, AttackImmunity: attackImmunity, Source: src})
}

func (h *SessionHandler) HandleDeath(p *player.Player, src world.DamageSource, keepInv *bool) {
	h.session.Post(&EventDeath{Player: p, Source: src, KeepInventory: keepInv})
}

func (h *SessionHandler) HandleBlockBreak(ctx *player.Context, pos cube.Pos, drops *[]item.Stack, xp *int) {
	h.session.Post(&EventBlockBreak{Ctx: ctx, Position: pos, Drops: drops, Experience: xp})
}

func (h *SessionHandler) HandleBlockPlace(ctx *player.Context, pos cube.Pos, b world.Block) {
	h.session.Post(&EventBlockPlace{Ctx: ctx, Position: pos, Block: b})
}

func (h *SessionHandler) HandleItemUseOnBlock(ctx *player.Context, pos cube.Pos, face cube.Face, clickPos mgl64.Vec3) {
	h.session.Post(&EventItemUseOnBlock{Ctx: ctx, Position: pos, Face: face, ClickPosition: clickPos})
}

func (h *SessionHandler) HandleItemPickup(ctx *player.Context, it *item.Stack) {
	h.session.Post(&EventItemPickup{Ctx: ctx, Item: it})
}

func (h *SessionHandler) HandlePunchAir(ctx *player.Context) {
	h.session.Post(&EventPunchAir{Ctx: ctx})
}

func (h *SessionHandler) HandleCommandExecution(ctx *player.Context, command cmd.Command, args []string) {
	h.session.Post(&EventCommandExecution{Ctx: ctx, Command: command, Args: args})
}

// HandleQuit posts EventQuit and closes the session.
func (h *SessionHandler) HandleQuit(p *player.Player) {
	defer h.session.close()
	h.session.Post(&EventQuit{Player: p})
}
