package titanium

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
)

// sessionOf extracts the session from a player's handler.
// Returns nil if the player doesn't have a SessionHandler.
func sessionOf(p *player.Player) *Session {
	h, ok := p.Handler().(*SessionHandler)
	if !ok {
		return nil
	}
	return h.session
}

// Command extracts the player and session from a command source.
// Returns (nil, nil) if the source is not a player, and a nil session if
// the player did not join through a Controller.
//
// Usage:
//
//	func (c MyCommand) Run(src cmd.Source, out *cmd.Output, tx *world.Tx) {
//	    p, sess := titanium.Command(src)
//	    if sess == nil {
//	        out.Error("Player-only command")
//	        return
//	    }
//	}
func Command(src cmd.Source) (*player.Player, *Session) {
	p, ok := src.(*player.Player)
	if !ok {
		return nil, nil
	}
	return p, sessionOf(p)
}
