package titanium

import (
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/titanium/nbthandler"
	"github.com/oriumgames/titanium/progress"
)

// Clock supplies the world time of tiles. Controller implements it.
type Clock interface {
	WorldTime() int64
}

// TileBase is the common part of a ticking block: a position, a set of named
// progress bars and a dirty flag. Embed it in a tile and register the tile
// with Controller.AddTile. Passing the embedding tile to nbthandler.Save and
// Load persists its own tagged fields together with those of TileBase.
//
//	type Furnace struct {
//	    *titanium.TileBase
//	    Fuel int32 `save:"Fuel"`
//	}
//
//	f := &Furnace{TileBase: titanium.NewTileBase(pos, ctrl)}
//	f.Bars.Add("smelt", progress.NewBar(79, 34, 200).WithIncreasePolicy(progress.Always{}))
//	err := nbthandler.Save(ctrl.Registry(), c, f)
type TileBase struct {
	Pos  cube.Pos          `save:"Pos"`
	Bars *progress.Handler `save:"Bars"`

	clock Clock
	dirty atomic.Bool
}

// NewTileBase returns a tile at pos whose world time is read from clock.
func NewTileBase(pos cube.Pos, clock Clock) *TileBase {
	t := &TileBase{Pos: pos, clock: clock}
	t.Bars = progress.NewHandler(t)
	return t
}

// WorldTime returns the current time of the tile's clock, or 0 without one.
func (t *TileBase) WorldTime() int64 {
	if t.clock == nil {
		return 0
	}
	return t.clock.WorldTime()
}

// MarkForUpdate flags the tile as changed.
func (t *TileBase) MarkForUpdate() { t.dirty.Store(true) }

// Dirty reports whether the tile changed since the last ClearDirty.
func (t *TileBase) Dirty() bool { return t.dirty.Load() }

// ClearDirty resets the dirty flag and reports whether it was set.
func (t *TileBase) ClearDirty() bool { return t.dirty.Swap(false) }

// Centre returns the centre of the tile's block.
func (t *TileBase) Centre() mgl64.Vec3 { return t.Pos.Vec3Centre() }

// Tick advances every bar of the tile.
func (t *TileBase) Tick(*world.Tx) { t.Bars.Update() }

// EncodeNBT stores the tile's position and bars. Fields of a tile embedding
// TileBase are not included; use nbthandler.Save on that tile instead.
func (t *TileBase) EncodeNBT(r *nbthandler.Registry) (nbthandler.Compound, error) {
	c := nbthandler.Compound{}
	if err := nbthandler.Save(r, c, t); err != nil {
		return nil, err
	}
	return c, nil
}

// DecodeNBT restores the tile's position and the progress of bars already
// added to it.
func (t *TileBase) DecodeNBT(r *nbthandler.Registry, c nbthandler.Compound) error {
	return nbthandler.Load(r, c, t)
}
