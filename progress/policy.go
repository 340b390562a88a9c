package progress

// Tile is the block entity a bar runs on.
type Tile interface {
	// WorldTime returns the number of ticks the tile's world has run.
	WorldTime() int64
	// MarkForUpdate flags the tile for persistence and client sync.
	MarkForUpdate()
}

// ActiveTile is a Tile that reports whether it is currently working, for
// example because it is powered or has fuel.
type ActiveTile interface {
	Tile
	Active() bool
}

// Policy decides whether a bar may change for a tile.
type Policy interface {
	Allow(t Tile) bool
}

// Always allows every change.
type Always struct{}

func (Always) Allow(Tile) bool { return true }

// Never rejects every change.
type Never struct{}

func (Never) Allow(Tile) bool { return false }

// WhileActive allows changes while the tile implements ActiveTile and reports
// itself active.
type WhileActive struct{}

func (WhileActive) Allow(t Tile) bool {
	a, ok := t.(ActiveTile)
	return ok && a.Active()
}
