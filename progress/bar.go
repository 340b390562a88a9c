// Package progress implements tick driven progress bars for tiles.
package progress

import "github.com/oriumgames/titanium/nbthandler"

// Bar is a counter that advances on qualifying ticks and wraps around once it
// exceeds its maximum.
//
// Only the progress and maximum are persisted. Increment and interval are
// configuration and must be set again by the owning tile after loading.
type Bar struct {
	x, y int

	progress    int
	maxProgress int
	increment   int
	interval    int

	canIncrease Policy
	canReset    Policy

	onTick   func()
	onFinish func()

	tile Tile
}

// NewBar returns a bar drawn at x, y that completes once it passes max. The
// bar does not advance until an increase policy other than Never is set.
func NewBar(x, y, max int) *Bar {
	return &Bar{
		x:           x,
		y:           y,
		maxProgress: max,
		increment:   1,
		interval:    1,
		canIncrease: Never{},
		canReset:    Always{},
		onTick:      func() {},
		onFinish:    func() {},
	}
}

// WithTile attaches the bar to the tile it runs on.
func (b *Bar) WithTile(t Tile) *Bar {
	b.tile = t
	return b
}

// WithIncreasePolicy sets the policy consulted before each increase.
func (b *Bar) WithIncreasePolicy(p Policy) *Bar {
	b.canIncrease = p
	return b
}

// WithResetPolicy sets the reset policy.
func (b *Bar) WithResetPolicy(p Policy) *Bar {
	b.canReset = p
	return b
}

// WithIncrement sets how much progress is added per qualifying tick.
func (b *Bar) WithIncrement(n int) *Bar {
	b.increment = n
	return b
}

// WithInterval sets how many world ticks pass between increases.
func (b *Bar) WithInterval(ticks int) *Bar {
	if ticks < 1 {
		ticks = 1
	}
	b.interval = ticks
	return b
}

// WithMax sets the maximum progress.
func (b *Bar) WithMax(max int) *Bar {
	b.maxProgress = max
	return b
}

// OnTick sets the function run after every increase.
func (b *Bar) OnTick(fn func()) *Bar {
	b.onTick = fn
	return b
}

// OnFinish sets the function run each time the bar wraps around.
func (b *Bar) OnFinish(fn func()) *Bar {
	b.onFinish = fn
	return b
}

// Tick advances the bar if the tile's world time falls on the interval and
// the increase policy allows it. Once progress exceeds the maximum it is set
// back to zero and the finish function runs.
//
// The reset policy is not consulted when wrapping around.
func (b *Bar) Tick() {
	if b.tile != nil && b.tile.WorldTime()%int64(b.interval) == 0 && b.canIncrease.Allow(b.tile) {
		b.progress += b.increment
		b.tile.MarkForUpdate()
		b.onTick()
	}
	if b.progress > b.maxProgress {
		b.progress = 0
		b.onFinish()
	}
}

// Progress returns the current progress.
func (b *Bar) Progress() int { return b.progress }

// SetProgress sets the current progress and flags the tile for update.
func (b *Bar) SetProgress(n int) {
	b.progress = n
	if b.tile != nil {
		b.tile.MarkForUpdate()
	}
}

func (b *Bar) Max() int                  { return b.maxProgress }
func (b *Bar) Increment() int            { return b.increment }
func (b *Bar) Interval() int             { return b.interval }
func (b *Bar) IncreasePolicy() Policy    { return b.canIncrease }
func (b *Bar) ResetPolicy() Policy       { return b.canReset }
func (b *Bar) Tile() Tile                { return b.tile }
func (b *Bar) Position() (x, y int)      { return b.x, b.y }
func (b *Bar) GuiAddons() []AddonFactory { return []AddonFactory{b.addon} }

func (b *Bar) addon() Addon {
	return Addon{X: b.x, Y: b.y, Bar: b}
}

// SerializeNBT implements nbthandler.Serializable.
func (b *Bar) SerializeNBT() nbthandler.Compound {
	return nbthandler.Compound{
		"Tick":        int32(b.progress),
		"MaxProgress": int32(b.maxProgress),
	}
}

// DeserializeNBT implements nbthandler.Serializable. Absent tags read as zero.
func (b *Bar) DeserializeNBT(c nbthandler.Compound) {
	b.progress = int(intTag(c, "Tick"))
	b.maxProgress = int(intTag(c, "MaxProgress"))
}

func intTag(c nbthandler.Compound, key string) int32 {
	switch v := c[key].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int16:
		return int32(v)
	case uint8:
		return int32(v)
	}
	return 0
}

// Addon describes where a bar is drawn in a tile's screen. Rendering is left
// to the client.
type Addon struct {
	X, Y int
	Bar  *Bar
}

// AddonFactory creates an Addon when a screen is opened.
type AddonFactory func() Addon
