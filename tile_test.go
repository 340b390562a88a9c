package titanium

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/titanium/nbthandler"
	"github.com/oriumgames/titanium/progress"
)

type fakeClock struct{ now int64 }

func (c *fakeClock) WorldTime() int64 { return c.now }

func TestTileBaseTicksBars(t *testing.T) {
	clock := &fakeClock{}
	tile := NewTileBase(cube.Pos{1, 64, -3}, clock)
	finished := 0
	tile.Bars.Add("smelt", progress.NewBar(10, 20, 2).
		WithIncreasePolicy(progress.Always{}).
		OnFinish(func() { finished++ }))

	for i := 0; i < 3; i++ {
		clock.now++
		tile.Tick(nil)
	}
	assert.Equal(t, 1, finished)
	assert.True(t, tile.ClearDirty())
	assert.False(t, tile.Dirty())
	assert.Equal(t, mgl64.Vec3{1.5, 64.5, -2.5}, tile.Centre())
}

func TestTileBaseWithoutClock(t *testing.T) {
	tile := NewTileBase(cube.Pos{}, nil)
	assert.Zero(t, tile.WorldTime())
}

func TestTileBaseNBTRoundTrip(t *testing.T) {
	r := nbthandler.NewRegistry()
	clock := &fakeClock{}
	tile := NewTileBase(cube.Pos{4, 5, 6}, clock)
	bar := tile.Bars.Add("smelt", progress.NewBar(0, 0, 100).WithIncreasePolicy(progress.Always{}))
	bar.SetProgress(42)

	c, err := tile.EncodeNBT(r)
	require.NoError(t, err)
	b, err := nbt.MarshalEncoding(map[string]any(c), nbt.LittleEndian)
	require.NoError(t, err)
	decoded := map[string]any{}
	require.NoError(t, nbt.UnmarshalEncoding(b, &decoded, nbt.LittleEndian))

	restored := NewTileBase(cube.Pos{}, clock)
	restoredBar := restored.Bars.Add("smelt", progress.NewBar(0, 0, 100))
	require.NoError(t, restored.DecodeNBT(r, decoded))

	assert.Equal(t, cube.Pos{4, 5, 6}, restored.Pos)
	assert.Equal(t, 42, restoredBar.Progress())
}

type furnace struct {
	*TileBase
	Fuel int32 `save:"Fuel"`
}

func TestEmbeddingTilePersistsOwnFields(t *testing.T) {
	r := nbthandler.NewRegistry()
	f := &furnace{TileBase: NewTileBase(cube.Pos{7, 8, 9}, nil), Fuel: 80}
	f.Bars.Add("smelt", progress.NewBar(0, 0, 200)).SetProgress(30)

	c := nbthandler.Compound{}
	require.NoError(t, nbthandler.Save(r, c, f))
	assert.Contains(t, c, "Fuel")
	assert.Contains(t, c, "Pos")
	assert.Contains(t, c, "Bars")

	restored := &furnace{TileBase: NewTileBase(cube.Pos{}, nil)}
	bar := restored.Bars.Add("smelt", progress.NewBar(0, 0, 200))
	require.NoError(t, nbthandler.Load(r, c, restored))
	assert.Equal(t, int32(80), restored.Fuel)
	assert.Equal(t, cube.Pos{7, 8, 9}, restored.Pos)
	assert.Equal(t, 30, bar.Progress())
}

func TestControllerTiles(t *testing.T) {
	c := newTestController()
	tile := NewTileBase(cube.Pos{}, c)
	c.AddTile(nil, tile)
	assert.True(t, c.RemoveTile(nil, tile))
	assert.False(t, c.RemoveTile(nil, tile))
}
