package nbthandler_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/nbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/titanium/nbthandler"
)

type counter struct {
	Count int32
}

func (c *counter) SerializeNBT() nbthandler.Compound {
	return nbthandler.Compound{"Count": c.Count}
}

func (c *counter) DeserializeNBT(comp nbthandler.Compound) {
	if v, ok := comp["Count"].(int32); ok {
		c.Count = v
	}
}

func roundTripValues() map[string]any {
	return map[string]any{
		"bool":     true,
		"int":      42,
		"int_wide": 1 << 33,
		"uint":     uint(1) << 40,
		"int8":     int8(-7),
		"int16":    int16(1200),
		"int32":    int32(-70000),
		"uint8":    uint8(250),
		"int64":    int64(1) << 40,
		"uint64":   uint64(99),
		"duration": 3 * time.Second,
		"float64":  3.25,
		"string":   "titanium",
		"uuid":     uuid.MustParse("0b2c9ee1-4d7e-4a4f-9d2b-8f3a2a6c1e11"),
		"pos":      cube.Pos{12, -60, 300},
		"vec3":     mgl64.Vec3{0.5, 64, -12.25},
		"strings":  []string{"a", "b", "c"},
		"compound": map[string]any{"Nested": int32(1)},
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	reg := nbthandler.NewRegistry()
	for name, v := range roundTripValues() {
		t.Run(name, func(t *testing.T) {
			c := nbthandler.Compound{}
			require.True(t, reg.Store(c, "Value", v))

			zero := reflect.Zero(reflect.TypeOf(v)).Interface()
			got, ok := reg.Read(c, "Value", zero)
			require.True(t, ok)
			assert.Equal(t, v, got)
		})
	}
}

func TestRegistryRoundTripThroughEncoding(t *testing.T) {
	reg := nbthandler.NewRegistry()
	c := nbthandler.Compound{}
	values := roundTripValues()
	for name, v := range values {
		require.True(t, reg.Store(c, name, v), name)
	}

	data, err := nbt.MarshalEncoding(c, nbt.LittleEndian)
	require.NoError(t, err)
	decoded := map[string]any{}
	require.NoError(t, nbt.UnmarshalEncoding(data, &decoded, nbt.LittleEndian))

	for name, v := range values {
		zero := reflect.Zero(reflect.TypeOf(v)).Interface()
		got, ok := reg.Read(decoded, name, zero)
		require.True(t, ok, name)
		assert.Equal(t, v, got, name)
	}
}

func TestReadMissingKeyKeepsDefault(t *testing.T) {
	reg := nbthandler.NewRegistry()
	got, ok := reg.Read(nbthandler.Compound{}, "Absent", int32(5))
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestFloat32IsStoredAsDouble(t *testing.T) {
	reg := nbthandler.NewRegistry()
	c := nbthandler.Compound{}
	require.True(t, reg.Store(c, "Speed", float32(1.5)))
	assert.IsType(t, float64(0), c["Speed"])

	got, ok := reg.Read(c, "Speed", float32(0))
	require.True(t, ok)
	assert.Equal(t, float32(1.5), got)
}

func TestSerializableHandler(t *testing.T) {
	reg := nbthandler.NewRegistry()
	c := nbthandler.Compound{}
	require.True(t, reg.Store(c, "Counter", &counter{Count: 9}))

	into := &counter{}
	got, ok := reg.Read(c, "Counter", into)
	require.True(t, ok)
	assert.Same(t, into, got)
	assert.Equal(t, int32(9), into.Count)
}

type loudInt struct{}

func (loudInt) Valid(t reflect.Type) bool { return t.Kind() == reflect.Int }

func (loudInt) Store(c nbthandler.Compound, key string, v any) bool {
	c[key] = "loud"
	return true
}

func (loudInt) Read(c nbthandler.Compound, key string, _ any) (any, bool) {
	return 1000, true
}

type decliningInt struct{ loudInt }

func (decliningInt) Store(nbthandler.Compound, string, any) bool { return false }

func TestRegistryFirstMatchWins(t *testing.T) {
	reg := nbthandler.NewRegistry().RegisterFirst(loudInt{})
	c := nbthandler.Compound{}
	require.True(t, reg.Store(c, "N", 3))
	assert.Equal(t, "loud", c["N"])

	got, ok := reg.Read(nbthandler.Compound{"N": int32(3)}, "N", 0)
	require.True(t, ok)
	assert.Equal(t, 1000, got)

	appended := nbthandler.NewRegistry().Register(loudInt{})
	c = nbthandler.Compound{}
	require.True(t, appended.Store(c, "N", 3))
	assert.Equal(t, int64(3), c["N"])
}

func TestRegistryStoreFallsThroughOnDecline(t *testing.T) {
	reg := nbthandler.NewRegistry().RegisterFirst(decliningInt{})
	c := nbthandler.Compound{}
	require.True(t, reg.Store(c, "N", 3))
	assert.Equal(t, int64(3), c["N"])
}

func TestWideIntegersUseLongTag(t *testing.T) {
	reg := nbthandler.NewRegistry()
	c := nbthandler.Compound{}
	require.True(t, reg.Store(c, "Big", 1<<33))
	require.True(t, reg.Store(c, "Small", int32(-5)))
	assert.IsType(t, int64(0), c["Big"])
	assert.IsType(t, int32(0), c["Small"])

	got, ok := reg.Read(c, "Big", 0)
	require.True(t, ok)
	assert.Equal(t, 1<<33, got)
}

func TestEmptyRegistryStoresNothing(t *testing.T) {
	reg := nbthandler.NewEmptyRegistry()
	c := nbthandler.Compound{}
	assert.False(t, reg.Store(c, "N", 3))
	assert.Empty(t, c)
}
