package titanium

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/titanium/nbthandler"
)

// taggedInt stores every int32 under a fixed tag value.
type taggedInt struct{ tag string }

func (h taggedInt) Valid(t reflect.Type) bool { return t.Kind() == reflect.Int32 }

func (h taggedInt) Store(c nbthandler.Compound, key string, _ any) bool {
	c[key] = h.tag
	return true
}

func (h taggedInt) Read(nbthandler.Compound, string, any) (any, bool) { return nil, false }

func TestBuilderNBTHandlersKeepOrder(t *testing.T) {
	c := NewBuilder().
		NBTHandler(taggedInt{"first"}).
		NBTHandler(taggedInt{"second"}).
		Init()
	t.Cleanup(c.Shutdown)

	h, ok := c.Registry().Handler(reflect.TypeFor[int32]())
	require.True(t, ok)
	assert.Equal(t, taggedInt{"first"}, h)

	compound := nbthandler.Compound{}
	require.True(t, c.Registry().Store(compound, "N", int32(1)))
	assert.Equal(t, "first", compound["N"])
}
