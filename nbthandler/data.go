package nbthandler

import (
	"reflect"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	serializableType = reflect.TypeOf((*Serializable)(nil)).Elem()
	durationType     = reflect.TypeOf(time.Duration(0))
	uuidType         = reflect.TypeOf(uuid.UUID{})
	posType          = reflect.TypeOf(cube.Pos{})
	vec3Type         = reflect.TypeOf(mgl64.Vec3{})
	stringListType   = reflect.TypeOf([]string(nil))
	compoundType     = reflect.TypeOf(Compound(nil))
)

// SerializableHandler stores values implementing Serializable as a nested
// compound. Reading deserializes into the current value in place, so current
// must be a non-nil pointer.
type SerializableHandler struct{}

func (SerializableHandler) Valid(t reflect.Type) bool {
	return t.Implements(serializableType) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(serializableType))
}

func (SerializableHandler) Store(c Compound, key string, v any) bool {
	s, ok := v.(Serializable)
	if !ok || isNil(v) {
		return false
	}
	c[key] = s.SerializeNBT()
	return true
}

func (SerializableHandler) Read(c Compound, key string, current any) (any, bool) {
	sub, ok := c[key].(map[string]any)
	if !ok {
		return nil, false
	}
	s, ok := current.(Serializable)
	if !ok || isNil(current) {
		return nil, false
	}
	s.DeserializeNBT(sub)
	return current, true
}

// BoolHandler stores booleans as a byte tag.
type BoolHandler struct{}

func (BoolHandler) Valid(t reflect.Type) bool { return t.Kind() == reflect.Bool }

func (BoolHandler) Store(c Compound, key string, v any) bool {
	b, ok := v.(bool)
	if !ok {
		b = reflect.ValueOf(v).Bool()
	}
	if b {
		c[key] = uint8(1)
	} else {
		c[key] = uint8(0)
	}
	return true
}

func (BoolHandler) Read(c Compound, key string, current any) (any, bool) {
	raw, ok := c[key]
	if !ok {
		return nil, false
	}
	if b, ok := raw.(bool); ok {
		return convert(b, current), true
	}
	n, ok := toInt64(raw)
	if !ok {
		return nil, false
	}
	return convert(n != 0, current), true
}

// IntHandler stores integer kinds of at most 32 bits as an int tag.
type IntHandler struct{}

func (IntHandler) Valid(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Uint8, reflect.Uint16:
		return true
	}
	return false
}

func (IntHandler) Store(c Compound, key string, v any) bool {
	n, ok := toInt64(v)
	if !ok {
		return false
	}
	c[key] = int32(n)
	return true
}

func (IntHandler) Read(c Compound, key string, current any) (any, bool) {
	n, ok := toInt64(c[key])
	if !ok {
		return nil, false
	}
	return convert(int32(n), current), true
}

// LongHandler stores 64-bit integers and durations as a long tag. int and
// uint are 64 bits wide on the platforms Dragonfly runs on, so they are
// stored here too.
type LongHandler struct{}

func (LongHandler) Valid(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint32, reflect.Uint64:
		return true
	}
	return t == durationType
}

func (LongHandler) Store(c Compound, key string, v any) bool {
	n, ok := toInt64(v)
	if !ok {
		return false
	}
	c[key] = n
	return true
}

func (LongHandler) Read(c Compound, key string, current any) (any, bool) {
	n, ok := toInt64(c[key])
	if !ok {
		return nil, false
	}
	return convert(n, current), true
}

// DoubleHandler stores floating point values as a double tag. float32 values
// are widened on store.
type DoubleHandler struct{}

func (DoubleHandler) Valid(t reflect.Type) bool {
	return t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
}

func (DoubleHandler) Store(c Compound, key string, v any) bool {
	f, ok := toFloat64(v)
	if !ok {
		return false
	}
	c[key] = f
	return true
}

func (DoubleHandler) Read(c Compound, key string, current any) (any, bool) {
	f, ok := toFloat64(c[key])
	if !ok {
		return nil, false
	}
	return convert(f, current), true
}

// StringHandler stores strings.
type StringHandler struct{}

func (StringHandler) Valid(t reflect.Type) bool { return t.Kind() == reflect.String }

func (StringHandler) Store(c Compound, key string, v any) bool {
	c[key] = reflect.ValueOf(v).String()
	return true
}

func (StringHandler) Read(c Compound, key string, current any) (any, bool) {
	s, ok := c[key].(string)
	if !ok {
		return nil, false
	}
	return convert(s, current), true
}

// UUIDHandler stores uuid.UUID values in their canonical string form.
type UUIDHandler struct{}

func (UUIDHandler) Valid(t reflect.Type) bool { return t == uuidType }

func (UUIDHandler) Store(c Compound, key string, v any) bool {
	id, ok := v.(uuid.UUID)
	if !ok {
		return false
	}
	c[key] = id.String()
	return true
}

func (UUIDHandler) Read(c Compound, key string, _ any) (any, bool) {
	s, ok := c[key].(string)
	if !ok {
		return nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return id, true
}

// BlockPosHandler stores a cube.Pos as a compound with X, Y and Z int tags.
type BlockPosHandler struct{}

func (BlockPosHandler) Valid(t reflect.Type) bool { return t == posType }

func (BlockPosHandler) Store(c Compound, key string, v any) bool {
	pos, ok := v.(cube.Pos)
	if !ok {
		return false
	}
	c[key] = map[string]any{"X": int32(pos[0]), "Y": int32(pos[1]), "Z": int32(pos[2])}
	return true
}

func (BlockPosHandler) Read(c Compound, key string, _ any) (any, bool) {
	sub, ok := c[key].(map[string]any)
	if !ok {
		return nil, false
	}
	var pos cube.Pos
	for i, k := range [3]string{"X", "Y", "Z"} {
		n, ok := toInt64(sub[k])
		if !ok {
			return nil, false
		}
		pos[i] = int(n)
	}
	return pos, true
}

// Vec3Handler stores an mgl64.Vec3 as a list of three doubles, the layout
// used for entity positions.
type Vec3Handler struct{}

func (Vec3Handler) Valid(t reflect.Type) bool { return t == vec3Type }

func (Vec3Handler) Store(c Compound, key string, v any) bool {
	vec, ok := v.(mgl64.Vec3)
	if !ok {
		return false
	}
	c[key] = []float64{vec[0], vec[1], vec[2]}
	return true
}

func (Vec3Handler) Read(c Compound, key string, _ any) (any, bool) {
	list, ok := toSlice(c[key])
	if !ok || len(list) != 3 {
		return nil, false
	}
	var vec mgl64.Vec3
	for i, e := range list {
		f, ok := toFloat64(e)
		if !ok {
			return nil, false
		}
		vec[i] = f
	}
	return vec, true
}

// StringListHandler stores a []string as a list of string tags.
type StringListHandler struct{}

func (StringListHandler) Valid(t reflect.Type) bool { return t == stringListType }

func (StringListHandler) Store(c Compound, key string, v any) bool {
	list, ok := v.([]string)
	if !ok {
		return false
	}
	c[key] = append([]string{}, list...)
	return true
}

func (StringListHandler) Read(c Compound, key string, _ any) (any, bool) {
	list, ok := toSlice(c[key])
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := e.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// CompoundHandler stores a raw compound as a nested compound tag.
type CompoundHandler struct{}

func (CompoundHandler) Valid(t reflect.Type) bool { return t == compoundType }

func (CompoundHandler) Store(c Compound, key string, v any) bool {
	sub, ok := v.(map[string]any)
	if !ok || sub == nil {
		return false
	}
	c[key] = sub
	return true
}

func (CompoundHandler) Read(c Compound, key string, _ any) (any, bool) {
	sub, ok := c[key].(map[string]any)
	return sub, ok
}
