// Package nbthandler converts Go values to and from NBT compounds.
//
// A Registry holds an ordered list of Handlers. When a value is stored or read,
// the first Handler whose Valid method accepts the value's type is used, so the
// order in which handlers are registered matters:
//
//	reg := nbthandler.NewRegistry()
//	c := nbthandler.Compound{}
//	reg.Store(c, "Energy", int32(400))
//	v, ok := reg.Read(c, "Energy", int32(0)) // 400, true
//
// A key that is absent from the compound is not an error. Read reports false
// and the caller keeps its current value.
package nbthandler

import "reflect"

// Compound is a decoded NBT compound tag.
type Compound = map[string]any

// Handler stores and reads values of a set of types.
type Handler interface {
	// Valid reports whether the handler can convert values of type t.
	Valid(t reflect.Type) bool

	// Store writes v under key. It returns false if the handler cannot store
	// this particular value, in which case the next handler is tried.
	Store(c Compound, key string, v any) bool

	// Read returns the value stored under key, converted to the type of
	// current. It returns false if the key is absent or holds an incompatible
	// tag, meaning current should be kept.
	Read(c Compound, key string, current any) (any, bool)
}

// Serializable is implemented by types that encode themselves as a compound.
type Serializable interface {
	SerializeNBT() Compound
	DeserializeNBT(c Compound)
}
