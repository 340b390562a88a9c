package nbthandler

import (
	"fmt"
	"reflect"
)

const tagName = "save"

// Save stores every field of the struct pointed to by obj that carries a
// `save:"Name"` tag. Nil pointer fields are skipped. Untagged exported
// embedded structs, and non-nil pointers to them, are walked as if their
// fields were declared on obj.
//
//	type Furnace struct {
//	    Fuel     int32         `save:"Fuel"`
//	    Progress *progress.Bar `save:"Progress"`
//	}
func Save(r *Registry, c Compound, obj any) error {
	return walk(obj, func(name string, f reflect.Value) error {
		if isNil(f.Interface()) {
			return nil
		}
		if !r.Store(c, name, fieldValue(f)) {
			return fmt.Errorf("nbthandler: no handler stored field %s (%s)", name, f.Type())
		}
		return nil
	})
}

// Load reads every tagged field of the struct pointed to by obj from c.
// Fields whose key is absent keep their current value.
func Load(r *Registry, c Compound, obj any) error {
	return walk(obj, func(name string, f reflect.Value) error {
		current := fieldValue(f)
		if _, ok := r.Handler(reflect.TypeOf(current)); !ok {
			return fmt.Errorf("nbthandler: no handler for field %s (%s)", name, f.Type())
		}
		v, ok := r.Read(c, name, current)
		if !ok || v == nil {
			return nil
		}
		rv := reflect.ValueOf(v)
		switch {
		case rv.Type() == f.Type():
			f.Set(rv)
		case f.CanAddr() && rv.Type() == f.Addr().Type():
			// Deserialized in place through the field's address.
		case rv.Type().ConvertibleTo(f.Type()):
			f.Set(rv.Convert(f.Type()))
		default:
			return fmt.Errorf("nbthandler: field %s: cannot assign %s to %s", name, rv.Type(), f.Type())
		}
		return nil
	})
}

// fieldValue returns the field's address when only the pointer implements
// Serializable, and the field value otherwise.
func fieldValue(f reflect.Value) any {
	if f.Kind() != reflect.Pointer && f.CanAddr() && f.Addr().Type().Implements(serializableType) {
		return f.Addr().Interface()
	}
	return f.Interface()
}

func walk(obj any, fn func(name string, f reflect.Value) error) error {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("nbthandler: expected pointer to struct, got %T", obj)
	}
	v = v.Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, ok := sf.Tag.Lookup(tagName)
		if !ok && sf.Anonymous && sf.IsExported() {
			if err := walkEmbedded(v.Field(i), fn); err != nil {
				return err
			}
			continue
		}
		if !ok || name == "-" {
			continue
		}
		if !sf.IsExported() {
			return fmt.Errorf("nbthandler: field %s is tagged but unexported", sf.Name)
		}
		if name == "" {
			name = sf.Name
		}
		if err := fn(name, v.Field(i)); err != nil {
			return err
		}
	}
	return nil
}

func walkEmbedded(f reflect.Value, fn func(name string, f reflect.Value) error) error {
	switch {
	case f.Kind() == reflect.Pointer:
		if f.IsNil() || f.Elem().Kind() != reflect.Struct {
			return nil
		}
		return walk(f.Interface(), fn)
	case f.Kind() == reflect.Struct && f.CanAddr():
		return walk(f.Addr().Interface(), fn)
	}
	return nil
}
