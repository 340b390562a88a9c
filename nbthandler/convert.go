package nbthandler

import "reflect"

// toInt64 accepts any integer kind. Decoded NBT may hold uint8, int16, int32
// or int64 depending on the tag, so readers never assert a single type.
func toInt64(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}

// toSlice flattens any slice or array into []any. The NBT decoder produces
// []any for lists, while values stored in memory keep their typed slices.
func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// convert returns v as the dynamic type of current when the two are
// convertible, and v unchanged otherwise.
func convert(v, current any) any {
	if current == nil {
		return v
	}
	t := reflect.TypeOf(current)
	rv := reflect.ValueOf(v)
	if rv.Type() == t || !rv.Type().ConvertibleTo(t) {
		return v
	}
	return rv.Convert(t).Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// List returns the elements of a list tag, whether it was stored as a typed
// slice or decoded as []any.
func List(v any) ([]any, bool) { return toSlice(v) }

// Int returns the value of any integer tag.
func Int(v any) (int64, bool) { return toInt64(v) }
