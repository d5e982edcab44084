// Package optional models request fields that can be absent, explicitly null,
// or set, which a plain pointer cannot tell apart.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value holds a decoded JSON field. The zero Value is absent.
type Value[T any] struct {
	value T
	set   bool
	null  bool
}

// Of returns a Value set to v.
func Of[T any](v T) Value[T] {
	return Value[T]{value: v, set: true}
}

// Null returns a Value that was explicitly sent as JSON null.
func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

// Present reports whether the field appeared in the payload, null included.
func (o Value[T]) Present() bool { return o.set }

// IsNull reports whether the field was sent as JSON null.
func (o Value[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and whether the field carried a non-null value.
func (o Value[T]) Get() (T, bool) {
	return o.value, o.set && !o.null
}

// UnmarshalJSON is only invoked for fields present in the payload.
func (o *Value[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.value, o.null = zero, true
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON encodes absent and null values as JSON null.
func (o Value[T]) MarshalJSON() ([]byte, error) {
	if v, ok := o.Get(); ok {
		return json.Marshal(v)
	}
	return []byte("null"), nil
}
