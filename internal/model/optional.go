package model

import (
	"bytes"
	"encoding/json"
)

// Optional is a JSON field that remembers whether it was sent at all.
//
// Three states are distinguishable after decoding:
//
//	{}                 -> absent
//	{"name": null}     -> present, null
//	{"name": "Ada"}    -> present, value "Ada"
//
// The zero value is absent.
type Optional[T any] struct {
	value   T
	present bool
	null    bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// Null returns a present Optional explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{present: true, null: true}
}

// IsPresent reports whether the field was sent, null included.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// IsNull reports whether the field was sent as an explicit null.
func (o Optional[T]) IsNull() bool {
	return o.present && o.null
}

// IsZero lets encoding/json `omitzero` skip absent fields.
func (o Optional[T]) IsZero() bool {
	return !o.present
}

// Get returns the value and whether a non-null value was sent.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present && !o.null
}

// OrElse returns the value when present, def otherwise.
// A present null yields the zero value of T.
func (o Optional[T]) OrElse(def T) T {
	if !o.present {
		return def
	}
	return o.value
}

// Ptr returns nil when absent, and a pointer to a copy of the value
// otherwise. A present null yields a pointer to the zero value, so rules
// that reject empty values still fire for it.
func (o Optional[T]) Ptr() *T {
	if !o.present {
		return nil
	}
	v := o.value
	return &v
}

// UnmarshalJSON is only invoked by encoding/json when the key exists.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var zero T
	o.present = true
	o.value = zero

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		return nil
	}

	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON writes null for absent and null states. Use `omitzero` on the
// field to drop absent values entirely.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.present || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
