package domain

import (
	"bytes"
	"encoding/json"
)

// Field is one member of a partial update.
// Absent from the payload: Set is false and the stored value is kept.
// Explicit null: Set is true and Value is nil, clearing the stored value.
type Field[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON marks the field as present.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// MarshalJSON writes the value or null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Merge returns the patched value given the current one.
func (f Field[T]) Merge(current *T) *T {
	if !f.Set {
		return current
	}
	if f.Value == nil {
		return nil
	}
	v := *f.Value
	return &v
}

// Set builds a Field carrying a value.
func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Clear builds a Field carrying an explicit null.
func Clear[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
