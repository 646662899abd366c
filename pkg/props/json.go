package props

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON serializes the value as standard JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON replaces the value with the parsed JSON document.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := FromGo(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse decodes a JSON document into a Value.
func Parse(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, fmt.Errorf("props: parse: %w", err)
	}
	return v, nil
}

// MustParse is Parse for literals; it panics on invalid JSON.
// Intended for tests and examples.
func MustParse(src string) Value {
	v, err := Parse([]byte(src))
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the compact JSON representation, or "<invalid>" when the
// value cannot be serialized.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return "<invalid>"
	}
	return string(data)
}
