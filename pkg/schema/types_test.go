package schema_test

import (
	"testing"

	"github.com/easelhq/easel/pkg/props"
	"github.com/easelhq/easel/pkg/schema"
)

func TestStringType(t *testing.T) {
	typ := schema.String()
	if typ.Name() != "string" {
		t.Errorf("expected name 'string', got %s", typ.Name())
	}

	tests := []struct {
		name    string
		value   props.Value
		wantErr bool
	}{
		{"valid string", props.String("hello"), false},
		{"empty string", props.String(""), false},
		{"number", props.Number(42), true},
		{"bool", props.Bool(true), true},
		{"null", props.Null(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := typ.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestIntType(t *testing.T) {
	typ := schema.Int()
	if typ.Name() != "int" {
		t.Errorf("expected name 'int', got %s", typ.Name())
	}

	tests := []struct {
		name    string
		value   props.Value
		wantErr bool
	}{
		{"valid int", props.Number(42), false},
		{"zero", props.Number(0), false},
		{"negative", props.Number(-7), false},
		{"fractional", props.Number(3.5), true},
		{"string", props.String("42"), true},
		{"null", props.Null(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := typ.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestNumberType(t *testing.T) {
	typ := schema.Number()
	if typ.Name() != "number" {
		t.Errorf("expected name 'number', got %s", typ.Name())
	}

	tests := []struct {
		name    string
		value   props.Value
		wantErr bool
	}{
		{"integral", props.Number(42), false},
		{"fractional", props.Number(3.14), false},
		{"string", props.String("3.14"), true},
		{"bool", props.Bool(false), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := typ.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestBoolType(t *testing.T) {
	typ := schema.Bool()
	if typ.Name() != "bool" {
		t.Errorf("expected name 'bool', got %s", typ.Name())
	}

	if err := typ.Validate(props.Bool(true)); err != nil {
		t.Errorf("expected true to validate, got %v", err)
	}
	if err := typ.Validate(props.String("true")); err == nil {
		t.Error("expected string to fail validation")
	}
}

func TestObjectType(t *testing.T) {
	typ := schema.Object()
	if typ.Name() != "object" {
		t.Errorf("expected name 'object', got %s", typ.Name())
	}

	if err := typ.Validate(props.MustParse(`{"a": 1}`)); err != nil {
		t.Errorf("expected object to validate, got %v", err)
	}
	if err := typ.Validate(props.MustParse(`[1, 2]`)); err == nil {
		t.Error("expected array to fail validation")
	}
}

func TestAnyType(t *testing.T) {
	typ := schema.Any()
	if typ.Name() != "any" {
		t.Errorf("expected name 'any', got %s", typ.Name())
	}

	values := []props.Value{
		props.Null(),
		props.Bool(true),
		props.Number(1.5),
		props.String("x"),
		props.MustParse(`[1]`),
		props.MustParse(`{"k": "v"}`),
	}
	for _, v := range values {
		if err := typ.Validate(v); err != nil {
			t.Errorf("expected %v to validate, got %v", v, err)
		}
	}
}

func TestSliceType(t *testing.T) {
	typ := schema.Slice(schema.String())
	if typ.Name() != "[string]" {
		t.Errorf("expected name '[string]', got %s", typ.Name())
	}

	tests := []struct {
		name    string
		value   props.Value
		wantErr bool
	}{
		{"valid strings", props.MustParse(`["a", "b"]`), false},
		{"empty array", props.MustParse(`[]`), false},
		{"mixed elements", props.MustParse(`["a", 1]`), true},
		{"not an array", props.String("a"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := typ.Validate(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestCustomType(t *testing.T) {
	typ := schema.Custom("positive", func(v props.Value) error {
		n, ok := v.AsNumber()
		if !ok || n <= 0 {
			return errNotPositive
		}
		return nil
	})
	if typ.Name() != "positive" {
		t.Errorf("expected name 'positive', got %s", typ.Name())
	}

	if err := typ.Validate(props.Number(5)); err != nil {
		t.Errorf("expected 5 to validate, got %v", err)
	}
	if err := typ.Validate(props.Number(-5)); err == nil {
		t.Error("expected -5 to fail validation")
	}
}

var errNotPositive = &testError{"must be positive"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantErr  bool
	}{
		{"string", "string", false},
		{"int", "int", false},
		{"number", "number", false},
		{"float", "number", false},
		{"bool", "bool", false},
		{"object", "object", false},
		{"any", "any", false},
		{"[string]", "[string]", false},
		{"[[int]]", "[[int]]", false},
		{"widget", "", true},
		{"[widget]", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := schema.ParseType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && typ.Name() != tt.wantName {
				t.Errorf("ParseType(%q).Name() = %s, want %s", tt.input, typ.Name(), tt.wantName)
			}
		})
	}
}

func TestParseTypeMap(t *testing.T) {
	s, err := schema.ParseTypeMap(map[string]string{
		"text":  "string",
		"count": "int",
		"tags":  "[string]",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(s))
	}
	if s["tags"].Name() != "[string]" {
		t.Errorf("expected tags to be [string], got %s", s["tags"].Name())
	}

	if _, err := schema.ParseTypeMap(map[string]string{"bad": "widget"}); err == nil {
		t.Error("expected error for unknown type")
	}
}
