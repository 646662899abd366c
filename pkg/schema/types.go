package schema

import (
	"fmt"

	"github.com/easelhq/easel/pkg/props"
)

// Type defines the contract for prop validation.
// Implementations determine how a props value is validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a props value conforms to this type.
	Validate(value props.Value) error
}

// --- Built-in Type Implementations ---

// StringType validates string props.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value props.Value) error {
	if value.Kind() != props.KindString {
		return fmt.Errorf("expected string, got %s", value.Kind())
	}
	return nil
}

// IntType validates whole-number props.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value props.Value) error {
	if value.Kind() != props.KindNumber {
		return fmt.Errorf("expected int, got %s", value.Kind())
	}
	if _, ok := value.AsInt(); !ok {
		return fmt.Errorf("expected int, got fractional number")
	}
	return nil
}

// NumberType validates any numeric props.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value props.Value) error {
	if value.Kind() != props.KindNumber {
		return fmt.Errorf("expected number, got %s", value.Kind())
	}
	return nil
}

// BoolType validates boolean props.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value props.Value) error {
	if value.Kind() != props.KindBool {
		return fmt.Errorf("expected bool, got %s", value.Kind())
	}
	return nil
}

// ObjectType validates object props without constraining their fields.
type ObjectType struct{}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value props.Value) error {
	if value.Kind() != props.KindObject {
		return fmt.Errorf("expected object, got %s", value.Kind())
	}
	return nil
}

// AnyType accepts every props value, including null.
type AnyType struct{}

func (t *AnyType) Name() string { return "any" }

func (t *AnyType) Validate(value props.Value) error { return nil }

// SliceType validates arrays of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value props.Value) error {
	if value.Kind() != props.KindArray {
		return fmt.Errorf("expected array, got %s", value.Kind())
	}
	for i := 0; i < value.Len(); i++ {
		elem, _ := value.Index(i)
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(props.Value) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value props.Value) error {
	return t.validate(value)
}

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates a whole-number type validator.
func Int() Type { return &IntType{} }

// Number creates a numeric type validator.
func Number() Type { return &NumberType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Object creates an object type validator.
func Object() Type { return &ObjectType{} }

// Any creates a validator that accepts everything.
func Any() Type { return &AnyType{} }

// Slice creates an array type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(props.Value) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType converts a string type name to a Type.
// Supports "string", "int", "number", "bool", "object", "any" and array
// forms like "[string]".
func ParseType(typeStr string) (Type, error) {
	if len(typeStr) > 2 && typeStr[0] == '[' && typeStr[len(typeStr)-1] == ']' {
		elemType, err := ParseType(typeStr[1 : len(typeStr)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elemType), nil
	}

	switch typeStr {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "number", "float":
		return Number(), nil
	case "bool":
		return Bool(), nil
	case "object":
		return Object(), nil
	case "any":
		return Any(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", typeStr)
	}
}

// ParseTypeMap converts a map of prop names to type strings into a Schema.
// Example: {"text": "string", "count": "int"}
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema)
	for key, typeStr := range typeMap {
		t, err := ParseType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("prop %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}
