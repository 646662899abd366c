package props

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a dynamically-typed, tree-structured payload: the props record a
// surface is started and re-rendered with. A Value is one of null, bool,
// number, string, array or object. The zero value is null.
//
// Values behave like immutable data: constructors copy their inputs, and
// accessors never expose internal slices or maps. Updates to a surface always
// carry a whole new tree; there is no partial mutation API.
type Value struct {
	kind Kind
	b    bool
	num  float64
	str  string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null value. Equivalent to the zero Value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean value.
func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

// Number returns a numeric value.
func Number(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

// Int returns a numeric value from an integer.
func Int(v int64) Value {
	return Value{kind: KindNumber, num: float64(v)}
}

// String returns a string value.
func String(v string) Value {
	return Value{kind: KindString, str: v}
}

// Array returns an array value holding the given elements.
func Array(elems ...Value) Value {
	arr := make([]Value, len(elems))
	copy(arr, elems)
	return Value{kind: KindArray, arr: arr}
}

// Object returns an object value holding the given fields.
func Object(fields map[string]Value) Value {
	obj := make(map[string]Value, len(fields))
	for k, v := range fields {
		obj[k] = v
	}
	return Value{kind: KindObject, obj: obj}
}

// EmptyObject returns an object value with no fields.
func EmptyObject() Value {
	return Value{kind: KindObject, obj: map[string]Value{}}
}

// Kind reports which variant the value holds.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload. The second result is false when the
// value is not a bool.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber returns the numeric payload. The second result is false when the
// value is not a number.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// AsInt returns the numeric payload as an int64. The second result is false
// when the value is not a number or the number is not integral.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.num != math.Trunc(v.num) || math.IsInf(v.num, 0) {
		return 0, false
	}
	return int64(v.num), true
}

// AsString returns the string payload. The second result is false when the
// value is not a string.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Len returns the number of elements for arrays and the number of fields for
// objects. It is zero for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Index returns the i-th element of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Field returns the named field of an object value.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	elem, ok := v.obj[name]
	return elem, ok
}

// Fields returns the field names of an object value in sorted order.
func (v Value) Fields() []string {
	if v.kind != KindObject {
		return nil
	}
	names := make([]string, 0, len(v.obj))
	for name := range v.obj {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the value. Stores use it to isolate persisted
// records from caller-held trees.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, elem := range v.arr {
			arr[i] = elem.Clone()
		}
		return Value{kind: KindArray, arr: arr}
	case KindObject:
		obj := make(map[string]Value, len(v.obj))
		for k, elem := range v.obj {
			obj[k] = elem.Clone()
		}
		return Value{kind: KindObject, obj: obj}
	default:
		return v
	}
}

// Equal reports whether two values are structurally identical.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for k, av := range a.obj {
			bv, ok := b.obj[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Interface converts the value into plain Go data: nil, bool, float64,
// string, []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i, elem := range v.arr {
			out[i] = elem.Interface()
		}
		return out
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, elem := range v.obj {
			m[k] = elem.Interface()
		}
		return m
	default:
		return nil
	}
}

// FromGo converts plain Go data into a Value. Supported inputs are nil,
// booleans, Go numeric types, json.Number, strings, []any, map[string]any
// (and map[any]any with string keys, as produced by YAML decoders), plus
// Value itself.
func FromGo(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return Number(float64(t)), nil
	case uint8:
		return Number(float64(t)), nil
	case uint16:
		return Number(float64(t)), nil
	case uint32:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("props: invalid number %q: %w", t.String(), err)
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case []any:
		arr := make([]Value, len(t))
		for i, elem := range t {
			conv, err := FromGo(elem)
			if err != nil {
				return Value{}, err
			}
			arr[i] = conv
		}
		return Value{kind: KindArray, arr: arr}, nil
	case []Value:
		return Array(t...), nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, elem := range t {
			conv, err := FromGo(elem)
			if err != nil {
				return Value{}, err
			}
			obj[k] = conv
		}
		return Value{kind: KindObject, obj: obj}, nil
	case map[string]Value:
		return Object(t), nil
	case map[any]any:
		obj := make(map[string]Value, len(t))
		for k, elem := range t {
			key, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("props: object key must be a string, got %T", k)
			}
			conv, err := FromGo(elem)
			if err != nil {
				return Value{}, err
			}
			obj[key] = conv
		}
		return Value{kind: KindObject, obj: obj}, nil
	default:
		return Value{}, fmt.Errorf("props: unsupported type %T", in)
	}
}
