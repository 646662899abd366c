package props

// ObjectBuilder assembles an object value field by field.
type ObjectBuilder struct {
	fields map[string]Value
}

// NewObject starts a fluent object builder.
func NewObject() *ObjectBuilder {
	return &ObjectBuilder{fields: make(map[string]Value)}
}

// Set stores a field. Later calls with the same name overwrite.
func (b *ObjectBuilder) Set(name string, v Value) *ObjectBuilder {
	b.fields[name] = v
	return b
}

// SetString stores a string field.
func (b *ObjectBuilder) SetString(name, v string) *ObjectBuilder {
	return b.Set(name, String(v))
}

// SetNumber stores a numeric field.
func (b *ObjectBuilder) SetNumber(name string, v float64) *ObjectBuilder {
	return b.Set(name, Number(v))
}

// SetInt stores an integer field.
func (b *ObjectBuilder) SetInt(name string, v int64) *ObjectBuilder {
	return b.Set(name, Int(v))
}

// SetBool stores a boolean field.
func (b *ObjectBuilder) SetBool(name string, v bool) *ObjectBuilder {
	return b.Set(name, Bool(v))
}

// Build finalizes the object. The builder can keep being used; Build copies.
func (b *ObjectBuilder) Build() Value {
	return Object(b.fields)
}

// ArrayBuilder assembles an array value element by element.
type ArrayBuilder struct {
	elems []Value
}

// NewArray starts a fluent array builder.
func NewArray() *ArrayBuilder {
	return &ArrayBuilder{}
}

// Append adds elements to the end of the array.
func (b *ArrayBuilder) Append(elems ...Value) *ArrayBuilder {
	b.elems = append(b.elems, elems...)
	return b
}

// Build finalizes the array. The builder can keep being used; Build copies.
func (b *ArrayBuilder) Build() Value {
	return Array(b.elems...)
}
