package tinyvalue

import "fmt"

// Value is a type-erased holder of one concrete value kind. TypeId
// alone determines the in-memory layout and canonical name (spec
// invariant §3); keeping the stored Go type in line with typeID is
// the constructing caller's job, since New does not check it.
type Value struct {
	typeID TypeId
	data   interface{}
}

// New stores v under the given typeID as-is. It does not check v's Go
// type against typeID and never panics.
func New(typeID TypeId, v interface{}) Value {
	return Value{typeID: typeID, data: v}
}

// Zero returns the zero Value (TypeId Invalid, nil payload).
func Zero() Value { return Value{} }

func (v Value) TypeId() TypeId { return v.typeID }

func (v Value) TypeName() string { return v.typeID.TypeName() }

func (v Value) IsArray() bool { return v.typeID.IsArray() }

func (v Value) IsValid() bool { return v.typeID != Invalid }

// As attempts to view the value as T, returning ok=false rather than
// panicking on a mismatch.
func As[T any](v Value) (T, bool) {
	t, ok := v.data.(T)
	return t, ok
}

// Set replaces the contents of v in place with a new typed value;
// the previous payload is simply dropped (Go's GC handles release).
func (v *Value) Set(typeID TypeId, data interface{}) {
	v.typeID = typeID
	v.data = data
}

func (v Value) Raw() interface{} { return v.data }

func (v Value) String() string {
	if !v.IsValid() {
		return "<invalid>"
	}
	return fmt.Sprintf("%s(%v)", v.TypeName(), v.data)
}

// NewToken constructs a Token-typed Value.
func NewToken(tok Token) Value { return New(Token, tok) }

// NewDictionary constructs a Dictionary-typed Value wrapping a
// *Dict so nested mutation doesn't require replacing the Value.
func NewDictionary(d *Dict) Value { return New(Dictionary, d) }
