package vm

import "strconv"

// ---------------------------------------------------------------------------
// Kernel structured payloads
// ---------------------------------------------------------------------------
//
// The minimal value kinds the core itself needs: None, booleans, 64-bit
// integers, strings, lists and tuples. Each guest-visible kind is a
// concrete payload struct selected by its class at construction; dispatch
// is always by class-chain walk, never by host-side subclassing.

// StrPayload holds an immutable string value.
type StrPayload struct {
	Value string
}

// IntPayload holds a 64-bit integer value.
type IntPayload struct {
	Value int64
}

// BoolPayload holds a boolean value.
type BoolPayload struct {
	Value bool
}

// ListPayload holds a mutable ordered sequence.
type ListPayload struct {
	Items []*Object
}

// TuplePayload holds an immutable ordered sequence.
type TuplePayload struct {
	Items []*Object
}

// ByteBuffer is the structured payload of ByteArray: a resizable byte
// buffer owned exclusively by its object and accessed through borrows.
type ByteBuffer struct {
	Bytes []byte
}

// SliceBounds is the structured payload of Slice: a triple of optional
// bounds. A nil field means the bound is absent.
type SliceBounds struct {
	Start *int64
	Stop  *int64
	Step  *int64
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// None returns the runtime's singleton none value.
func (r *VM) None() *Object {
	return r.none
}

// NewBool returns one of the runtime's two boolean singletons.
func (r *VM) NewBool(b bool) *Object {
	if b {
		return r.trueObj
	}
	return r.falseObj
}

// NewInt creates an integer object.
func (r *VM) NewInt(v int64) *Object {
	return NewObject(r.IntClass, &IntPayload{Value: v})
}

// NewStr creates a string object.
func (r *VM) NewStr(s string) *Object {
	return NewObject(r.StrClass, &StrPayload{Value: s})
}

// NewList creates a list object holding the given items.
func (r *VM) NewList(items ...*Object) *Object {
	return NewObject(r.ListClass, &ListPayload{Items: items})
}

// NewTuple creates a tuple object holding the given items.
func (r *VM) NewTuple(items ...*Object) *Object {
	return NewObject(r.TupleClass, &TuplePayload{Items: items})
}

// NewByteArray creates a byte-array object over the given bytes.
// The object takes ownership of the slice.
func (r *VM) NewByteArray(data []byte) *Object {
	return NewObject(r.ByteArrayClass, &ByteBuffer{Bytes: data})
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------
//
// Convenience readers for host code. Each takes and releases a shared
// borrow internally; the second result is false when the object is not of
// the asked-for kind.

// AsStr returns the string value of a Str object.
func AsStr(o *Object) (string, bool) {
	if _, ok := o.payload.(*StrPayload); !ok {
		return "", false
	}
	p, release := BorrowPayload[StrPayload](o)
	defer release()
	return p.Value, true
}

// AsInt returns the integer value of an Int object.
func AsInt(o *Object) (int64, bool) {
	if _, ok := o.payload.(*IntPayload); !ok {
		return 0, false
	}
	p, release := BorrowPayload[IntPayload](o)
	defer release()
	return p.Value, true
}

// AsBool returns the boolean value of a Bool object.
func AsBool(o *Object) (bool, bool) {
	if _, ok := o.payload.(*BoolPayload); !ok {
		return false, false
	}
	p, release := BorrowPayload[BoolPayload](o)
	defer release()
	return p.Value, true
}

// IsNone reports whether the object is the none singleton of its runtime.
func (r *VM) IsNone(o *Object) bool {
	return o == r.none
}

// ---------------------------------------------------------------------------
// Default string conversion
// ---------------------------------------------------------------------------

// Str renders an object as a string: the result of its __str__ method
// when its class chain defines one, or a kernel default otherwise.
// The error is a *Raised when __str__ itself fails.
func (r *VM) Str(o *Object) (string, error) {
	if fn, ok := o.class.LookupAttribute("__str__"); ok {
		result, err := r.Call(fn, Args{Positional: []*Object{o}})
		if err != nil {
			return "", err
		}
		if s, ok := AsStr(result); ok {
			return s, nil
		}
		return "", r.NewTypeError("__str__ returned non-string (type %s)", result.ClassName())
	}
	return r.defaultStr(o), nil
}

func (r *VM) defaultStr(o *Object) string {
	switch p := o.payload.(type) {
	case *StrPayload:
		return p.Value
	case *IntPayload:
		return strconv.FormatInt(p.Value, 10)
	case *BoolPayload:
		if p.Value {
			return "True"
		}
		return "False"
	case *Class:
		return "<class '" + p.Name + "'>"
	}
	if r.IsNone(o) {
		return "None"
	}
	return "<" + o.ClassName() + " object>"
}
