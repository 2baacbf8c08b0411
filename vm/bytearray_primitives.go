package vm

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// ByteArray primitives
// ---------------------------------------------------------------------------
//
// ByteArray is a consumer of the core's registration and dispatch
// contract: a mutable byte buffer as a structured payload, with every
// method going through the argument binder. Byte classification treats
// each byte as a single rune, matching the original semantics.

func (r *VM) registerByteArrayPrimitives() {
	ba := r.createClass("bytearray", r.ObjectClass)
	r.ByteArrayClass = ba

	r.ExtendMethod(ba, &Builtin{
		Name:     "__new__",
		Required: []Param{{Name: "cls", Class: r.TypeClass}},
		Optional: []Param{{Name: "source"}},
		Fn:       byteArrayNew,
	})
	r.ExtendMethod(ba, &Builtin{
		Name:     "__eq__",
		Required: []Param{{Name: "self", Class: ba}, {Name: "other"}},
		Fn:       byteArrayEq,
	})
	r.ExtendMethod(ba, &Builtin{
		Name:     "__len__",
		Required: []Param{{Name: "self", Class: ba}},
		Fn:       byteArrayLen,
	})
	r.ExtendMethod(ba, &Builtin{
		Name:     "__repr__",
		Required: []Param{{Name: "self", Class: ba}},
		Fn:       byteArrayRepr,
	})
	r.ExtendMethod(ba, &Builtin{
		Name:     "clear",
		Required: []Param{{Name: "self", Class: ba}},
		Fn:       byteArrayClear,
	})
	r.ExtendMethod(ba, &Builtin{
		Name:     "pop",
		Required: []Param{{Name: "self", Class: ba}},
		Fn:       byteArrayPop,
	})
	r.ExtendMethod(ba, &Builtin{
		Name:     "lower",
		Required: []Param{{Name: "self", Class: ba}},
		Fn:       byteArrayLower,
	})
	r.ExtendMethod(ba, &Builtin{
		Name:     "upper",
		Required: []Param{{Name: "self", Class: ba}},
		Fn:       byteArrayUpper,
	})

	predicates := map[string]func([]byte) bool{
		"isalnum": bytesIsAlnum,
		"isalpha": bytesIsAlpha,
		"isascii": bytesIsASCII,
		"isdigit": bytesIsDigit,
		"islower": bytesIsLower,
		"isspace": bytesIsSpace,
		"istitle": bytesIsTitle,
		"isupper": bytesIsUpper,
	}
	for name, pred := range predicates {
		r.ExtendMethod(ba, &Builtin{
			Name:     name,
			Required: []Param{{Name: "self", Class: ba}},
			Fn: func(pred func([]byte) bool) BuiltinFunc {
				return func(r *VM, b *BoundArgs) (*Object, error) {
					buf, release := BorrowPayload[ByteBuffer](b.Arg(0))
					defer release()
					return r.NewBool(pred(buf.Bytes)), nil
				}
			}(pred),
		})
	}
}

func byteArrayNew(r *VM, b *BoundArgs) (*Object, error) {
	cls, ok := ClassFromObject(b.Arg(0))
	if !ok {
		return nil, r.NewTypeError("__new__() argument 'cls' must be a class")
	}

	var data []byte
	if source, present := b.Opt(0); present {
		elements, err := r.sequenceElements(source)
		if err != nil {
			return nil, err
		}
		for _, elem := range elements {
			v, ok := AsInt(elem)
			if !ok {
				return nil, r.NewTypeError("'%s' object cannot be interpreted as an integer", elem.ClassName())
			}
			if v < 0 || v > 255 {
				return nil, r.NewValueError("byte must be in range(0, 256)")
			}
			data = append(data, byte(v))
		}
	}
	return NewObject(cls, &ByteBuffer{Bytes: data}), nil
}

// sequenceElements extracts the items of a list or tuple.
func (r *VM) sequenceElements(o *Object) ([]*Object, error) {
	switch p := o.payload.(type) {
	case *ListPayload:
		return p.Items, nil
	case *TuplePayload:
		return p.Items, nil
	}
	return nil, r.NewTypeError("'%s' object is not iterable", o.ClassName())
}

func byteArrayEq(r *VM, b *BoundArgs) (*Object, error) {
	self, other := b.Arg(0), b.Arg(1)
	if !other.IsInstanceOf(r.ByteArrayClass) {
		return r.NewBool(false), nil
	}
	if self == other {
		return r.NewBool(true), nil
	}
	a, releaseA := BorrowPayload[ByteBuffer](self)
	defer releaseA()
	c, releaseC := BorrowPayload[ByteBuffer](other)
	defer releaseC()
	return r.NewBool(string(a.Bytes) == string(c.Bytes)), nil
}

func byteArrayLen(r *VM, b *BoundArgs) (*Object, error) {
	buf, release := BorrowPayload[ByteBuffer](b.Arg(0))
	defer release()
	return r.NewInt(int64(len(buf.Bytes))), nil
}

func byteArrayRepr(r *VM, b *BoundArgs) (*Object, error) {
	buf, release := BorrowPayload[ByteBuffer](b.Arg(0))
	defer release()
	data := string(buf.Bytes)
	if !utf8.ValidString(data) {
		data = byteArrayToHex(buf.Bytes)
	}
	return r.NewStr(fmt.Sprintf("bytearray(b'%s')", data)), nil
}

// byteArrayToHex renders a lowercase hex escape per byte.
func byteArrayToHex(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		fmt.Fprintf(&sb, "\\x%02x", b)
	}
	return sb.String()
}

func byteArrayClear(r *VM, b *BoundArgs) (*Object, error) {
	buf, release := BorrowPayloadMut[ByteBuffer](b.Arg(0))
	defer release()
	buf.Bytes = buf.Bytes[:0]
	return r.None(), nil
}

func byteArrayPop(r *VM, b *BoundArgs) (*Object, error) {
	buf, release := BorrowPayloadMut[ByteBuffer](b.Arg(0))
	defer release()
	if len(buf.Bytes) == 0 {
		return nil, r.NewIndexError("pop from empty bytearray")
	}
	last := buf.Bytes[len(buf.Bytes)-1]
	buf.Bytes = buf.Bytes[:len(buf.Bytes)-1]
	return r.NewInt(int64(last)), nil
}

func byteArrayLower(r *VM, b *BoundArgs) (*Object, error) {
	buf, release := BorrowPayload[ByteBuffer](b.Arg(0))
	defer release()
	return r.NewByteArray(asciiMapped(buf.Bytes, asciiLower)), nil
}

func byteArrayUpper(r *VM, b *BoundArgs) (*Object, error) {
	buf, release := BorrowPayload[ByteBuffer](b.Arg(0))
	defer release()
	return r.NewByteArray(asciiMapped(buf.Bytes, asciiUpper)), nil
}

func asciiMapped(data []byte, f func(byte) byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = f(b)
	}
	return out
}

func asciiLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func asciiUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// ---------------------------------------------------------------------------
// Byte classification predicates
// ---------------------------------------------------------------------------

func bytesIsAlnum(data []byte) bool {
	return allBytes(data, func(c rune) bool {
		return unicode.IsLetter(c) || unicode.IsNumber(c)
	})
}

func bytesIsAlpha(data []byte) bool {
	return allBytes(data, unicode.IsLetter)
}

func bytesIsASCII(data []byte) bool {
	return allBytes(data, func(c rune) bool { return c < 128 })
}

func bytesIsDigit(data []byte) bool {
	return allBytes(data, unicode.IsDigit)
}

func bytesIsSpace(data []byte) bool {
	return allBytes(data, unicode.IsSpace)
}

// islower/isupper ignore whitespace bytes and classify the rest.

func bytesIsLower(data []byte) bool {
	return allBytesFiltered(data, unicode.IsLower)
}

func bytesIsUpper(data []byte) bool {
	return allBytesFiltered(data, unicode.IsUpper)
}

func allBytes(data []byte, pred func(rune) bool) bool {
	if len(data) == 0 {
		return false
	}
	for _, b := range data {
		if !pred(rune(b)) {
			return false
		}
	}
	return true
}

func allBytesFiltered(data []byte, pred func(rune) bool) bool {
	if len(data) == 0 {
		return false
	}
	for _, b := range data {
		c := rune(b)
		if unicode.IsSpace(c) {
			continue
		}
		if !pred(c) {
			return false
		}
	}
	return true
}

// bytesIsTitle checks titlecase: uppercase letters only at the start of
// cased runs.
func bytesIsTitle(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	prevCased := false
	for i := 0; i < len(data); i++ {
		current := rune(data[i])
		if i+1 >= len(data) {
			if unicode.IsUpper(current) {
				return !prevCased
			}
			return prevCased
		}
		next := rune(data[i+1])
		if (isCased(current) && unicode.IsUpper(next) && !prevCased) ||
			(!isCased(current) && unicode.IsLower(next)) {
			return false
		}
		prevCased = isCased(current)
	}
	return true
}

func isCased(c rune) bool {
	return unicode.ToUpper(c) != c || unicode.ToLower(c) != c
}
