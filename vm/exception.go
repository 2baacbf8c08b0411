package vm

import (
	"fmt"
	"io"
)

// ---------------------------------------------------------------------------
// Exception hierarchy
// ---------------------------------------------------------------------------

// ExceptionZoo holds the class handles of the builtin exception
// hierarchy so any collaborator can raise a specifically-typed error.
type ExceptionZoo struct {
	BaseException       *Class
	Exception           *Class
	ArithmeticError     *Class
	AssertionError      *Class
	AttributeError      *Class
	ImportError         *Class
	IndexError          *Class
	KeyError            *Class
	NameError           *Class
	OSError             *Class
	RuntimeError        *Class
	StopIteration       *Class
	SyntaxError         *Class
	TypeError           *Class
	ValueError          *Class
	OverflowError       *Class
	ZeroDivisionError   *Class
	ModuleNotFoundError *Class
	NotImplementedError *Class
	FileNotFoundError   *Class
	PermissionError     *Class
}

// defaultExceptionMsg is the message an exception constructed without an
// argument carries.
const defaultExceptionMsg = "No msg"

// bootstrapExceptionClasses creates the hierarchy, sorted by hierarchy
// then alphabetized.
func (r *VM) bootstrapExceptionClasses() {
	z := &r.Exceptions

	z.BaseException = r.createClass("BaseException", r.ObjectClass)
	z.Exception = r.createClass("Exception", z.BaseException)
	z.ArithmeticError = r.createClass("ArithmeticError", z.Exception)
	z.AssertionError = r.createClass("AssertionError", z.Exception)
	z.AttributeError = r.createClass("AttributeError", z.Exception)
	z.ImportError = r.createClass("ImportError", z.Exception)
	z.IndexError = r.createClass("IndexError", z.Exception)
	z.KeyError = r.createClass("KeyError", z.Exception)
	z.NameError = r.createClass("NameError", z.Exception)
	z.OSError = r.createClass("OSError", z.Exception)
	z.RuntimeError = r.createClass("RuntimeError", z.Exception)
	z.StopIteration = r.createClass("StopIteration", z.Exception)
	z.SyntaxError = r.createClass("SyntaxError", z.Exception)
	z.TypeError = r.createClass("TypeError", z.Exception)
	z.ValueError = r.createClass("ValueError", z.Exception)
	z.OverflowError = r.createClass("OverflowError", z.ArithmeticError)
	z.ZeroDivisionError = r.createClass("ZeroDivisionError", z.ArithmeticError)
	z.ModuleNotFoundError = r.createClass("ModuleNotFoundError", z.ImportError)
	z.NotImplementedError = r.createClass("NotImplementedError", z.RuntimeError)
	z.FileNotFoundError = r.createClass("FileNotFoundError", z.OSError)
	z.PermissionError = r.createClass("PermissionError", z.OSError)
}

// registerExceptionPrimitives attaches __init__ and __str__ after the
// classes exist. Registration is staged on purpose: BaseException and
// Exception are extended from separate call sites, and extending is
// idempotent, so builtin modules can re-run their registration safely.
func (r *VM) registerExceptionPrimitives() {
	z := &r.Exceptions

	// BaseException>>__init__: msg is the first extra constructor
	// argument, defaulted when absent; __traceback__ starts empty.
	z.BaseException.Extend("__init__", r.NewFunction(&Builtin{
		Name:     "__init__",
		Required: []Param{{Name: "self", Class: z.BaseException}},
		Optional: []Param{{Name: "msg"}},
		Fn: func(r *VM, b *BoundArgs) (*Object, error) {
			self := b.Arg(0)
			msg, ok := b.Opt(0)
			if !ok {
				msg = r.NewStr(defaultExceptionMsg)
			}
			self.SetAttr("msg", msg)
			self.SetAttr("__traceback__", r.NewList())
			return r.None(), nil
		},
	}))

	// Exception>>__str__: the receiver constraint is declared, not
	// ad hoc, so a wrong receiver is an ordinary TypeError.
	z.Exception.Extend("__str__", r.NewFunction(&Builtin{
		Name:     "__str__",
		Required: []Param{{Name: "self", Class: z.Exception}},
		Fn: func(r *VM, b *BoundArgs) (*Object, error) {
			self := b.Arg(0)
			msg, ok := self.OwnAttr("msg")
			if !ok {
				// msg presence is a constructor-enforced invariant;
				// its absence means the core's own wiring is broken.
				panic("vm: exception instance has no msg attribute")
			}
			text, err := r.Str(msg)
			if err != nil {
				text = "<exception str() failed>"
			}
			return r.NewStr(fmt.Sprintf("%s: %s", self.ClassName(), text)), nil
		},
	}))
}

// ---------------------------------------------------------------------------
// Raised: the uniform failure channel
// ---------------------------------------------------------------------------

// Raised threads a guest exception instance through ordinary Go error
// returns. It is the only failure channel between native functions; no
// non-local control transfer is involved until a handler or the
// top-level printer consumes it.
type Raised struct {
	Exception *Object
}

// Error renders a short diagnostic form. The full form is produced by
// PrintException.
func (e *Raised) Error() string {
	msg := defaultExceptionMsg
	if m, ok := e.Exception.OwnAttr("msg"); ok {
		if s, ok := AsStr(m); ok {
			msg = s
		}
	}
	return e.Exception.ClassName() + ": " + msg
}

// Raise constructs an exception instance of the given class through the
// regular constructor path and returns it as a *Raised.
func (r *VM) Raise(class *Class, format string, a ...any) error {
	instance, err := r.Instantiate(class, r.NewStr(fmt.Sprintf(format, a...)))
	if err != nil {
		// Exception construction itself must not fail; if it does the
		// hierarchy bootstrap is broken.
		panic(fmt.Sprintf("vm: constructing %s failed: %v", class.Name, err))
	}
	return &Raised{Exception: instance}
}

// Typed raise helpers, one per taxonomy entry collaborators reach for.

func (r *VM) NewTypeError(format string, a ...any) error {
	return r.Raise(r.Exceptions.TypeError, format, a...)
}

func (r *VM) NewValueError(format string, a ...any) error {
	return r.Raise(r.Exceptions.ValueError, format, a...)
}

func (r *VM) NewIndexError(format string, a ...any) error {
	return r.Raise(r.Exceptions.IndexError, format, a...)
}

func (r *VM) NewAttributeError(format string, a ...any) error {
	return r.Raise(r.Exceptions.AttributeError, format, a...)
}

func (r *VM) NewKeyError(format string, a ...any) error {
	return r.Raise(r.Exceptions.KeyError, format, a...)
}

func (r *VM) NewNameError(format string, a ...any) error {
	return r.Raise(r.Exceptions.NameError, format, a...)
}

func (r *VM) NewOSError(format string, a ...any) error {
	return r.Raise(r.Exceptions.OSError, format, a...)
}

func (r *VM) NewRuntimeError(format string, a ...any) error {
	return r.Raise(r.Exceptions.RuntimeError, format, a...)
}

func (r *VM) NewImportError(format string, a ...any) error {
	return r.Raise(r.Exceptions.ImportError, format, a...)
}

func (r *VM) NewOverflowError(format string, a ...any) error {
	return r.Raise(r.Exceptions.OverflowError, format, a...)
}

func (r *VM) NewZeroDivisionError(format string, a ...any) error {
	return r.Raise(r.Exceptions.ZeroDivisionError, format, a...)
}

func (r *VM) NewNotImplementedError(format string, a ...any) error {
	return r.Raise(r.Exceptions.NotImplementedError, format, a...)
}

func (r *VM) NewStopIteration() error {
	return r.Raise(r.Exceptions.StopIteration, defaultExceptionMsg)
}

// ---------------------------------------------------------------------------
// Traceback recording
// ---------------------------------------------------------------------------

// RecordFrame adds one (filename, line, frameName) entry to the
// exception carried by err. The unwinder calls this once per unwound
// frame, innermost first; entries are prepended so the stored list stays
// in frame-entry order (oldest first). Non-Raised errors pass through
// untouched.
func (r *VM) RecordFrame(err error, filename string, line int64, frameName string) error {
	raised, ok := err.(*Raised)
	if !ok {
		return err
	}
	tb, ok := raised.Exception.OwnAttr("__traceback__")
	if !ok {
		return err
	}
	if _, ok := tb.payload.(*ListPayload); !ok {
		return err
	}
	entry := r.NewTuple(r.NewStr(filename), r.NewInt(line), r.NewStr(frameName))
	list, release := BorrowPayloadMut[ListPayload](tb)
	list.Items = append([]*Object{entry}, list.Items...)
	release()
	return err
}

// ---------------------------------------------------------------------------
// Top-level printing
// ---------------------------------------------------------------------------

// PrintException renders an uncaught exception with its traceback. It is
// a terminal sink: every secondary failure is reported inline instead of
// propagating, so the caller can never be made to crash by a broken
// exception object.
//
// Traceback entries are stored oldest first and printed in that order,
// so the most recently entered frame prints last. Entries that are not
// (filename, line, frameName) tuples print as "  File ??".
func (r *VM) PrintException(w io.Writer, exc *Object) {
	tb, hasTb := exc.OwnAttr("__traceback__")
	if hasTb {
		fmt.Fprintln(w, "Traceback (most recent call last):")
		if tb.IsInstanceOf(r.ListClass) {
			list, release := BorrowPayload[ListPayload](tb)
			entries := make([]*Object, len(list.Items))
			copy(entries, list.Items)
			release()
			for _, entry := range entries {
				r.printTracebackEntry(w, entry)
			}
		}
	} else {
		fmt.Fprintln(w, "No traceback set on exception")
	}

	text, err := r.Str(exc)
	if err != nil {
		fmt.Fprintf(w, "Error during error: %v\n", err)
		return
	}
	fmt.Fprintln(w, text)
}

func (r *VM) printTracebackEntry(w io.Writer, entry *Object) {
	tuple, ok := entry.payload.(*TuplePayload)
	if !ok || len(tuple.Items) != 3 {
		fmt.Fprintln(w, "  File ??")
		return
	}
	parts := make([]string, 3)
	for i, item := range tuple.Items {
		if s, err := r.Str(item); err == nil {
			parts[i] = s
		} else {
			parts[i] = "<error>"
		}
	}
	fmt.Fprintf(w, "  File %s, line %s, in %s\n", parts[0], parts[1], parts[2])
}
