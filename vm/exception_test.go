package vm

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Hierarchy tests
// ---------------------------------------------------------------------------

func TestExceptionHierarchy(t *testing.T) {
	r := NewVM()
	z := &r.Exceptions

	for _, tc := range []struct {
		child, parent *Class
	}{
		{z.Exception, z.BaseException},
		{z.TypeError, z.Exception},
		{z.ValueError, z.Exception},
		{z.OverflowError, z.ArithmeticError},
		{z.ZeroDivisionError, z.ArithmeticError},
		{z.ModuleNotFoundError, z.ImportError},
		{z.NotImplementedError, z.RuntimeError},
		{z.FileNotFoundError, z.OSError},
		{z.PermissionError, z.OSError},
	} {
		if tc.child.Base != tc.parent {
			t.Errorf("%s base = %s, want %s", tc.child.Name, tc.child.Base.Name, tc.parent.Name)
		}
	}

	if !z.ValueError.IsSubclassOf(z.BaseException) {
		t.Error("ValueError should descend from BaseException")
	}
	if z.ValueError.IsSubclassOf(z.TypeError) {
		t.Error("sibling leaves must not be related")
	}
}

func TestRaisedInstanceRelations(t *testing.T) {
	r := NewVM()
	err := r.NewZeroDivisionError("division by zero")

	raised := err.(*Raised)
	exc := raised.Exception
	for _, c := range []*Class{
		r.Exceptions.ZeroDivisionError,
		r.Exceptions.ArithmeticError,
		r.Exceptions.Exception,
		r.Exceptions.BaseException,
	} {
		if !exc.IsInstanceOf(c) {
			t.Errorf("exception should be an instance of %s", c.Name)
		}
	}
}

// ---------------------------------------------------------------------------
// Construction and rendering tests
// ---------------------------------------------------------------------------

func TestExceptionStr(t *testing.T) {
	r := NewVM()
	exc, err := r.Instantiate(r.Exceptions.ValueError, r.NewStr("boom"))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	s, err := r.Str(exc)
	if err != nil {
		t.Fatalf("Str: %v", err)
	}
	if s != "ValueError: boom" {
		t.Errorf("str = %q, want %q", s, "ValueError: boom")
	}
}

func TestExceptionDefaultMsg(t *testing.T) {
	r := NewVM()
	exc, err := r.Instantiate(r.Exceptions.RuntimeError)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	s, err := r.Str(exc)
	if err != nil {
		t.Fatalf("Str: %v", err)
	}
	if s != "RuntimeError: No msg" {
		t.Errorf("str = %q, want %q", s, "RuntimeError: No msg")
	}
}

func TestExceptionStartsWithEmptyTraceback(t *testing.T) {
	r := NewVM()
	exc, err := r.Instantiate(r.Exceptions.ValueError, r.NewStr("boom"))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	tb, ok := exc.OwnAttr("__traceback__")
	if !ok {
		t.Fatal("constructor should set __traceback__")
	}
	if !tb.IsInstanceOf(r.ListClass) {
		t.Fatalf("__traceback__ is %s, want list", tb.ClassName())
	}
	list, release := BorrowPayload[ListPayload](tb)
	defer release()
	if len(list.Items) != 0 {
		t.Errorf("fresh traceback has %d entries, want 0", len(list.Items))
	}
}

func TestRaisedError(t *testing.T) {
	r := NewVM()
	err := r.NewTypeError("bad operand")
	if err.Error() != "TypeError: bad operand" {
		t.Errorf("Error() = %q, want %q", err.Error(), "TypeError: bad operand")
	}
}

// ---------------------------------------------------------------------------
// Traceback tests
// ---------------------------------------------------------------------------

func TestRecordFrameKeepsEntryOrder(t *testing.T) {
	r := NewVM()
	err := r.NewValueError("boom")

	// The unwinder reports innermost first; the stored list must end up
	// oldest first.
	err = r.RecordFrame(err, "f.py", 2, "helper")
	err = r.RecordFrame(err, "f.py", 1, "main")

	tb, _ := err.(*Raised).Exception.OwnAttr("__traceback__")
	list, release := BorrowPayload[ListPayload](tb)
	defer release()
	if len(list.Items) != 2 {
		t.Fatalf("traceback has %d entries, want 2", len(list.Items))
	}
	first, releaseFirst := BorrowPayload[TuplePayload](list.Items[0])
	defer releaseFirst()
	name, _ := AsStr(first.Items[2])
	if name != "main" {
		t.Errorf("first stored frame = %q, want %q", name, "main")
	}
}

func TestRecordFramePassesThroughForeignErrors(t *testing.T) {
	r := NewVM()
	plain := errTest("plain")
	if got := r.RecordFrame(plain, "f.py", 1, "main"); got != plain {
		t.Error("non-raised errors must pass through unchanged")
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestPrintExceptionWithTraceback(t *testing.T) {
	r := NewVM()
	err := r.NewValueError("boom")
	err = r.RecordFrame(err, "f.py", 2, "helper")
	err = r.RecordFrame(err, "f.py", 1, "main")

	var out strings.Builder
	r.PrintException(&out, err.(*Raised).Exception)

	want := "Traceback (most recent call last):\n" +
		"  File f.py, line 1, in main\n" +
		"  File f.py, line 2, in helper\n" +
		"ValueError: boom\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestPrintExceptionMalformedEntry(t *testing.T) {
	r := NewVM()
	err := r.NewValueError("boom")
	exc := err.(*Raised).Exception

	tb, _ := exc.OwnAttr("__traceback__")
	list, release := BorrowPayloadMut[ListPayload](tb)
	list.Items = append(list.Items, r.NewInt(99))
	release()

	var out strings.Builder
	r.PrintException(&out, exc)

	want := "Traceback (most recent call last):\n" +
		"  File ??\n" +
		"ValueError: boom\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestPrintExceptionWithoutTraceback(t *testing.T) {
	r := NewVM()
	// An object that never went through the constructor carries no
	// traceback attribute at all.
	exc := NewObject(r.Exceptions.ValueError, nil)
	exc.SetAttr("msg", r.NewStr("boom"))

	var out strings.Builder
	r.PrintException(&out, exc)

	want := "No traceback set on exception\n" +
		"ValueError: boom\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestPrintExceptionSurvivesBrokenStr(t *testing.T) {
	r := NewVM()
	c := r.CreateClass("Broken", r.Exceptions.Exception)
	r.ExtendMethod(c, &Builtin{
		Name:     "__str__",
		Required: []Param{{Name: "self", Class: c}},
		Fn: func(r *VM, b *BoundArgs) (*Object, error) {
			return nil, r.NewRuntimeError("str blew up")
		},
	})

	exc, err := r.Instantiate(c, r.NewStr("ignored"))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}

	var out strings.Builder
	r.PrintException(&out, exc)
	if !strings.Contains(out.String(), "Error during error") {
		t.Errorf("output should report the secondary failure, got:\n%s", out.String())
	}
}

// ---------------------------------------------------------------------------
// Typed helper tests
// ---------------------------------------------------------------------------

func TestTypedHelpers(t *testing.T) {
	r := NewVM()
	for _, tc := range []struct {
		err   error
		class *Class
	}{
		{r.NewTypeError("t"), r.Exceptions.TypeError},
		{r.NewValueError("v"), r.Exceptions.ValueError},
		{r.NewIndexError("i"), r.Exceptions.IndexError},
		{r.NewAttributeError("a"), r.Exceptions.AttributeError},
		{r.NewKeyError("k"), r.Exceptions.KeyError},
		{r.NewNameError("n"), r.Exceptions.NameError},
		{r.NewOSError("o"), r.Exceptions.OSError},
		{r.NewRuntimeError("r"), r.Exceptions.RuntimeError},
		{r.NewImportError("im"), r.Exceptions.ImportError},
		{r.NewOverflowError("of"), r.Exceptions.OverflowError},
		{r.NewZeroDivisionError("z"), r.Exceptions.ZeroDivisionError},
		{r.NewNotImplementedError("ni"), r.Exceptions.NotImplementedError},
		{r.NewStopIteration(), r.Exceptions.StopIteration},
	} {
		if !raisedInstanceOf(tc.err, tc.class) {
			t.Errorf("helper for %s produced %v", tc.class.Name, tc.err)
		}
	}
}
