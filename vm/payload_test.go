package vm

import (
	"reflect"
	"regexp"
	"testing"
)

// ---------------------------------------------------------------------------
// Structured payload borrow tests
// ---------------------------------------------------------------------------

func TestBorrowSharedAllowsReaders(t *testing.T) {
	r := NewVM()
	o := r.NewByteArray([]byte("abc"))

	a, releaseA := BorrowPayload[ByteBuffer](o)
	b, releaseB := BorrowPayload[ByteBuffer](o)
	if a != b {
		t.Error("both borrows should see the same payload")
	}
	releaseA()
	releaseB()

	// After release, a mutable borrow is allowed again.
	_, release := BorrowPayloadMut[ByteBuffer](o)
	release()
}

func TestBorrowMutIsExclusive(t *testing.T) {
	r := NewVM()
	o := r.NewByteArray(nil)

	_, release := BorrowPayloadMut[ByteBuffer](o)
	defer release()

	defer func() {
		if recover() == nil {
			t.Error("second borrow during a mutable borrow should panic")
		}
	}()
	BorrowPayload[ByteBuffer](o)
}

func TestBorrowMutBlockedByReader(t *testing.T) {
	r := NewVM()
	o := r.NewByteArray(nil)

	_, release := BorrowPayload[ByteBuffer](o)
	defer release()

	defer func() {
		if recover() == nil {
			t.Error("mutable borrow during a shared borrow should panic")
		}
	}()
	BorrowPayloadMut[ByteBuffer](o)
}

func TestBorrowWrongTypePanics(t *testing.T) {
	r := NewVM()
	o := r.NewByteArray(nil)

	defer func() {
		if recover() == nil {
			t.Error("borrow with mismatched payload type should panic")
		}
	}()
	BorrowPayload[SliceBounds](o)
}

func TestBorrowReleaseIsIdempotent(t *testing.T) {
	r := NewVM()
	o := r.NewByteArray(nil)

	_, release := BorrowPayload[ByteBuffer](o)
	release()
	release()

	// Borrow state must be back to free, not negative.
	_, releaseMut := BorrowPayloadMut[ByteBuffer](o)
	releaseMut()
}

// ---------------------------------------------------------------------------
// Opaque payload tests
// ---------------------------------------------------------------------------

func TestWrapAndDowncastOpaque(t *testing.T) {
	r := NewVM()
	pattern := r.CreateClass("Pattern", nil)

	rx := regexp.MustCompile("a+")
	o := WrapOpaque(pattern, rx)
	if o.Class() != pattern {
		t.Error("wrapped object should have the given class")
	}

	got, ok := DowncastOpaque[*regexp.Regexp](o)
	if !ok {
		t.Fatal("downcast to the stored type should succeed")
	}
	if got != rx {
		t.Error("downcast should return the original value")
	}
}

func TestDowncastOpaqueWrongTypeFails(t *testing.T) {
	r := NewVM()
	pattern := r.CreateClass("Pattern", nil)
	o := WrapOpaque(pattern, regexp.MustCompile("a+"))

	// The same object refuses to downcast as a different host type:
	// no silent reinterpretation.
	if _, ok := DowncastOpaque[*MatchData](o); ok {
		t.Error("downcast to a different type should fail")
	}
}

func TestDowncastOpaqueOnStructuredPayloadFails(t *testing.T) {
	r := NewVM()
	o := r.NewByteArray([]byte("x"))
	if _, ok := DowncastOpaque[*regexp.Regexp](o); ok {
		t.Error("downcast on a structured payload should fail")
	}
	if HasOpaque(o) {
		t.Error("structured payload should not report as opaque")
	}
	if !HasOpaque(WrapOpaque(r.ObjectClass, 1)) {
		t.Error("wrapped value should report as opaque")
	}
}

func TestMustDowncastOpaquePanicsOnMismatch(t *testing.T) {
	r := NewVM()
	pattern := r.CreateClass("Pattern", nil)
	o := WrapOpaque(pattern, regexp.MustCompile("a+"))

	defer func() {
		if recover() == nil {
			t.Error("MustDowncastOpaque on wrong type should panic")
		}
	}()
	MustDowncastOpaque[*MatchData](o)
}

// ---------------------------------------------------------------------------
// Host type registry tests
// ---------------------------------------------------------------------------

func TestHostTypeRegistry(t *testing.T) {
	r := NewVM()

	pattern := RegisterHostType[*regexp.Regexp](r, "Pattern")
	if pattern == nil {
		t.Fatal("RegisterHostType returned nil class")
	}
	if r.Classes.Lookup("Pattern") != pattern {
		t.Error("host type class should be registered in the class table")
	}

	// Registration is idempotent and the handle is stable.
	again := RegisterHostType[*regexp.Regexp](r, "Pattern")
	if again != pattern {
		t.Error("re-registration should return the same class handle")
	}

	rt := reflect.TypeOf((*regexp.Regexp)(nil))
	if r.HostTypes.ClassFor(rt) != pattern {
		t.Error("ClassFor should return the bound class")
	}
}

func TestWrapHost(t *testing.T) {
	r := NewVM()
	RegisterHostType[*regexp.Regexp](r, "Pattern")

	rx := regexp.MustCompile("x")
	o, err := r.WrapHost(rx)
	if err != nil {
		t.Fatalf("WrapHost: %v", err)
	}
	if o.ClassName() != "Pattern" {
		t.Errorf("class = %s, want Pattern", o.ClassName())
	}

	if _, err := r.WrapHost(struct{ unregistered bool }{}); err == nil {
		t.Error("WrapHost of an unregistered type should fail")
	}
}
