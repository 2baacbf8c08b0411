package vm

import "testing"

// ---------------------------------------------------------------------------
// Object cell tests
// ---------------------------------------------------------------------------

func TestNewObjectClassIsStable(t *testing.T) {
	r := NewVM()
	c := r.CreateClass("Thing", nil)

	o := NewObject(c, nil)
	if o.Class() != c {
		t.Error("Class() should return the construction class")
	}

	// The class stays the same across mutations of the instance.
	o.SetAttr("x", r.NewInt(1))
	if o.Class() != c {
		t.Error("Class() must not change after attribute mutation")
	}
}

func TestNewObjectNilClassPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewObject with nil class should panic")
		}
	}()
	NewObject(nil, nil)
}

func TestIsInstanceOf(t *testing.T) {
	r := NewVM()
	parent := r.CreateClass("Parent", nil)
	child := r.CreateClass("Child", parent)

	o := NewObject(child, nil)
	if !o.IsInstanceOf(child) {
		t.Error("object should be an instance of its own class")
	}
	if !o.IsInstanceOf(parent) {
		t.Error("object should be an instance of an ancestor class")
	}
	if !o.IsInstanceOf(r.ObjectClass) {
		t.Error("object should be an instance of the root class")
	}
	if o.IsInstanceOf(r.StrClass) {
		t.Error("object should not be an instance of an unrelated class")
	}
}

// ---------------------------------------------------------------------------
// Instance attribute tests
// ---------------------------------------------------------------------------

func TestInstanceAttributes(t *testing.T) {
	r := NewVM()
	o := NewObject(r.ObjectClass, nil)

	if _, ok := o.OwnAttr("x"); ok {
		t.Error("fresh object should have no attributes")
	}

	v := r.NewInt(42)
	o.SetAttr("x", v)
	got, ok := o.OwnAttr("x")
	if !ok || got != v {
		t.Error("OwnAttr should return the set value")
	}

	w := r.NewInt(43)
	o.SetAttr("x", w)
	if got, _ := o.OwnAttr("x"); got != w {
		t.Error("SetAttr should overwrite")
	}
}

func TestAliasingSeesMutations(t *testing.T) {
	r := NewVM()
	// Two guest names for one cell observe the same payload state.
	a := r.NewByteArray([]byte{1, 2})
	b := a

	buf, release := BorrowPayloadMut[ByteBuffer](a)
	buf.Bytes = append(buf.Bytes, 3)
	release()

	got, release := BorrowPayload[ByteBuffer](b)
	defer release()
	if len(got.Bytes) != 3 {
		t.Errorf("aliased view sees %d bytes, want 3", len(got.Bytes))
	}
}
