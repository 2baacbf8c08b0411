package vm

import (
	"fmt"
	"reflect"
	"sync"
)

// ---------------------------------------------------------------------------
// Structured payload borrows
// ---------------------------------------------------------------------------
//
// Structured payloads are mutable native values (byte buffers, lists,
// slice bounds). Aliasing is normal: the same object is often reachable
// from several guest names, so every accessor goes through a scoped
// borrow. Within the single execution context the rule is the usual one:
// any number of shared borrows, or exactly one exclusive borrow.
// Violations are contract violations in the core's own wiring and panic
// immediately rather than corrupting state silently.

// BorrowPayload acquires a shared borrow of the object's structured
// payload. The returned release func must run on every exit path;
// callers defer it immediately.
//
// Panics if the payload is not a *T: the core wires the correct payload
// type to the correct class at bootstrap, so a mismatch is a programming
// error, not a guest-visible condition.
func BorrowPayload[T any](o *Object) (*T, func()) {
	p, ok := o.payload.(*T)
	if !ok {
		panic(fmt.Sprintf("vm: %s payload is %T, want %T", o.ClassName(), o.payload, (*T)(nil)))
	}
	if o.borrow < 0 {
		panic(fmt.Sprintf("vm: %s payload already mutably borrowed", o.ClassName()))
	}
	o.borrow++
	released := false
	return p, func() {
		if released {
			return
		}
		released = true
		o.borrow--
	}
}

// BorrowPayloadMut acquires an exclusive borrow of the object's
// structured payload. Panics on type mismatch or if any borrow is
// already active.
func BorrowPayloadMut[T any](o *Object) (*T, func()) {
	p, ok := o.payload.(*T)
	if !ok {
		panic(fmt.Sprintf("vm: %s payload is %T, want %T", o.ClassName(), o.payload, (*T)(nil)))
	}
	if o.borrow != 0 {
		panic(fmt.Sprintf("vm: %s payload already borrowed", o.ClassName()))
	}
	o.borrow = -1
	released := false
	return p, func() {
		if released {
			return
		}
		released = true
		o.borrow = 0
	}
}

// ---------------------------------------------------------------------------
// Opaque payloads: type-erased host values
// ---------------------------------------------------------------------------
//
// An opaque payload embeds an arbitrary host value (a compiled regexp, a
// match result) as a dynamic object without defining a structured payload
// type for it. The value is tagged with its concrete type identity and
// recovered only by an identity-checked downcast; a class never implies a
// payload type without the tag agreeing.

// opaqueBox holds a host value together with its concrete type identity.
type opaqueBox struct {
	rtype reflect.Type
	value any
}

// WrapOpaque stores an arbitrary host value type-erased inside a new
// object of the given class.
func WrapOpaque(class *Class, value any) *Object {
	return NewObject(class, &opaqueBox{
		rtype: reflect.TypeOf(value),
		value: value,
	})
}

// DowncastOpaque recovers the host value from an opaque payload.
// It returns false unless the object carries an opaque payload whose
// stored type identity is exactly T. There is no partial or unsafe
// reinterpretation on the failure path.
//
// Callers that "know" the class implies the payload type must still treat
// a false return as a fatal internal-consistency error (see MustDowncastOpaque),
// never as undefined behavior.
func DowncastOpaque[T any](o *Object) (T, bool) {
	var zero T
	box, ok := o.payload.(*opaqueBox)
	if !ok {
		return zero, false
	}
	if box.rtype != reflect.TypeOf((*T)(nil)).Elem() {
		return zero, false
	}
	v, ok := box.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// MustDowncastOpaque is DowncastOpaque for call sites where the class is
// wired to the payload type by construction. A mismatch panics: it means
// a core invariant was violated, and masking it would only defer the
// failure somewhere less diagnosable.
func MustDowncastOpaque[T any](o *Object) T {
	v, ok := DowncastOpaque[T](o)
	if !ok {
		var zero T
		panic(fmt.Sprintf("vm: %s object does not carry a %T payload", o.ClassName(), zero))
	}
	return v
}

// HasOpaque reports whether the object carries any opaque payload.
func HasOpaque(o *Object) bool {
	_, ok := o.payload.(*opaqueBox)
	return ok
}

// ---------------------------------------------------------------------------
// HostTypeRegistry: host types ↔ stable class handles
// ---------------------------------------------------------------------------

// HostTypeInfo describes a registered host type and its Petal class.
type HostTypeInfo struct {
	Type  reflect.Type
	Class *Class
}

// HostTypeRegistry maps host Go types to Petal classes. Native extension
// modules register each host type once and capture the resulting class
// handle for the lifetime of the runtime, instead of re-resolving it
// through module state on every call.
// Thread-safe for concurrent registration and lookup.
type HostTypeRegistry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*HostTypeInfo
}

// NewHostTypeRegistry creates an empty host type registry.
func NewHostTypeRegistry() *HostTypeRegistry {
	return &HostTypeRegistry{
		byType: make(map[reflect.Type]*HostTypeInfo),
	}
}

// Register binds a host type to a class. Registering the same type again
// returns the existing binding.
func (r *HostTypeRegistry) Register(t reflect.Type, class *Class) *HostTypeInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.byType[t]; ok {
		return info
	}
	info := &HostTypeInfo{Type: t, Class: class}
	r.byType[t] = info
	return info
}

// ClassFor returns the class bound to a host type, or nil.
func (r *HostTypeRegistry) ClassFor(t reflect.Type) *Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if info, ok := r.byType[t]; ok {
		return info.Class
	}
	return nil
}

// Count returns the number of registered host types.
func (r *HostTypeRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byType)
}

// RegisterHostType binds the host type T to a class, creating the class
// under the root object class if it isn't registered yet, and returns the
// stable class handle.
func RegisterHostType[T any](r *VM, className string) *Class {
	t := reflect.TypeOf((*T)(nil)).Elem()

	if c := r.HostTypes.ClassFor(t); c != nil {
		return c
	}

	class := r.Classes.Lookup(className)
	if class == nil {
		class = r.CreateClass(className, r.ObjectClass)
	}
	r.HostTypes.Register(t, class)
	return class
}

// WrapHost wraps a host value whose type was registered via
// RegisterHostType. Returns an error for unregistered types.
func (r *VM) WrapHost(value any) (*Object, error) {
	t := reflect.TypeOf(value)
	class := r.HostTypes.ClassFor(t)
	if class == nil {
		return nil, fmt.Errorf("vm: host type %s not registered", t)
	}
	return WrapOpaque(class, value), nil
}
