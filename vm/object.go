package vm

// Object is the universal runtime representation of a Petal value:
// a class reference plus a payload.
//
// The class reference is established at construction and never changes;
// re-parenting an object is not supported. The payload is either a
// structured payload (a native Go struct whose shape the class knows
// about, e.g. *ByteBuffer for ByteArray) or an opaque host value wrapped
// by WrapOpaque. Objects with neither hold a nil payload.
//
// Guest-defined attributes live in a lazily allocated per-instance map.
// Sharing is by ordinary Go pointer: every holder sees the same cell,
// and mutation of payload state goes through the scoped borrows in
// payload.go so that aliased access stays coherent.
type Object struct {
	class   *Class
	payload any
	borrow  int32 // 0 free, >0 reader count, -1 exclusive writer
	attrs   map[string]*Object
}

// NewObject creates a new object of the given class with the given
// payload. Construction always succeeds; class must not be nil.
func NewObject(class *Class, payload any) *Object {
	if class == nil {
		panic("vm: NewObject with nil class")
	}
	return &Object{class: class, payload: payload}
}

// Class returns the object's class. Never nil.
func (o *Object) Class() *Class {
	return o.class
}

// ClassName returns the name of the object's class.
func (o *Object) ClassName() string {
	return o.class.Name
}

// IsInstanceOf returns true if the object's class is class or a
// descendant of class.
func (o *Object) IsInstanceOf(class *Class) bool {
	return o.class.IsSubclassOf(class)
}

// ---------------------------------------------------------------------------
// Instance attributes
// ---------------------------------------------------------------------------

// SetAttr sets a per-instance attribute. Last write wins.
func (o *Object) SetAttr(name string, value *Object) {
	if o.attrs == nil {
		o.attrs = make(map[string]*Object)
	}
	o.attrs[name] = value
}

// OwnAttr returns a per-instance attribute, without consulting the class
// chain.
func (o *Object) OwnAttr(name string) (*Object, bool) {
	v, ok := o.attrs[name]
	return v, ok
}

// OwnAttrNames returns the names of all per-instance attributes.
func (o *Object) OwnAttrNames() []string {
	names := make([]string, 0, len(o.attrs))
	for name := range o.attrs {
		names = append(names, name)
	}
	return names
}
