package vm

import "sync"

// ---------------------------------------------------------------------------
// Class: Petal class representation
// ---------------------------------------------------------------------------

// Class is a node in the single-inheritance type hierarchy.
//
// The attribute table is mutable after creation: builtin classes are
// declared once during bootstrap and then populated incrementally by
// separate registration routines (BaseException gets __init__ from one
// call site, Exception gets __str__ from another). The inheritance
// topology itself is immutable once a class is created.
type Class struct {
	Name string
	Base *Class // nil only for the root object class

	mu    sync.RWMutex
	attrs map[string]*Object

	// Lazily created object-level view of this class (its class is "type").
	object *Object
}

// NewClass creates a new class with the given name and base class.
// The attribute table starts empty.
func NewClass(name string, base *Class) *Class {
	return &Class{
		Name:  name,
		Base:  base,
		attrs: make(map[string]*Object),
	}
}

// Extend inserts or overwrites an entry in this class's own attribute
// table. Last write wins. Inherited entries are shadowed, never deleted.
func (c *Class) Extend(name string, value *Object) {
	c.mu.Lock()
	c.attrs[name] = value
	c.mu.Unlock()
}

// OwnAttribute returns an entry from this class's own table only.
func (c *Class) OwnAttribute(name string) (*Object, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.attrs[name]
	return v, ok
}

// LookupAttribute walks from this class up through its bases and returns
// the first entry found, or false if the name is absent in the whole chain.
func (c *Class) LookupAttribute(name string) (*Object, bool) {
	for current := c; current != nil; current = current.Base {
		if v, ok := current.OwnAttribute(name); ok {
			return v, true
		}
	}
	return nil, false
}

// OwnAttributeNames returns the names defined directly on this class.
func (c *Class) OwnAttributeNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.attrs))
	for name := range c.attrs {
		names = append(names, name)
	}
	return names
}

// IsSubclassOf returns true if c is other or a descendant of other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for current := c; current != nil; current = current.Base {
		if current == other {
			return true
		}
	}
	return false
}

// Superclasses returns all base classes from immediate base to the root.
func (c *Class) Superclasses() []*Class {
	var result []*Class
	for current := c.Base; current != nil; current = current.Base {
		result = append(result, current)
	}
	return result
}

// Depth returns the inheritance depth (0 for the root class).
func (c *Class) Depth() int {
	depth := 0
	for current := c.Base; current != nil; current = current.Base {
		depth++
	}
	return depth
}

// String implements the Stringer interface.
func (c *Class) String() string {
	return c.Name
}

// ---------------------------------------------------------------------------
// ClassTable: Global class registry
// ---------------------------------------------------------------------------

// ClassTable manages registered classes by name.
// It's thread-safe for concurrent access. Classes are process-lifetime:
// there is no deletion and no re-parenting.
type ClassTable struct {
	mu      sync.RWMutex
	classes map[string]*Class
	order   []string
}

// NewClassTable creates a new empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		classes: make(map[string]*Class),
	}
}

// Register adds a class to the table.
// Returns the previous class with this name, or nil.
func (ct *ClassTable) Register(c *Class) *Class {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	old := ct.classes[c.Name]
	if old == nil {
		ct.order = append(ct.order, c.Name)
	}
	ct.classes[c.Name] = c
	return old
}

// Lookup finds a class by name.
func (ct *ClassTable) Lookup(name string) *Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.classes[name]
}

// Has returns true if a class with this name is registered.
func (ct *ClassTable) Has(name string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	_, ok := ct.classes[name]
	return ok
}

// All returns all registered classes in registration order.
func (ct *ClassTable) All() []*Class {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	result := make([]*Class, 0, len(ct.order))
	for _, name := range ct.order {
		result = append(result, ct.classes[name])
	}
	return result
}

// Len returns the number of registered classes.
func (ct *ClassTable) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.classes)
}
