// Package vm implements the Petal object core: the uniform object
// representation, the single-inheritance class registry, structured and
// opaque payloads, the native-function calling convention, and the
// builtin exception hierarchy. Builtin type modules (bytearray, slice,
// re) are consumers of this core and live alongside it.
package vm

import (
	"github.com/tliron/commonlog"
)

// VM is the runtime handle threaded through every native call. One VM
// owns one independent class registry and object graph; embeddings that
// want several concurrent guest contexts create several VMs.
//
// The core is defined for a single logical execution context (one active
// call stack). The class tables are safe for concurrent registration,
// but structured payload borrows assume one mutator at a time per object.
type VM struct {
	Classes   *ClassTable
	HostTypes *HostTypeRegistry

	// Kernel class handles, wired at bootstrap.
	ObjectClass      *Class
	TypeClass        *Class
	FunctionClass    *Class
	BoundMethodClass *Class
	PropertyClass    *Class
	ModuleClass      *Class
	NoneClass        *Class
	BoolClass        *Class
	IntClass         *Class
	StrClass         *Class
	ListClass        *Class
	TupleClass       *Class
	ByteArrayClass   *Class
	SliceClass       *Class

	Exceptions ExceptionZoo

	none     *Object
	trueObj  *Object
	falseObj *Object

	log commonlog.Logger
}

// NewVM creates a runtime and bootstraps the builtin classes: the root
// object class, the kernel value classes, the exception hierarchy, and
// the builtin type modules. Classes are created first and populated with
// methods afterwards; nothing here is ever torn down.
func NewVM() *VM {
	r := &VM{
		Classes:   NewClassTable(),
		HostTypes: NewHostTypeRegistry(),
		log:       commonlog.GetLogger("petal.vm"),
	}

	// Root and metaclasses.
	r.ObjectClass = r.createClass("object", nil)
	r.TypeClass = r.createClass("type", r.ObjectClass)
	r.FunctionClass = r.createClass("builtin_function", r.ObjectClass)
	r.BoundMethodClass = r.createClass("bound_method", r.ObjectClass)
	r.PropertyClass = r.createClass("property", r.ObjectClass)
	r.ModuleClass = r.createClass("module", r.ObjectClass)

	// Kernel value classes.
	r.NoneClass = r.createClass("NoneType", r.ObjectClass)
	r.BoolClass = r.createClass("bool", r.ObjectClass)
	r.IntClass = r.createClass("int", r.ObjectClass)
	r.StrClass = r.createClass("str", r.ObjectClass)
	r.ListClass = r.createClass("list", r.ObjectClass)
	r.TupleClass = r.createClass("tuple", r.ObjectClass)

	r.none = NewObject(r.NoneClass, nil)
	r.trueObj = NewObject(r.BoolClass, &BoolPayload{Value: true})
	r.falseObj = NewObject(r.BoolClass, &BoolPayload{Value: false})

	// Exception hierarchy, then its methods (staged on purpose).
	r.bootstrapExceptionClasses()
	r.registerExceptionPrimitives()

	// Builtin type modules.
	r.registerByteArrayPrimitives()
	r.registerSlicePrimitives()

	r.log.Debugf("bootstrap complete: %d classes", r.Classes.Len())
	return r
}

// createClass allocates a class and registers it in the class table.
func (r *VM) createClass(name string, base *Class) *Class {
	c := NewClass(name, base)
	r.Classes.Register(c)
	return c
}

// CreateClass creates and registers a class under the given base. This
// is the registration entry point for builtin-module authors; the
// returned handle is stable for the life of the runtime.
func (r *VM) CreateClass(name string, base *Class) *Class {
	if base == nil {
		base = r.ObjectClass
	}
	c := r.createClass(name, base)
	r.log.Debugf("created class %s (base %s)", c.Name, base.Name)
	return c
}

// ExtendMethod attaches a native function to a class under the
// function's own name.
func (r *VM) ExtendMethod(c *Class, f *Builtin) {
	c.Extend(f.Name, r.NewFunction(f))
}

// ExtendProperty attaches a property getter to a class under the
// getter's own name.
func (r *VM) ExtendProperty(c *Class, getter *Builtin) {
	c.Extend(getter.Name, r.NewProperty(getter))
}

// NewModule creates a module object with the given name. Modules are
// plain objects whose members live in the instance attribute map.
func (r *VM) NewModule(name string) *Object {
	m := NewObject(r.ModuleClass, nil)
	m.SetAttr("__name__", r.NewStr(name))
	return m
}
