package vm

// ---------------------------------------------------------------------------
// Calling convention: native functions, parameters, argument binding
// ---------------------------------------------------------------------------
//
// Every native function callable from guest code receives the runtime
// handle plus an Args value: the positional argument list and the keyword
// argument mapping. The function declares required and optional
// parameters up front; the binder validates the call before the body
// runs, and validation failures travel down the same failure channel as
// every other guest error (a *Raised wrapping a TypeError).
//
// There is no special-casing of receivers: a method's receiver is simply
// its first declared required parameter, and a constructor's first
// argument is the target class object.

// Args carries the arguments of a single call.
type Args struct {
	Positional []*Object
	Keywords   map[string]*Object
}

// Param declares one parameter of a native function. A nil Class leaves
// the parameter unconstrained; otherwise the argument must be an
// instance of Class (or a descendant).
type Param struct {
	Name  string
	Class *Class
}

// BuiltinFunc is the body of a native function. It runs only after the
// binder has validated the call.
type BuiltinFunc func(r *VM, b *BoundArgs) (*Object, error)

// Builtin is a native function with its declared parameters.
type Builtin struct {
	Name     string
	Required []Param
	Optional []Param
	Fn       BuiltinFunc
}

// BoundArgs is a validated, destructured call. Binding never mutates the
// argument values; it only checks and indexes them.
type BoundArgs struct {
	fn   *Builtin
	args Args
}

// Arg returns the i-th positional argument. The binder has already
// guaranteed that every declared required index is present.
func (b *BoundArgs) Arg(i int) *Object {
	return b.args.Positional[i]
}

// Opt returns the optional parameter at the given index among the
// declared optionals, and whether the caller supplied it.
func (b *BoundArgs) Opt(i int) (*Object, bool) {
	pos := len(b.fn.Required) + i
	if pos >= len(b.args.Positional) {
		return nil, false
	}
	return b.args.Positional[pos], true
}

// Len returns the number of positional arguments supplied.
func (b *BoundArgs) Len() int {
	return len(b.args.Positional)
}

// All returns the full positional argument list. Surplus positionals
// beyond the declared parameters stay reachable here.
func (b *BoundArgs) All() []*Object {
	return b.args.Positional
}

// Keyword returns a keyword argument by name.
func (b *BoundArgs) Keyword(name string) (*Object, bool) {
	v, ok := b.args.Keywords[name]
	return v, ok
}

// ---------------------------------------------------------------------------
// Binding
// ---------------------------------------------------------------------------

// Invoke binds the supplied arguments against the declared parameters
// and runs the function body. Binding failures return a TypeError naming
// the function, the offending parameter and the expected class.
func (f *Builtin) Invoke(r *VM, args Args) (*Object, error) {
	if len(args.Positional) < len(f.Required) {
		return nil, r.NewTypeError("%s() takes at least %d arguments (%d given)",
			f.Name, len(f.Required), len(args.Positional))
	}
	for i, p := range f.Required {
		if err := f.checkParam(r, p, args.Positional[i]); err != nil {
			return nil, err
		}
	}
	for i, p := range f.Optional {
		pos := len(f.Required) + i
		if pos >= len(args.Positional) {
			break
		}
		if err := f.checkParam(r, p, args.Positional[pos]); err != nil {
			return nil, err
		}
	}
	return f.Fn(r, &BoundArgs{fn: f, args: args})
}

func (f *Builtin) checkParam(r *VM, p Param, arg *Object) error {
	if p.Class != nil && !arg.IsInstanceOf(p.Class) {
		return r.NewTypeError("%s() argument '%s' must be %s, not %s",
			f.Name, p.Name, p.Class.Name, arg.ClassName())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Callable objects
// ---------------------------------------------------------------------------

// Property marks a getter invoked by attribute access rather than by an
// explicit call. The getter declares the receiver as its only parameter.
type Property struct {
	Getter *Builtin
}

// boundMethod pairs a function with the receiver it was looked up on.
type boundMethod struct {
	fn       *Builtin
	receiver *Object
}

// NewFunction wraps a native function as a callable object.
func (r *VM) NewFunction(f *Builtin) *Object {
	return NewObject(r.FunctionClass, f)
}

// NewProperty wraps a getter as a property object. Attribute access on an
// instance invokes the getter with the instance as its sole argument.
func (r *VM) NewProperty(getter *Builtin) *Object {
	return NewObject(r.PropertyClass, &Property{Getter: getter})
}

// ClassObject returns the object-level view of a class (an object whose
// class is "type"). Created once per class and cached.
func (r *VM) ClassObject(c *Class) *Object {
	if c.object == nil {
		c.object = NewObject(r.TypeClass, c)
	}
	return c.object
}

// ClassFromObject recovers the class a class object stands for.
func ClassFromObject(o *Object) (*Class, bool) {
	c, ok := o.payload.(*Class)
	return c, ok
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// Call invokes a callable object: a native function, a bound method, or
// a class object (constructor path). Anything else is a TypeError.
func (r *VM) Call(callable *Object, args Args) (*Object, error) {
	switch p := callable.payload.(type) {
	case *Builtin:
		return p.Invoke(r, args)
	case *boundMethod:
		merged := Args{
			Positional: append([]*Object{p.receiver}, args.Positional...),
			Keywords:   args.Keywords,
		}
		return p.fn.Invoke(r, merged)
	case *Class:
		return r.Instantiate(p, args.Positional...)
	}
	return nil, r.NewTypeError("'%s' object is not callable", callable.ClassName())
}

// CallMethod looks a method up on the receiver's class chain and invokes
// it with the receiver prepended. Missing methods are an AttributeError.
func (r *VM) CallMethod(recv *Object, name string, args ...*Object) (*Object, error) {
	attr, ok := recv.class.LookupAttribute(name)
	if !ok {
		return nil, r.NewAttributeError("'%s' object has no attribute '%s'", recv.ClassName(), name)
	}
	return r.Call(attr, Args{Positional: append([]*Object{recv}, args...)})
}

// GetAttribute performs the full attribute lookup protocol: per-instance
// attributes first, then the class chain. A native function found on the
// chain is returned bound to the receiver; a property getter is invoked.
// An absent attribute is an AttributeError.
func (r *VM) GetAttribute(o *Object, name string) (*Object, error) {
	if v, ok := o.OwnAttr(name); ok {
		return v, nil
	}
	attr, ok := o.class.LookupAttribute(name)
	if !ok {
		return nil, r.NewAttributeError("'%s' object has no attribute '%s'", o.ClassName(), name)
	}
	switch p := attr.payload.(type) {
	case *Builtin:
		return NewObject(r.BoundMethodClass, &boundMethod{fn: p, receiver: o}), nil
	case *Property:
		return p.Getter.Invoke(r, Args{Positional: []*Object{o}})
	}
	return attr, nil
}

// Instantiate constructs an instance of a class: its inherited __new__
// receives the class object as first argument; without one a plain
// object with a nil payload is allocated. Any inherited __init__ then
// runs on the new instance with the remaining arguments.
func (r *VM) Instantiate(c *Class, args ...*Object) (*Object, error) {
	var instance *Object

	if newFn, ok := c.LookupAttribute("__new__"); ok {
		result, err := r.Call(newFn, Args{
			Positional: append([]*Object{r.ClassObject(c)}, args...),
		})
		if err != nil {
			return nil, err
		}
		instance = result
	} else {
		instance = NewObject(c, nil)
	}

	if initFn, ok := c.LookupAttribute("__init__"); ok {
		if _, err := r.Call(initFn, Args{
			Positional: append([]*Object{instance}, args...),
		}); err != nil {
			return nil, err
		}
	}
	return instance, nil
}
