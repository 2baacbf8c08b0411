package vm

// ---------------------------------------------------------------------------
// Slice primitives
// ---------------------------------------------------------------------------
//
// Slice stores a triple of optional integer bounds as a structured
// payload. start/stop/step are registered as properties: attribute
// access invokes the getter with the receiver, returning the bound or
// None when absent.

func (r *VM) registerSlicePrimitives() {
	sl := r.createClass("slice", r.ObjectClass)
	r.SliceClass = sl

	r.ExtendMethod(sl, &Builtin{
		Name:     "__new__",
		Required: []Param{{Name: "cls", Class: r.TypeClass}},
		Fn:       sliceNew,
	})

	r.ExtendProperty(sl, &Builtin{
		Name:     "start",
		Required: []Param{{Name: "self", Class: sl}},
		Fn:       sliceBoundGetter(func(s *SliceBounds) *int64 { return s.Start }),
	})
	r.ExtendProperty(sl, &Builtin{
		Name:     "stop",
		Required: []Param{{Name: "self", Class: sl}},
		Fn:       sliceBoundGetter(func(s *SliceBounds) *int64 { return s.Stop }),
	})
	r.ExtendProperty(sl, &Builtin{
		Name:     "step",
		Required: []Param{{Name: "self", Class: sl}},
		Fn:       sliceBoundGetter(func(s *SliceBounds) *int64 { return s.Step }),
	})
}

// sliceNew keeps the original constructor shape: with one extra argument
// it is the stop bound; with two or more they are start, stop and an
// optional step. All bounds must be integers.
func sliceNew(r *VM, b *BoundArgs) (*Object, error) {
	cls, ok := ClassFromObject(b.Arg(0))
	if !ok {
		return nil, r.NewTypeError("__new__() argument 'cls' must be a class")
	}

	bounds := &SliceBounds{}
	switch b.Len() {
	case 0, 1:
		return nil, r.NewTypeError("slice() must have at least one arguments.")
	case 2:
		stop, err := r.sliceBound(b.Arg(1), "stop")
		if err != nil {
			return nil, err
		}
		bounds.Stop = stop
	default:
		start, err := r.sliceBound(b.Arg(1), "start")
		if err != nil {
			return nil, err
		}
		stop, err := r.sliceBound(b.Arg(2), "stop")
		if err != nil {
			return nil, err
		}
		bounds.Start = start
		bounds.Stop = stop
		if b.Len() > 3 {
			step, err := r.sliceBound(b.Arg(3), "step")
			if err != nil {
				return nil, err
			}
			bounds.Step = step
		}
	}
	return NewObject(cls, bounds), nil
}

func (r *VM) sliceBound(o *Object, name string) (*int64, error) {
	v, ok := AsInt(o)
	if !ok {
		return nil, r.NewTypeError("slice() argument '%s' must be int, not %s", name, o.ClassName())
	}
	return &v, nil
}

func sliceBoundGetter(field func(*SliceBounds) *int64) BuiltinFunc {
	return func(r *VM, b *BoundArgs) (*Object, error) {
		bounds, release := BorrowPayload[SliceBounds](b.Arg(0))
		defer release()
		if v := field(bounds); v != nil {
			return r.NewInt(*v), nil
		}
		return r.None(), nil
	}
}
