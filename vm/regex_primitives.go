package vm

import (
	"regexp"
)

// ---------------------------------------------------------------------------
// re: regular expressions as a native extension module
// ---------------------------------------------------------------------------
//
// This module bolts two host concepts, a compiled *regexp.Regexp and a
// match result, onto the object system using only the opaque payload
// facility; it defines no structured payload types of its own. The
// Pattern and Match class handles are captured once at registration time
// and held by the module for the life of the runtime.

// MatchData records where a pattern matched inside the searched text.
type MatchData struct {
	Start int
	End   int
	Text  string
}

// ReModule holds the registered re module and its stable class handles.
type ReModule struct {
	Module       *Object
	PatternClass *Class
	MatchClass   *Class
}

// RegisterReModule builds the re module: Pattern and Match extension
// classes plus the compile/match/search module functions. Safe to call
// more than once; registration is idempotent.
func RegisterReModule(r *VM) *ReModule {
	pattern := RegisterHostType[*regexp.Regexp](r, "Pattern")
	match := RegisterHostType[*MatchData](r, "Match")
	re := &ReModule{PatternClass: pattern, MatchClass: match}

	r.ExtendMethod(pattern, &Builtin{
		Name:     "match",
		Required: []Param{{Name: "self", Class: pattern}, {Name: "string", Class: r.StrClass}},
		Fn:       re.patternMatch,
	})
	r.ExtendMethod(pattern, &Builtin{
		Name:     "search",
		Required: []Param{{Name: "self", Class: pattern}, {Name: "string", Class: r.StrClass}},
		Fn:       re.patternSearch,
	})

	r.ExtendMethod(match, &Builtin{
		Name:     "start",
		Required: []Param{{Name: "self", Class: match}},
		Fn: func(r *VM, b *BoundArgs) (*Object, error) {
			return r.NewInt(int64(MustDowncastOpaque[*MatchData](b.Arg(0)).Start)), nil
		},
	})
	r.ExtendMethod(match, &Builtin{
		Name:     "end",
		Required: []Param{{Name: "self", Class: match}},
		Fn: func(r *VM, b *BoundArgs) (*Object, error) {
			return r.NewInt(int64(MustDowncastOpaque[*MatchData](b.Arg(0)).End)), nil
		},
	})

	m := r.NewModule("re")
	m.SetAttr("Pattern", r.ClassObject(pattern))
	m.SetAttr("Match", r.ClassObject(match))
	m.SetAttr("compile", r.NewFunction(&Builtin{
		Name:     "compile",
		Required: []Param{{Name: "pattern", Class: r.StrClass}},
		Fn:       re.compile,
	}))
	m.SetAttr("match", r.NewFunction(&Builtin{
		Name:     "match",
		Required: []Param{{Name: "pattern", Class: r.StrClass}, {Name: "string", Class: r.StrClass}},
		Fn:       re.moduleMatch,
	}))
	m.SetAttr("search", r.NewFunction(&Builtin{
		Name:     "search",
		Required: []Param{{Name: "pattern", Class: r.StrClass}, {Name: "string", Class: r.StrClass}},
		Fn:       re.moduleSearch,
	}))
	re.Module = m
	return re
}

// compileRegex turns a pattern string object into a host regexp, or a
// ValueError for a malformed pattern.
func (re *ReModule) compileRegex(r *VM, pattern *Object) (*regexp.Regexp, error) {
	src, _ := AsStr(pattern)
	rx, err := regexp.Compile(src)
	if err != nil {
		return nil, r.NewValueError("Error in regex: %v", err)
	}
	return rx, nil
}

func (re *ReModule) compile(r *VM, b *BoundArgs) (*Object, error) {
	rx, err := re.compileRegex(r, b.Arg(0))
	if err != nil {
		return nil, err
	}
	return WrapOpaque(re.PatternClass, rx), nil
}

func (re *ReModule) moduleMatch(r *VM, b *BoundArgs) (*Object, error) {
	rx, err := re.compileRegex(r, b.Arg(0))
	if err != nil {
		return nil, err
	}
	text, _ := AsStr(b.Arg(1))
	return re.doMatch(r, rx, text), nil
}

func (re *ReModule) moduleSearch(r *VM, b *BoundArgs) (*Object, error) {
	rx, err := re.compileRegex(r, b.Arg(0))
	if err != nil {
		return nil, err
	}
	text, _ := AsStr(b.Arg(1))
	return re.doSearch(r, rx, text), nil
}

func (re *ReModule) patternMatch(r *VM, b *BoundArgs) (*Object, error) {
	rx := MustDowncastOpaque[*regexp.Regexp](b.Arg(0))
	text, _ := AsStr(b.Arg(1))
	return re.doMatch(r, rx, text), nil
}

func (re *ReModule) patternSearch(r *VM, b *BoundArgs) (*Object, error) {
	rx := MustDowncastOpaque[*regexp.Regexp](b.Arg(0))
	text, _ := AsStr(b.Arg(1))
	return re.doSearch(r, rx, text), nil
}

// doSearch finds the leftmost match anywhere in the text.
func (re *ReModule) doSearch(r *VM, rx *regexp.Regexp, text string) *Object {
	loc := rx.FindStringIndex(text)
	if loc == nil {
		return r.None()
	}
	return re.newMatch(text, loc)
}

// doMatch anchors at the start of the text: the leftmost match must
// begin at offset zero.
func (re *ReModule) doMatch(r *VM, rx *regexp.Regexp, text string) *Object {
	loc := rx.FindStringIndex(text)
	if loc == nil || loc[0] != 0 {
		return r.None()
	}
	return re.newMatch(text, loc)
}

func (re *ReModule) newMatch(text string, loc []int) *Object {
	return WrapOpaque(re.MatchClass, &MatchData{
		Start: loc[0],
		End:   loc[1],
		Text:  text[loc[0]:loc[1]],
	})
}
