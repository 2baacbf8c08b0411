// Petal CLI - boots the runtime, inspects the class hierarchy, and runs
// the builtin self-checks.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/petal-lang/petal/config"
	"github.com/petal-lang/petal/vm"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	classes := flag.Bool("classes", false, "Dump the bootstrapped class hierarchy")
	check := flag.Bool("check", false, "Run runtime self-checks")
	configDir := flag.String("config-dir", ".", "Directory containing petal.toml")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides petal.toml)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: petal [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  petal -classes   # Show the builtin class hierarchy\n")
		fmt.Fprintf(os.Stderr, "  petal -check     # Run self-checks\n")
	}
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	level := cfg.Runtime.Verbosity
	if *verbosity >= 0 {
		level = *verbosity
	}
	commonlog.Configure(level, nil)

	r := vm.NewVM()
	if cfg.Modules.Re {
		vm.RegisterReModule(r)
	}

	switch {
	case *classes:
		dumpClasses(r)
	case *check:
		if !runChecks(r) {
			os.Exit(1)
		}
	default:
		flag.Usage()
	}
}

// dumpClasses prints the class hierarchy, indented by inheritance depth.
func dumpClasses(r *vm.VM) {
	for _, c := range r.Classes.All() {
		indent := strings.Repeat("  ", c.Depth())
		base := ""
		if c.Base != nil {
			base = " (" + c.Base.Name + ")"
		}
		fmt.Printf("%s%s%s\n", indent, c.Name, base)
	}
}

// runChecks exercises the core paths end to end. A check that raises
// prints the exception through the top-level printer; the driver itself
// must never crash while reporting.
func runChecks(r *vm.VM) bool {
	ok := true
	for _, check := range []struct {
		name string
		fn   func(*vm.VM) error
	}{
		{"exception-round-trip", checkExceptionRoundTrip},
		{"bytearray-pop", checkByteArrayPop},
		{"slice-bounds", checkSliceBounds},
		{"regex-search", checkRegexSearch},
	} {
		if err := runCheck(r, check.fn); err != nil {
			ok = false
			fmt.Printf("FAIL %s\n", check.name)
			if raised, isRaised := err.(*vm.Raised); isRaised {
				r.PrintException(os.Stdout, raised.Exception)
			} else {
				fmt.Printf("  %v\n", err)
			}
		} else {
			fmt.Printf("ok   %s\n", check.name)
		}
	}
	return ok
}

func runCheck(r *vm.VM, fn func(*vm.VM) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("internal error: %v", p)
		}
	}()
	return fn(r)
}

func checkExceptionRoundTrip(r *vm.VM) error {
	exc, err := r.Instantiate(r.Exceptions.ValueError, r.NewStr("boom"))
	if err != nil {
		return err
	}
	s, err := r.Str(exc)
	if err != nil {
		return err
	}
	if s != "ValueError: boom" {
		return fmt.Errorf("exception str = %q, want %q", s, "ValueError: boom")
	}
	return nil
}

func checkByteArrayPop(r *vm.VM) error {
	ba := r.NewByteArray([]byte{7})
	result, err := r.CallMethod(ba, "pop")
	if err != nil {
		return err
	}
	if v, _ := vm.AsInt(result); v != 7 {
		return fmt.Errorf("pop = %v, want 7", result)
	}
	_, err = r.CallMethod(ba, "pop")
	if err == nil {
		return fmt.Errorf("pop on empty bytearray did not raise")
	}
	raised, isRaised := err.(*vm.Raised)
	if !isRaised || !raised.Exception.IsInstanceOf(r.Exceptions.IndexError) {
		return err
	}
	return nil
}

func checkSliceBounds(r *vm.VM) error {
	sl, err := r.Instantiate(r.SliceClass, r.NewInt(1), r.NewInt(10), r.NewInt(2))
	if err != nil {
		return err
	}
	start, err := r.GetAttribute(sl, "start")
	if err != nil {
		return err
	}
	if v, _ := vm.AsInt(start); v != 1 {
		return fmt.Errorf("slice start = %v, want 1", start)
	}
	return nil
}

func checkRegexSearch(r *vm.VM) error {
	re := vm.RegisterReModule(r)
	search, err := r.GetAttribute(re.Module, "search")
	if err != nil {
		return err
	}
	m, err := r.Call(search, vm.Args{Positional: []*vm.Object{
		r.NewStr("l+"), r.NewStr("hello"),
	}})
	if err != nil {
		return err
	}
	if r.IsNone(m) {
		return fmt.Errorf("search found no match")
	}
	start, err := r.CallMethod(m, "start")
	if err != nil {
		return err
	}
	if v, _ := vm.AsInt(start); v != 2 {
		return fmt.Errorf("match start = %v, want 2", start)
	}
	return nil
}
