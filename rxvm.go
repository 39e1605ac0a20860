// Package rxvm implements the execution core of a bytecode-driven NFA regex
// matcher: a Pike VM that simulates a multi-threaded NFA in lock-step over
// an input byte stream, reporting match positions through a caller-supplied
// callback and supporting look-around assertions (anchors and word
// boundaries) that need visibility into bytes preceding the scan origin.
//
// rxvm does not compile regex syntax into bytecode — that is the job of an
// external compiler, out of scope here (see SPEC_FULL.md §1). It consumes
// whatever program that compiler produces, via the instr package's decoder
// and Assembler, and executes it with the vm package's Pike VM.
//
// Basic usage:
//
//	prog := instr.NewAssembler()
//	prog.Byte('a')
//	prog.Match()
//	prog.Eoi()
//
//	m := rxvm.New(prog.Code())
//	err := m.Find(loc.Forward(0), []byte("a"), nil, func(n int) vm.Action {
//	    fmt.Println("matched", n, "bytes")
//	    return vm.Stop
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
package rxvm

import (
	"github.com/coregx/rxvm/loc"
	"github.com/coregx/rxvm/vm"
)

// Matcher is a thin, convenience wrapper around a vm.PikeVM bound to one
// program. Most callers that already have a loc.Loc and a pair of
// vm.ByteSeq values can use the vm package directly; Matcher exists for the
// common case of matching against plain byte slices.
type Matcher struct {
	pike *vm.PikeVM
}

// New creates a Matcher over code using the given options (for example
// vm.WithScanLimit). code must outlive the Matcher and must not be mutated
// while the Matcher is in use.
func New(code []byte, opts ...vm.Option) *Matcher {
	return &Matcher{pike: vm.New(code, opts...)}
}

// Find runs the program starting at start against fwd (the bytes from the
// scan origin onward) and bck (the bytes before the scan origin, in reverse
// physical order — see spec.md §6 for the fwd/bck
// convention), calling onMatch for every match position.
func (m *Matcher) Find(start loc.Loc, fwd, bck []byte, onMatch vm.MatchFunc) error {
	return m.pike.TryMatch(start, vm.ForwardBytes(fwd), vm.BackwardBytes(bck), onMatch)
}
