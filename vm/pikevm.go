// Package vm implements the epsilon closure engine and the Pike VM executor
// that drives NFA simulation over a bytecode program (spec.md §4.2, §4.3).
package vm

import (
	"github.com/coregx/rxvm/instr"
	"github.com/coregx/rxvm/loc"
)

// DefaultScanLimit is the number of input bytes a PikeVM will consume
// before aborting a scan, absent an explicit WithScanLimit option.
const DefaultScanLimit = 4096

// Action is returned by a MatchFunc to tell the executor whether to keep
// looking for longer matches or stop immediately.
type Action int

const (
	// Continue tells the executor to keep scanning for further matches.
	Continue Action = iota
	// Stop tells the executor to return immediately; no further
	// callbacks are issued.
	Stop
)

// MatchFunc is called for every Match instruction the NFA reaches, with the
// position at which it is reached; a position where several distinct Match
// instructions are reached is reported once per instruction. n is the number
// of bytes consumed (0 for a zero-length match).
type MatchFunc func(n int) Action

// Option configures a PikeVM at construction time.
type Option func(*PikeVM)

// WithScanLimit overrides the default byte budget (spec.md §3/§6).
func WithScanLimit(n int) Option {
	return func(p *PikeVM) {
		p.scanLimit = n
	}
}

// PikeVM drives lock-step NFA simulation over a bytecode program: it reads
// one input byte at a time, steps every active thread, and maintains the
// at-most-one-thread-per-instruction invariant via two reused thread sets.
//
// A PikeVM is not safe for concurrent use; its thread sets and closure
// scratch state are owned exclusively by the single TryMatch call in
// progress (spec.md §5).
type PikeVM struct {
	code      []byte
	current   *ThreadSet
	next      *ThreadSet
	closure   *ClosureState
	scanLimit int
}

// New creates a PikeVM over code. code must outlive the PikeVM and must not
// be mutated while the PikeVM is in use (spec.md §3/§9: the program is an
// immutable, borrowed byte sequence).
func New(code []byte, opts ...Option) *PikeVM {
	capacity := len(code)
	if capacity == 0 {
		capacity = 1
	}
	p := &PikeVM{
		code:      code,
		current:   NewThreadSet(capacity),
		next:      NewThreadSet(capacity),
		closure:   NewClosureState(capacity),
		scanLimit: DefaultScanLimit,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TryMatch executes the program starting at start, reading bytes from fwd
// and (for look-behind assertions) bck, and calls onMatch for every
// position the NFA reaches a Match instruction. It reads at most
// scanLimit+1 bytes from fwd (the +1 is the one-byte look-ahead the
// lock-step design requires, spec.md §8).
//
// TryMatch requires its internal thread set to be empty on entry; this
// holds after every TryMatch call that runs to completion, so the only way
// to violate it is a concurrent or reentrant call on the same PikeVM, which
// TryMatch reports as ErrThreadsNotEmpty rather than silently producing
// wrong results (see SPEC_FULL.md §5 and the original's debug_assert).
func (p *PikeVM) TryMatch(start loc.Loc, fwd, bck ByteSeq, onMatch MatchFunc) error {
	if p.current.Len() != 0 {
		return ErrThreadsNotEmpty
	}

	pos := 0
	currByte := next(fwd)

	if err := Closure(p.code, start, currByte, next(bck), p.closure, p.current); err != nil {
		return err
	}

	for p.current.Len() > 0 {
		nextByte := next(fwd)

	threadLoop:
		for _, ip := range p.current.Offsets() {
			in, size, err := instr.Decode(p.code, ip)
			if err != nil {
				p.current.Reset()
				p.next.Reset()
				return err
			}

			switch {
			case in.ConsumesByte():
				if currByte.Ok && in.Matches(currByte.B) {
					at := start.At(ip + size)
					if err := Closure(p.code, at, nextByte, currByte, p.closure, p.next); err != nil {
						p.current.Reset()
						p.next.Reset()
						return err
					}
				}

			case in.Op == instr.OpMatch:
				if onMatch(pos) == Stop {
					p.current.Reset()
					p.next.Reset()
					return nil
				}

			case in.Op == instr.OpEoi:
				// Eoi terminates only the current per-thread step: the
				// original compiler's intent (spec.md §9 open question)
				// is that it signals "nothing follows this point in the
				// program", not "stop the whole scan".
				break threadLoop

			default:
				// Any other variant here is a malformed program: the
				// compiler would never emit a non-byte-consuming,
				// non-Match, non-Eoi instruction as a thread's resting
				// point. Well-formed programs never reach this case.
			}
		}

		currByte = nextByte
		pos++

		p.current, p.next = p.next, p.current
		p.next.Reset()

		if pos >= p.scanLimit {
			p.current.Reset()
			break
		}
	}

	return nil
}
