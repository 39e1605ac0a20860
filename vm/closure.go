package vm

import (
	"github.com/coregx/rxvm/instr"
	"github.com/coregx/rxvm/internal/conv"
	"github.com/coregx/rxvm/internal/sparse"
	"github.com/coregx/rxvm/loc"
)

// ClosureState is the epsilon closure engine's reusable scratch space: a
// LIFO stack of pending offsets, and a record of which split instructions
// have already been expanded during the current call. Both are emptied
// before Closure returns, so the same ClosureState can be reused across
// calls without reallocating (spec.md §3/§9, "buffer reuse").
type ClosureState struct {
	stack           []int
	processedSplits *sparse.SparseSet
}

// NewClosureState creates a ClosureState bounded by capacity, the maximum
// offset (exclusive) it will ever be asked to hold — in practice the
// program length.
func NewClosureState(capacity int) *ClosureState {
	return &ClosureState{
		stack:           make([]int, 0, capacity),
		processedSplits: sparse.NewSparseSet(conv.IntToUint32(capacity)),
	}
}

func (s *ClosureState) reset() {
	s.stack = s.stack[:0]
	s.processedSplits.Clear()
}

func (s *ClosureState) push(ip int) {
	s.stack = append(s.stack, ip)
}

func (s *ClosureState) pop() (int, bool) {
	n := len(s.stack)
	if n == 0 {
		return 0, false
	}
	ip := s.stack[n-1]
	s.stack = s.stack[:n-1]
	return ip, true
}

// markSplit records ip as processed. It returns true the first time ip is
// marked during a given call, and false on any later attempt — this is what
// bounds closure exploration in the presence of cyclic epsilon graphs
// (spec.md §4.2, §8 "closure termination").
func (s *ClosureState) markSplit(ip int) bool {
	if s.processedSplits.Contains(conv.IntToUint32(ip)) {
		return false
	}
	s.processedSplits.Insert(conv.IntToUint32(ip))
	return true
}

// Closure computes the epsilon closure reachable from start and appends the
// byte-consuming (or Match) offsets it finds into out, deduplicated against
// whatever out already contains. curr is the byte at the current scan
// position (None past the end of input); prev is the byte immediately
// preceding it in the scan direction (None at the scan origin).
//
// On return, state's internal buffers are empty (spec.md §8
// "scratch-state purity"), regardless of whether Closure returns an error.
func Closure(code []byte, start loc.Loc, curr, prev MaybeByte, state *ClosureState, out *ThreadSet) error {
	state.reset()
	state.push(start.Offset())

	for {
		ip, ok := state.pop()
		if !ok {
			break
		}

		in, size, err := instr.Decode(code, ip)
		if err != nil {
			state.reset()
			return err
		}
		next := ip + size

		switch {
		case in.ConsumesByte() || in.Op == instr.OpMatch:
			// Terminal case: closure does not step past a byte-consuming
			// instruction or a Match.
			out.Add(ip)

		case in.Op == instr.OpJump:
			state.push(ip + int(in.Offset))

		case in.Op == instr.OpSplitA:
			if state.markSplit(ip) {
				// Fallthrough explored first: pushed last onto the LIFO stack.
				state.push(ip + int(in.Offset))
				state.push(next)
			}

		case in.Op == instr.OpSplitB:
			if state.markSplit(ip) {
				// (ip+o) explored first: pushed last onto the LIFO stack.
				state.push(next)
				state.push(ip + int(in.Offset))
			}

		case in.Op == instr.OpSplitN:
			if state.markSplit(ip) {
				// Push in reverse so the first listed offset ends up on top.
				for i := len(in.Offsets) - 1; i >= 0; i-- {
					state.push(ip + int(in.Offsets[i]))
				}
			}

		case in.Op == instr.OpStart:
			atOrigin := (!start.Backwards() && !prev.Ok) || (start.Backwards() && !curr.Ok)
			if atOrigin {
				state.push(next)
			}

		case in.Op == instr.OpEnd:
			atTerminus := (!start.Backwards() && !curr.Ok) || (start.Backwards() && !prev.Ok)
			if atTerminus {
				state.push(next)
			}

		case in.Op == instr.OpWordBoundary:
			if isWordByte(prev) != isWordByte(curr) {
				state.push(next)
			}

		case in.Op == instr.OpWordBoundaryNeg:
			if isWordByte(prev) == isWordByte(curr) {
				state.push(next)
			}

		case in.Op == instr.OpEoi:
			// Thread dies: no action.
		}
	}

	state.reset()
	return nil
}
