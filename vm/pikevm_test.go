package vm

import (
	"testing"

	"github.com/coregx/rxvm/instr"
	"github.com/coregx/rxvm/loc"
)

// compileLiteral builds a program matching exactly the given literal byte
// string, followed by Match, Eoi.
func compileLiteral(s string) []byte {
	a := instr.NewAssembler()
	for i := 0; i < len(s); i++ {
		a.Byte(s[i])
	}
	a.Match()
	a.Eoi()
	return a.Code()
}

// compileStar builds a program for `a*`: SplitA(fallthrough: consume 'a'
// then loop, offset: exit to Match), i.e. greedy star with priority given
// to repeating.
func compileStar(b byte) []byte {
	a := instr.NewAssembler()
	split := a.SplitA()
	byteIP := a.Byte(b)
	jumpIP := a.Jump()
	matchIP := a.Match()
	a.Eoi()
	a.PatchOffset(split, matchIP)
	a.PatchOffset(jumpIP, split)
	_ = byteIP
	return a.Code()
}

func TestTryMatchSimpleLiteral(t *testing.T) {
	code := compileLiteral("a")
	p := New(code)

	var calls []int
	err := p.TryMatch(loc.Forward(0), ForwardBytes([]byte("a")), BackwardBytes(nil), func(n int) Action {
		calls = append(calls, n)
		return Continue
	})
	if err != nil {
		t.Fatalf("TryMatch() error = %v", err)
	}
	if len(calls) != 1 || calls[0] != 1 {
		t.Errorf("calls = %v, want [1]", calls)
	}
}

func TestTryMatchStarQuantifier(t *testing.T) {
	code := compileStar('a')
	p := New(code)

	var calls []int
	err := p.TryMatch(loc.Forward(0), ForwardBytes([]byte("aaab")), BackwardBytes(nil), func(n int) Action {
		calls = append(calls, n)
		return Continue
	})
	if err != nil {
		t.Fatalf("TryMatch() error = %v", err)
	}

	want := []int{0, 1, 2, 3}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i, w := range want {
		if calls[i] != w {
			t.Errorf("calls[%d] = %d, want %d", i, calls[i], w)
		}
	}
}

func TestTryMatchScanLimitAborts(t *testing.T) {
	// foo.*bar, but we only need .* to never find "bar" within the limit:
	// SplitA(repeat AnyByte / exit) -> never reaches a "bar" match because
	// input has none; what matters is that TryMatch stops at scanLimit.
	a := instr.NewAssembler()
	split := a.SplitA()
	anyIP := a.AnyByte()
	jumpIP := a.Jump()
	exitIP := a.Match()
	a.Eoi()
	a.PatchOffset(split, exitIP)
	a.PatchOffset(jumpIP, split)
	_ = anyIP
	code := a.Code()

	input := make([]byte, 1000)
	for i := range input {
		input[i] = 'x'
	}

	p := New(code, WithScanLimit(16))
	calls := 0
	err := p.TryMatch(loc.Forward(0), ForwardBytes(input), BackwardBytes(nil), func(n int) Action {
		calls++
		return Continue
	})
	if err != nil {
		t.Fatalf("TryMatch() error = %v", err)
	}
	// Every position admits a zero-or-more-AnyByte match, so calls fire up
	// to the scan limit but no further.
	if calls > 17 {
		t.Errorf("calls = %d, want <= scanLimit+1 (17)", calls)
	}
}

func TestTryMatchStopPromptness(t *testing.T) {
	code := compileStar('a')
	p := New(code)

	var calls []int
	err := p.TryMatch(loc.Forward(0), ForwardBytes([]byte("aaaa")), BackwardBytes(nil), func(n int) Action {
		calls = append(calls, n)
		if n == 1 {
			return Stop
		}
		return Continue
	})
	if err != nil {
		t.Fatalf("TryMatch() error = %v", err)
	}
	if len(calls) != 2 || calls[0] != 0 || calls[1] != 1 {
		t.Errorf("calls = %v, want [0 1] (stop after second callback)", calls)
	}
}

func TestTryMatchWordBoundary(t *testing.T) {
	// \bcat\b
	a := instr.NewAssembler()
	a.WordBoundary()
	a.Byte('c')
	a.Byte('a')
	a.Byte('t')
	a.WordBoundary()
	a.Match()
	a.Eoi()
	code := a.Code()

	input := []byte("cat cats")

	var starts []int
	for start := 0; start < len(input); start++ {
		p := New(code)
		err := p.TryMatch(
			loc.Forward(0),
			ForwardBytes(input[start:]),
			BackwardBytes(input[:start]),
			func(n int) Action {
				if n == 3 {
					starts = append(starts, start)
				}
				return Stop
			},
		)
		if err != nil {
			t.Fatalf("TryMatch() error = %v", err)
		}
	}

	if len(starts) != 1 || starts[0] != 0 {
		t.Errorf("match starts = %v, want [0] (only the standalone \"cat\")", starts)
	}
}

func TestTryMatchStartAnchor(t *testing.T) {
	a := instr.NewAssembler()
	a.Start()
	a.Byte('a')
	a.Byte('b')
	a.Byte('c')
	a.Match()
	a.Eoi()
	code := a.Code()

	t.Run("empty bck: anchor satisfied", func(t *testing.T) {
		p := New(code)
		calls := 0
		err := p.TryMatch(loc.Forward(0), ForwardBytes([]byte("abc")), BackwardBytes(nil), func(n int) Action {
			calls++
			return Continue
		})
		if err != nil {
			t.Fatalf("TryMatch() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
	})

	t.Run("non-empty bck: anchor blocked", func(t *testing.T) {
		p := New(code)
		calls := 0
		err := p.TryMatch(loc.Forward(0), ForwardBytes([]byte("abc")), ForwardBytes([]byte("x")), func(n int) Action {
			calls++
			return Continue
		})
		if err != nil {
			t.Fatalf("TryMatch() error = %v", err)
		}
		if calls != 0 {
			t.Errorf("calls = %d, want 0", calls)
		}
	})
}

func TestTryMatchAlternationPriority(t *testing.T) {
	// (a|ab): SplitA with "a" as the fallthrough branch, "ab" as the
	// offset branch. On "ab", the shorter "a" match is reported first.
	a := instr.NewAssembler()
	split := a.SplitA()
	shortA := a.Byte('a')
	shortMatch := a.Match()
	jumpPastLong := a.Jump()
	longA := a.Byte('a')
	longB := a.Byte('b')
	longMatch := a.Match()
	a.Eoi()
	a.PatchOffset(split, longA)
	a.PatchOffset(jumpPastLong, longMatch+100) // unreachable target, never taken
	code := a.Code()
	_, _, _ = shortA, shortMatch, longB

	var calls []int
	p := New(code)
	err := p.TryMatch(loc.Forward(0), ForwardBytes([]byte("ab")), BackwardBytes(nil), func(n int) Action {
		calls = append(calls, n)
		return Continue
	})
	if err != nil {
		t.Fatalf("TryMatch() error = %v", err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("calls = %v, want [1 2] (short alternative reported first)", calls)
	}
}

func TestTryMatchPreconditionThreadsNotEmpty(t *testing.T) {
	code := compileLiteral("a")
	p := New(code)
	p.current.Add(0) // simulate a stuck thread set

	err := p.TryMatch(loc.Forward(0), ForwardBytes([]byte("a")), BackwardBytes(nil), func(n int) Action {
		return Continue
	})
	if err != ErrThreadsNotEmpty {
		t.Errorf("err = %v, want ErrThreadsNotEmpty", err)
	}
}
