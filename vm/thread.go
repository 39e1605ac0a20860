package vm

import (
	"github.com/coregx/rxvm/internal/conv"
	"github.com/coregx/rxvm/internal/sparse"
)

// MaybeByte represents an input byte that may be absent — past the end of
// input, or before the scan origin when no preceding bytes were supplied.
// It plays the role of spec.md's `Option<&u8>`.
type MaybeByte struct {
	B  byte
	Ok bool
}

// Some wraps a present byte.
func Some(b byte) MaybeByte { return MaybeByte{B: b, Ok: true} }

// None is the absent byte, usable as a zero value.
var None MaybeByte

func isWordByte(m MaybeByte) bool {
	if !m.Ok {
		return false
	}
	b := m.B
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// ThreadSet is an ordered collection of program offsets with the invariant
// that no offset appears twice (spec.md §3/§8 "thread uniqueness"). It
// backs both the closure engine's output collection and the executor's
// current/next thread sets.
type ThreadSet struct {
	offsets []int
	seen    *sparse.SparseSet
}

// NewThreadSet creates a ThreadSet bounded by capacity, the maximum offset
// (exclusive) it will ever be asked to hold — in practice the program length.
func NewThreadSet(capacity int) *ThreadSet {
	return &ThreadSet{
		offsets: make([]int, 0, capacity),
		seen:    sparse.NewSparseSet(conv.IntToUint32(capacity)),
	}
}

// Reset empties the set in O(1) time, ready for reuse.
func (t *ThreadSet) Reset() {
	t.offsets = t.offsets[:0]
	t.seen.Clear()
}

// Contains reports whether ip is already in the set.
func (t *ThreadSet) Contains(ip int) bool {
	return t.seen.Contains(conv.IntToUint32(ip))
}

// Add appends ip to the set unless it is already present. Returns true if
// ip was newly added.
func (t *ThreadSet) Add(ip int) bool {
	if t.seen.Contains(conv.IntToUint32(ip)) {
		return false
	}
	t.seen.Insert(conv.IntToUint32(ip))
	t.offsets = append(t.offsets, ip)
	return true
}

// Offsets returns the set's members in insertion order. The returned slice
// is valid only until the next call to Reset or Add.
func (t *ThreadSet) Offsets() []int {
	return t.offsets
}

// Len returns the number of offsets currently in the set.
func (t *ThreadSet) Len() int {
	return len(t.offsets)
}
