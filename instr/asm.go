package instr

import (
	"encoding/binary"

	"github.com/coregx/rxvm/internal/conv"
)

// Assembler builds a bytecode program incrementally, in the style of the
// teacher's low-level NFA builder (nfa/builder.go): each Add/emit method
// appends one instruction and returns the offset it was written at, so
// callers can patch jump/split targets once they know them.
//
// PatchOffset/PatchOffsets take absolute target offsets and store them
// relative to the instruction's own opcode byte, matching the decoder's
// contract (Decode's Offset fields are relative, not absolute).
type Assembler struct {
	code []byte
}

// NewAssembler creates an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{code: make([]byte, 0, 64)}
}

// Len returns the number of bytes emitted so far; this is the offset the
// next instruction will be written at.
func (a *Assembler) Len() int {
	return len(a.code)
}

// Code returns the assembled program. The returned slice aliases the
// Assembler's internal buffer and must not be mutated by the caller.
func (a *Assembler) Code() []byte {
	return a.code
}

func (a *Assembler) emitOp(op Op) int {
	ip := len(a.code)
	a.code = append(a.code, byte(op))
	return ip
}

// AnyByte emits an AnyByte instruction.
func (a *Assembler) AnyByte() int { return a.emitOp(OpAnyByte) }

// Byte emits a Byte instruction matching b exactly.
func (a *Assembler) Byte(b byte) int {
	ip := a.emitOp(OpByte)
	a.code = append(a.code, b)
	return ip
}

// MaskedByte emits a MaskedByte instruction matching x iff x&mask == b.
func (a *Assembler) MaskedByte(b, mask byte) int {
	ip := a.emitOp(OpMaskedByte)
	a.code = append(a.code, b, mask)
	return ip
}

// CaseInsensitiveChar emits an instruction matching x iff lowercase(x) == b.
// b must already be lowercase ASCII.
func (a *Assembler) CaseInsensitiveChar(b byte) int {
	ip := a.emitOp(OpCaseInsensitiveChar)
	a.code = append(a.code, b)
	return ip
}

// ClassBitmap emits a 256-bit membership class instruction.
func (a *Assembler) ClassBitmap(bitmap [32]byte) int {
	ip := a.emitOp(OpClassBitmap)
	a.code = append(a.code, bitmap[:]...)
	return ip
}

// ClassRanges emits a class instruction over a list of inclusive byte
// ranges. Panics if len(ranges) > 255 (the encoding's count is one byte).
func (a *Assembler) ClassRanges(ranges []ByteRange) int {
	if len(ranges) > 255 {
		panic("instr: too many ranges for ClassRanges (max 255)")
	}
	ip := a.emitOp(OpClassRanges)
	a.code = append(a.code, byte(len(ranges)))
	for _, r := range ranges {
		a.code = append(a.code, r.Lo, r.Hi)
	}
	return ip
}

// Match emits a Match instruction.
func (a *Assembler) Match() int { return a.emitOp(OpMatch) }

// Start emits a Start anchor instruction.
func (a *Assembler) Start() int { return a.emitOp(OpStart) }

// End emits an End anchor instruction.
func (a *Assembler) End() int { return a.emitOp(OpEnd) }

// WordBoundary emits a \b instruction.
func (a *Assembler) WordBoundary() int { return a.emitOp(OpWordBoundary) }

// WordBoundaryNeg emits a \B instruction.
func (a *Assembler) WordBoundaryNeg() int { return a.emitOp(OpWordBoundaryNeg) }

// Eoi emits the program terminator instruction.
func (a *Assembler) Eoi() int { return a.emitOp(OpEoi) }

// placeholderOffset reserves space for a 4-byte offset, returning the instruction's
// own offset so it can later be patched with PatchOffset.
func (a *Assembler) placeholderOffset(op Op) int {
	ip := a.emitOp(op)
	a.code = append(a.code, 0, 0, 0, 0)
	return ip
}

// SplitA emits a SplitA instruction with a zero placeholder offset; use
// PatchOffset(ip, target) once the target offset is known.
func (a *Assembler) SplitA() int { return a.placeholderOffset(OpSplitA) }

// SplitB emits a SplitB instruction with a zero placeholder offset; use
// PatchOffset(ip, target) once the target offset is known.
func (a *Assembler) SplitB() int { return a.placeholderOffset(OpSplitB) }

// Jump emits a Jump instruction with a zero placeholder offset; use
// PatchOffset(ip, target) once the target offset is known.
func (a *Assembler) Jump() int { return a.placeholderOffset(OpJump) }

// SplitN emits a SplitN instruction with n zeroed placeholder offsets, in
// priority order; use PatchOffsets(ip, targets) once the targets are known.
func (a *Assembler) SplitN(n int) int {
	ip := a.emitOp(OpSplitN)
	var countBuf [2]byte
	// conv.IntToUint16 panics on overflow instead of silently truncating a
	// branch count too large for the encoding's 2-byte field.
	binary.LittleEndian.PutUint16(countBuf[:], conv.IntToUint16(n))
	a.code = append(a.code, countBuf[:]...)
	for i := 0; i < n; i++ {
		a.code = append(a.code, 0, 0, 0, 0)
	}
	return ip
}

// PatchOffset writes the relative offset from a SplitA/SplitB/Jump
// instruction at ip to targetOffset.
func (a *Assembler) PatchOffset(ip, targetOffset int) {
	rel := int32(targetOffset - ip)
	binary.LittleEndian.PutUint32(a.code[ip+1:ip+5], uint32(rel))
}

// PatchOffsets writes the relative offsets for a SplitN instruction at ip.
// len(targets) must equal the count passed to SplitN.
func (a *Assembler) PatchOffsets(ip int, targets []int) {
	base := ip + 3 // opcode + 2-byte count
	for i, target := range targets {
		rel := int32(target - ip)
		off := base + i*4
		binary.LittleEndian.PutUint32(a.code[off:off+4], uint32(rel))
	}
}
