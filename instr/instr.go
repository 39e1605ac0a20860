// Package instr decodes the bytecode instruction set a Pike VM program is
// built from, and provides an Assembler for encoding one.
//
// The instruction set and its semantics are given in spec.md §3; the byte
// encoding below is this module's own (the compiler that would normally
// produce it is an external collaborator, out of scope here — see
// SPEC_FULL.md §6). Decode is pure and stateless: given a program and an
// offset it returns a decoded instruction and the number of bytes consumed,
// never mutating the program. Only payloads whose wire layout matches their
// decoded Go type exactly (ClassBitmap's 256-bit table) are borrowed
// directly from the program slice without copying; other variable-length
// fields (ClassRanges' []ByteRange, SplitN's []int32 offsets) are unpacked
// into a freshly allocated slice, since this module uses no unsafe
// anywhere, matching the teacher's own code.
package instr

import "encoding/binary"

// Op identifies which instruction variant a decoded Instr holds.
type Op uint8

// Opcode values. These are the only valid leading bytes of an instruction;
// any other byte is a malformed program.
const (
	OpAnyByte Op = iota
	OpByte
	OpMaskedByte
	OpCaseInsensitiveChar
	OpClassBitmap
	OpClassRanges
	OpMatch
	OpSplitA
	OpSplitB
	OpSplitN
	OpJump
	OpStart
	OpEnd
	OpWordBoundary
	OpWordBoundaryNeg
	OpEoi

	opCount // sentinel, not a real opcode
)

// ByteRange is one inclusive [Lo, Hi] range in a ClassRanges instruction.
type ByteRange struct {
	Lo, Hi byte
}

// Instr is a decoded instruction. Op determines which payload fields are
// meaningful; see the table in SPEC_FULL.md §6.
type Instr struct {
	Op Op

	// Byte, MaskedByte, CaseInsensitiveChar
	B, Mask byte

	// ClassBitmap: a 256-bit membership table, one bit per byte value.
	// Borrowed directly from the program.
	Bitmap *[32]byte

	// ClassRanges: inclusive byte ranges, unpacked into a freshly
	// allocated slice (the wire layout is a packed byte stream, not an
	// array of ByteRange, so this is a copy, not a borrow).
	Ranges []ByteRange

	// SplitA, SplitB, Jump: signed offset relative to this instruction's
	// own offset.
	Offset int32

	// SplitN: signed offsets relative to this instruction's own offset,
	// in priority order, unpacked into a freshly allocated slice (same
	// reason as Ranges above).
	Offsets []int32
}

// ConsumesByte reports whether this instruction variant blocks epsilon
// closure (it, and Match, are the terminal cases of §4.2's algorithm).
func (i Instr) ConsumesByte() bool {
	switch i.Op {
	case OpAnyByte, OpByte, OpMaskedByte, OpCaseInsensitiveChar, OpClassBitmap, OpClassRanges:
		return true
	default:
		return false
	}
}

// Matches reports whether the byte-consuming instruction i accepts b.
// Only meaningful when i.ConsumesByte() is true.
func (i Instr) Matches(b byte) bool {
	switch i.Op {
	case OpAnyByte:
		return true
	case OpByte:
		return b == i.B
	case OpMaskedByte:
		return b&i.Mask == i.B
	case OpCaseInsensitiveChar:
		return toASCIILower(b) == i.B
	case OpClassBitmap:
		return i.Bitmap[b>>3]&(1<<(b&7)) != 0
	case OpClassRanges:
		for _, r := range i.Ranges {
			if b >= r.Lo && b <= r.Hi {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func toASCIILower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Decode reads the instruction at code[ip:] and returns it along with the
// number of bytes consumed. It fails only if the program is malformed
// (unknown opcode, or a payload truncated by the end of the program).
func Decode(code []byte, ip int) (Instr, int, error) {
	if ip < 0 || ip >= len(code) {
		return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
	}

	op := Op(code[ip])
	rest := code[ip+1:]

	switch op {
	case OpAnyByte, OpMatch, OpStart, OpEnd, OpWordBoundary, OpWordBoundaryNeg, OpEoi:
		return Instr{Op: op}, 1, nil

	case OpByte:
		if len(rest) < 1 {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		return Instr{Op: op, B: rest[0]}, 2, nil

	case OpMaskedByte:
		if len(rest) < 2 {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		return Instr{Op: op, B: rest[0], Mask: rest[1]}, 3, nil

	case OpCaseInsensitiveChar:
		if len(rest) < 1 {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		return Instr{Op: op, B: rest[0]}, 2, nil

	case OpClassBitmap:
		if len(rest) < 32 {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		bitmap := (*[32]byte)(rest[:32])
		return Instr{Op: op, Bitmap: bitmap}, 33, nil

	case OpClassRanges:
		if len(rest) < 1 {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		n := int(rest[0])
		need := 1 + n*2
		if len(rest) < need {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		ranges := make([]ByteRange, n)
		p := rest[1:]
		for i := 0; i < n; i++ {
			ranges[i] = ByteRange{Lo: p[i*2], Hi: p[i*2+1]}
		}
		return Instr{Op: op, Ranges: ranges}, 1 + need, nil

	case OpSplitA, OpSplitB, OpJump:
		if len(rest) < 4 {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		off := int32(binary.LittleEndian.Uint32(rest[:4]))
		return Instr{Op: op, Offset: off}, 5, nil

	case OpSplitN:
		if len(rest) < 2 {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		n := int(binary.LittleEndian.Uint16(rest[:2]))
		need := 2 + n*4
		if len(rest) < need {
			return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
		}
		offsets := make([]int32, n)
		p := rest[2:]
		for i := 0; i < n; i++ {
			offsets[i] = int32(binary.LittleEndian.Uint32(p[i*4 : i*4+4]))
		}
		return Instr{Op: op, Offsets: offsets}, 1 + need, nil

	default:
		return Instr{}, 0, &DecodeError{Offset: ip, Err: ErrMalformedProgram}
	}
}
