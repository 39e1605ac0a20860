package instr

import (
	"errors"
	"fmt"
)

// ErrMalformedProgram indicates the decoder found a byte sequence that does
// not correspond to any known opcode, or a payload truncated by the end of
// the program. This signals a compiler/VM mismatch: a well-formed program
// from a correct compiler never triggers it (spec §7).
var ErrMalformedProgram = errors.New("instr: malformed program")

// DecodeError wraps a decode failure with the offset at which it occurred,
// in the shape of the teacher's CompileError/BuildError (nfa/error.go): a
// sentinel plus enough context to find the offending byte.
type DecodeError struct {
	Offset int
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("instr: decode error at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
