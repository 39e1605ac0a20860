package vm

import "errors"

// ErrThreadsNotEmpty indicates TryMatch was called while the executor's
// active-thread set was already non-empty, violating its precondition
// (spec.md §4.3; see DESIGN.md and SPEC_FULL.md §5).
var ErrThreadsNotEmpty = errors.New("vm: executor's thread set is not empty")
