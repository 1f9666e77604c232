/*
errors.go - Error types for the reservation core

PURPOSE:
  All error types of the core in one place. The core has few failure modes
  by design: it trusts the ingestion boundary, and every pass over empty
  input returns empty structures instead of failing.

ERROR CATEGORIES:
  1. Construction errors - Malformed spans and rows at the boundary
  2. Resolution conditions - A group with no honorable primary, which
     callers treat as "no honored reservation", never as fatal

SEE ALSO:
  - types.go: Row construction uses these errors
  - resolve.go: Primary selection uses ErrNoPrimary
*/
package reserve

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidSpan is returned when an interval's end precedes its start.
	ErrInvalidSpan = errors.New("invalid span: end before start")

	// ErrNoPrimary is returned when a conflict group contains no member that
	// can be honored. Callers treat this as "no honored reservation in this
	// group", not as a failure.
	ErrNoPrimary = errors.New("conflict group has no primary")

	// ErrEmptyDataset is returned by storage when no batch has been loaded.
	ErrEmptyDataset = errors.New("no reservation dataset loaded")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownStatusError reports a status value outside the accepted set.
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown reservation status %q", e.Value)
}

// InvalidRowError reports a row the boundary could not convert.
type InvalidRowError struct {
	ID     string
	Reason string
}

func (e *InvalidRowError) Error() string {
	return fmt.Sprintf("invalid row %q: %s", e.ID, e.Reason)
}
