package allocation

import "fmt"

// ErrorCode is a domain error code used by allocation validations.
type ErrorCode string

const (
	// ErrorInvalidRequest indicates a structurally malformed request.
	ErrorInvalidRequest ErrorCode = "0101"
	// ErrorInfeasibleAllocation indicates constraints that cannot reconcile to the total.
	ErrorInfeasibleAllocation ErrorCode = "0102"
	// ErrorUnallocatedTotal indicates leftover funds with no flexible recipient.
	ErrorUnallocatedTotal ErrorCode = "0103"
)

// DomainError represents a structured allocation domain validation error.
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

// Error returns the formatted domain error string.
func (e DomainError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
}

// NewDomainError creates a domain error with code, field, and message.
func NewDomainError(code ErrorCode, field, message string) error {
	return DomainError{Code: code, Field: field, Message: message}
}

// NoteCode classifies a non-fatal condition recorded on an outcome.
type NoteCode string

const (
	// NoteClampedValue indicates an amount was reduced to fit available funds or bounds.
	NoteClampedValue NoteCode = "CLAMPED_VALUE"
	// NoteRoundingAdjustment indicates drift was folded into a single entry.
	NoteRoundingAdjustment NoteCode = "ROUNDING_ADJUSTMENT"
)

// Note is an informational annotation on an outcome. Notes never fail a
// computation; callers decide whether a clamped or adjusted value is
// acceptable for their use case.
type Note struct {
	Code    NoteCode `json:"code"`
	Field   string   `json:"field,omitempty"`
	Message string   `json:"message"`
}

// String returns the formatted note string.
func (n Note) String() string {
	if n.Field == "" {
		return fmt.Sprintf("%s: %s", n.Code, n.Message)
	}

	return fmt.Sprintf("%s: %s (%s)", n.Code, n.Message, n.Field)
}
