package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested event, waiver, document or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing, invalid or expired session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a uniqueness rule was violated,
	// e.g. a second signature by the same signer for the same event.
	ErrConflict = errors.New("conflict")

	// ErrAlreadySigned is the Conflict raised by the signing flow.
	ErrAlreadySigned = &ConflictError{Msg: "already signed"}

	// ErrInvalidInput indicates malformed or missing input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstream indicates a storage, parsing or identity provider failure.
	ErrUpstream = errors.New("upstream failure")

	// ErrNotConfigured indicates an optional collaborator (object storage,
	// OAuth provider) is not configured.
	ErrNotConfigured = errors.New("not configured")
)

// ConflictError carries a user-facing message and matches ErrConflict.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ValidationError describes which input failed validation. It matches ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Is reports whether target is ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
