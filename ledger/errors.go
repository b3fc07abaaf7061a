/*
errors.go - Centralized error types for the ledger

PURPOSE:
  Every ledger operation returns either a result or one of four error
  kinds. The presentation layer maps each kind to a message; the core
  never retries and never swallows.

ERROR CATEGORIES:
  1. Validation  - malformed, missing or out-of-range input (before any store call)
  2. Persistence - the store call failed (network, auth, constraint)
  3. Not found   - the targeted record does not exist for this actor
  4. Auth        - no authenticated actor for an operation that needs one

USAGE:
  Callers branch with errors.Is on the sentinels or errors.As on the
  structured types:

    var verr *ledger.ValidationError
    if errors.As(err, &verr) {
        highlight(verr.Field)
    }

SEE ALSO:
  - validate.go: produces ValidationError
  - service.go: wraps store failures into PersistenceError
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of every input validation failure.
	ErrValidation = errors.New("invalid transaction")

	// ErrPersistence is returned when the external store call failed.
	// The caller may retry by reissuing the same operation.
	ErrPersistence = errors.New("persistence failure")

	// ErrNotFound is returned when a record does not exist or is not visible
	// to the calling actor. Stores return it directly.
	ErrNotFound = errors.New("transaction not found")

	// ErrUnauthenticated is returned when no actor is bound to the call.
	ErrUnauthenticated = errors.New("no authenticated actor")

	// ErrSuperseded is returned by Refresh when a newer refresh for the same
	// actor was issued while this one was in flight. Its result is discarded.
	ErrSuperseded = errors.New("refresh superseded by a newer one")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// PersistenceError wraps a failed store call.
type PersistenceError struct {
	Op  string // insert, get, update, delete, query
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the underlying store error.
func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

type NotFoundError struct {
	ID TransactionID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

type AuthError struct {
	Op string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s requires an authenticated actor", e.Op)
}

func (e *AuthError) Unwrap() error {
	return ErrUnauthenticated
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if reissuing the same operation might succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsClientError returns true if the error is due to caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrUnauthenticated)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
