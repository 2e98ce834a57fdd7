package courseassets

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrReferenceNotFound indicates no ledger row exists for the requested triple
	ErrReferenceNotFound = errors.New("reference not found")
)

// ValidationError indicates an event or direct-call payload is missing a
// required identifying field. It is rejected before any extraction or
// ledger work happens.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Field)
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// LedgerError represents a failed persistence operation on the
// reference ledger. It carries the triple and operation so failed
// reconciliations can be replayed.
type LedgerError struct {
	CourseID  uuid.UUID
	ContentID uuid.UUID
	AssetID   uuid.UUID
	Op        string
	Err       error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger operation %s failed for course %s content %s asset %s: %v",
		e.Op, e.CourseID, e.ContentID, e.AssetID, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}
