package courseassets

import (
	"github.com/google/uuid"
)

// InsertReferenceRequest contains parameters for a direct
// single-reference insert, outside the content-event path.
type InsertReferenceRequest struct {
	CourseID  uuid.UUID `json:"course_id"`
	ContentID uuid.UUID `json:"content_id"`
	AssetID   uuid.UUID `json:"asset_id"`
}

// Validate checks that all identifying fields are present.
func (r InsertReferenceRequest) Validate() error {
	return validateKey(ReferenceKey(r))
}

// Key returns the ledger key for the request.
func (r InsertReferenceRequest) Key() ReferenceKey {
	return ReferenceKey(r)
}

// DeleteReferenceRequest contains parameters for a direct
// single-reference delete.
type DeleteReferenceRequest struct {
	CourseID  uuid.UUID `json:"course_id"`
	ContentID uuid.UUID `json:"content_id"`
	AssetID   uuid.UUID `json:"asset_id"`
}

// Validate checks that all identifying fields are present.
func (r DeleteReferenceRequest) Validate() error {
	return validateKey(ReferenceKey(r))
}

// Key returns the ledger key for the request.
func (r DeleteReferenceRequest) Key() ReferenceKey {
	return ReferenceKey(r)
}

func validateKey(key ReferenceKey) error {
	if key.CourseID == uuid.Nil {
		return &ValidationError{Field: "course_id"}
	}
	if key.ContentID == uuid.Nil {
		return &ValidationError{Field: "content_id"}
	}
	if key.AssetID == uuid.Nil {
		return &ValidationError{Field: "asset_id"}
	}
	return nil
}
