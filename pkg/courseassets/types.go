package courseassets

import (
	"time"

	"github.com/google/uuid"
)

// ContentType values recognized by the reconciliation engine. Content
// items carry arbitrary types; only "course" changes engine behavior
// (a deleted course cascades over every reference link it owns).
const (
	ContentTypeCourse = "course"
)

// Asset is a stored file with a stable path. Assets are owned by the
// asset-storage collaborator; this library only reads them.
type Asset struct {
	ID   uuid.UUID `json:"id"`
	Path string    `json:"path"`
}

// ContentItem is a unit of course content as delivered by the
// content-management collaborator. Payload is the item's raw document
// and may embed asset paths anywhere within it. The library never
// mutates a ContentItem.
//
// For course-typed items the item's own ID serves as the course ID.
type ContentItem struct {
	ID       uuid.UUID      `json:"id"`
	CourseID uuid.UUID      `json:"course_id"`
	Type     string         `json:"type"`
	Payload  map[string]any `json:"payload"`
}

// EffectiveCourseID returns the course the item belongs to. A course
// item is its own course.
func (c ContentItem) EffectiveCourseID() uuid.UUID {
	if c.Type == ContentTypeCourse && c.CourseID == uuid.Nil {
		return c.ID
	}
	return c.CourseID
}

// ReferenceKey identifies one ledger row: one content item referencing
// one asset within one course.
type ReferenceKey struct {
	CourseID  uuid.UUID `json:"course_id"`
	ContentID uuid.UUID `json:"content_id"`
	AssetID   uuid.UUID `json:"asset_id"`
}

// ReferenceLink is a ledger row recording how many times one content
// item references one asset. ReferenceCount is always >= 1 while the
// row exists; a count reaching zero removes the row.
type ReferenceLink struct {
	ID             uuid.UUID `json:"id"`
	CourseID       uuid.UUID `json:"course_id"`
	ContentID      uuid.UUID `json:"content_id"`
	AssetID        uuid.UUID `json:"asset_id"`
	ReferenceCount int       `json:"reference_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Key returns the row's identifying triple.
func (l *ReferenceLink) Key() ReferenceKey {
	return ReferenceKey{CourseID: l.CourseID, ContentID: l.ContentID, AssetID: l.AssetID}
}

// AssetUsage summarizes how widely one asset is referenced.
type AssetUsage struct {
	AssetID     uuid.UUID `json:"asset_id"`
	Places      int64     `json:"places"`      // distinct content items referencing the asset
	Occurrences int64     `json:"occurrences"` // total embedded occurrences across those items
}

// ReconcileResult reports the outcome of reconciling one content item.
type ReconcileResult struct {
	CourseID   uuid.UUID `json:"course_id"`
	ContentID  uuid.UUID `json:"content_id"`
	Linked     int       `json:"linked"`   // asset links written (created or re-written)
	Removed    int       `json:"removed"`  // asset links removed by the diff
	Unresolved []string  `json:"unresolved,omitempty"` // path candidates that did not resolve to exactly one asset
}
