package courseassets

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the course-assets library: the
// reconciliation engine driven by content lifecycle events, plus the
// direct reference operations the legacy routes expose.
type Service interface {
	// Direct reference operations
	InsertReference(ctx context.Context, req InsertReferenceRequest) (*ReferenceLink, error)
	DeleteReference(ctx context.Context, req DeleteReferenceRequest) error
	GetReferences(ctx context.Context, courseID, contentID uuid.UUID) ([]*ReferenceLink, error)
	ListCourseReferences(ctx context.Context, courseID uuid.UUID) ([]*ReferenceLink, error)
	AssetUsage(ctx context.Context, assetID uuid.UUID) (*AssetUsage, error)

	// Content lifecycle events
	ContentInserted(ctx context.Context, item ContentItem) (*ReconcileResult, error)
	ContentUpdated(ctx context.Context, previous, item ContentItem) (*ReconcileResult, error)
	ContentReplaced(ctx context.Context, previous, item ContentItem) (*ReconcileResult, error)
	ContentDeleted(ctx context.Context, items []ContentItem) error
}
