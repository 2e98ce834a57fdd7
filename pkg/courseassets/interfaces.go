package courseassets

import (
	"context"

	"github.com/google/uuid"
)

// Ledger defines the interface for reference-link persistence. Every
// mutation is atomic with respect to its own (courseID, contentID,
// assetID) key; callers never read-modify-write across two calls.
type Ledger interface {
	// SetReferenceCount upserts the row for key with the given count.
	// A count <= 0 deletes the row if present (no-op if absent). This
	// is the reconciliation engine's primary write primitive.
	SetReferenceCount(ctx context.Context, key ReferenceKey, count int) error

	// AdjustReferenceCount applies a relative delta atomically. A
	// positive delta creates the row if absent. A delta that takes the
	// count to zero or below deletes the row and returns (nil, nil).
	// A negative delta against an absent row returns ErrReferenceNotFound.
	// Used by the direct single-reference API, not by reconciliation.
	AdjustReferenceCount(ctx context.Context, key ReferenceKey, delta int) (*ReferenceLink, error)

	// GetReference returns the row for key, or ErrReferenceNotFound.
	GetReference(ctx context.Context, key ReferenceKey) (*ReferenceLink, error)

	// ListByContent returns all rows for one content item.
	ListByContent(ctx context.Context, courseID, contentID uuid.UUID) ([]*ReferenceLink, error)

	// ListByCourse returns all rows for one course.
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*ReferenceLink, error)

	// CountByAsset returns the number of distinct content items
	// referencing the asset.
	CountByAsset(ctx context.Context, assetID uuid.UUID) (int64, error)

	// SumByAsset returns the total embedded occurrences of the asset
	// across all content items.
	SumByAsset(ctx context.Context, assetID uuid.UUID) (int64, error)

	// DeleteByContent removes all rows for a content item and returns
	// the number removed.
	DeleteByContent(ctx context.Context, courseID, contentID uuid.UUID) (int64, error)

	// DeleteByCourse removes all rows for a course regardless of any
	// individual row's count, and returns the number removed.
	DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error)
}

// AssetCatalog defines the read-only view of the asset-storage
// collaborator that resolution and sweeping need.
type AssetCatalog interface {
	// FindByFileName returns all assets whose stored path matches the
	// given file name (last path segment). Zero or multiple matches are
	// a data-quality condition the caller handles, not an error here.
	FindByFileName(ctx context.Context, fileName string) ([]*Asset, error)

	// ListAssets pages through the catalog, most useful for sweeps.
	ListAssets(ctx context.Context, limit, offset int) ([]*Asset, error)
}

// AssetStore is the blob side of the asset-storage collaborator. Only
// the operations the orphan sweeper needs are required here; upload and
// download stay with the owning subsystem.
type AssetStore interface {
	// Exists reports whether a blob is present for the object key.
	Exists(ctx context.Context, objectKey string) (bool, error)

	// Delete removes the blob for the object key. Deleting an absent
	// key is not an error.
	Delete(ctx context.Context, objectKey string) error
}
