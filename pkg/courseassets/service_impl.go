package courseassets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	ledger   Ledger
	catalog  AssetCatalog
	resolver *Resolver
	logger   *slog.Logger

	// itemLocks serializes reconciliation per (courseID, contentID) so
	// events for the same content item apply in arrival order. Events
	// for different items run concurrently; the ledger's per-triple
	// atomicity keeps that safe.
	itemLocks *keyedMutex
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithLedger sets the reference-link store for the service
func WithLedger(ledger Ledger) Option {
	return func(s *service) {
		s.ledger = ledger
	}
}

// WithAssetCatalog sets the asset-lookup collaborator for the service
func WithAssetCatalog(catalog AssetCatalog) Option {
	return func(s *service) {
		s.catalog = catalog
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		itemLocks: newKeyedMutex(),
	}

	for _, option := range options {
		option(s)
	}

	if s.ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if s.catalog == nil {
		return nil, fmt.Errorf("asset catalog is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.resolver = NewResolver(s.catalog)

	return s, nil
}

// Direct reference operations

func (s *service) InsertReference(ctx context.Context, req InsertReferenceRequest) (*ReferenceLink, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	link, err := s.ledger.AdjustReferenceCount(ctx, req.Key(), 1)
	if err != nil {
		return nil, s.ledgerError(req.Key(), "insert", err)
	}
	return link, nil
}

func (s *service) DeleteReference(ctx context.Context, req DeleteReferenceRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	_, err := s.ledger.AdjustReferenceCount(ctx, req.Key(), -1)
	if err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			return err
		}
		return s.ledgerError(req.Key(), "delete", err)
	}
	return nil
}

func (s *service) GetReferences(ctx context.Context, courseID, contentID uuid.UUID) ([]*ReferenceLink, error) {
	if courseID == uuid.Nil {
		return nil, &ValidationError{Field: "course_id"}
	}
	if contentID == uuid.Nil {
		return nil, &ValidationError{Field: "content_id"}
	}
	return s.ledger.ListByContent(ctx, courseID, contentID)
}

func (s *service) ListCourseReferences(ctx context.Context, courseID uuid.UUID) ([]*ReferenceLink, error) {
	if courseID == uuid.Nil {
		return nil, &ValidationError{Field: "course_id"}
	}
	return s.ledger.ListByCourse(ctx, courseID)
}

func (s *service) AssetUsage(ctx context.Context, assetID uuid.UUID) (*AssetUsage, error) {
	if assetID == uuid.Nil {
		return nil, &ValidationError{Field: "asset_id"}
	}

	places, err := s.ledger.CountByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	occurrences, err := s.ledger.SumByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return &AssetUsage{AssetID: assetID, Places: places, Occurrences: occurrences}, nil
}

// Content lifecycle events

func (s *service) ContentInserted(ctx context.Context, item ContentItem) (*ReconcileResult, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	unlock := s.lockItem(item)
	defer unlock()

	return s.applyTarget(ctx, item, false)
}

func (s *service) ContentUpdated(ctx context.Context, previous, item ContentItem) (*ReconcileResult, error) {
	if err := validateItem(item); err != nil {
		return nil, err
	}

	unlock := s.lockItem(item)
	defer unlock()

	return s.applyTarget(ctx, item, true)
}

func (s *service) ContentReplaced(ctx context.Context, previous, item ContentItem) (*ReconcileResult, error) {
	return s.ContentUpdated(ctx, previous, item)
}

func (s *service) ContentDeleted(ctx context.Context, items []ContentItem) error {
	var errs []error
	for _, item := range items {
		if err := s.deleteItem(ctx, item); err != nil {
			// Scoped to the failing item; the rest of the batch still
			// reconciles.
			s.logger.Error("content delete reconciliation failed",
				"course_id", item.EffectiveCourseID(),
				"content_id", item.ID,
				"error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *service) deleteItem(ctx context.Context, item ContentItem) error {
	if err := validateItem(item); err != nil {
		return err
	}
	courseID := item.EffectiveCourseID()

	if item.Type == ContentTypeCourse {
		// Cascade over every row in the course; per-item cleanup would
		// be redundant.
		if _, err := s.ledger.DeleteByCourse(ctx, courseID); err != nil {
			return s.ledgerError(ReferenceKey{CourseID: courseID}, "delete_course", err)
		}
		return nil
	}

	unlock := s.lockItem(item)
	defer unlock()

	if _, err := s.ledger.DeleteByContent(ctx, courseID, item.ID); err != nil {
		return s.ledgerError(ReferenceKey{CourseID: courseID, ContentID: item.ID}, "delete_content", err)
	}
	return nil
}

// applyTarget computes the item's target reference counts from its
// current payload and writes them as absolute values. When diff is set,
// rows for assets absent from the target are removed first. Writing
// absolute counts keeps reconciliation idempotent under at-least-once
// event delivery and safe to abandon midway: a crash leaves some rows
// stale, never double-counted.
func (s *service) applyTarget(ctx context.Context, item ContentItem, diff bool) (*ReconcileResult, error) {
	courseID := item.EffectiveCourseID()
	result := &ReconcileResult{CourseID: courseID, ContentID: item.ID}

	target, unresolved, err := s.targetCounts(ctx, item)
	if err != nil {
		return nil, err
	}
	result.Unresolved = unresolved
	for _, candidate := range unresolved {
		s.logger.Warn("asset reference did not resolve",
			"course_id", courseID,
			"content_id", item.ID,
			"path", candidate)
	}

	var errs []error

	if diff {
		existing, err := s.ledger.ListByContent(ctx, courseID, item.ID)
		if err != nil {
			return nil, s.ledgerError(ReferenceKey{CourseID: courseID, ContentID: item.ID}, "list", err)
		}
		for _, link := range existing {
			if _, keep := target[link.AssetID]; keep {
				continue
			}
			key := link.Key()
			if err := s.ledger.SetReferenceCount(ctx, key, 0); err != nil {
				errs = append(errs, s.ledgerError(key, "unlink", err))
				continue
			}
			result.Removed++
		}
	}

	for assetID, count := range target {
		key := ReferenceKey{CourseID: courseID, ContentID: item.ID, AssetID: assetID}
		if err := s.ledger.SetReferenceCount(ctx, key, count); err != nil {
			errs = append(errs, s.ledgerError(key, "link", err))
			continue
		}
		result.Linked++
	}

	return result, errors.Join(errs...)
}

// targetCounts extracts and resolves the item's payload, returning the
// occurrence count per resolved asset ID. Occurrences are counted over
// the original candidates, so a payload embedding the same asset twice
// yields a count of 2 even though resolution deduplicates lookups.
func (s *service) targetCounts(ctx context.Context, item ContentItem) (map[uuid.UUID]int, []string, error) {
	var candidates []string
	for p := range ExtractPaths(item.Payload) {
		candidates = append(candidates, p)
	}
	if len(candidates) == 0 {
		return nil, nil, nil
	}

	resolution, err := s.resolver.Resolve(ctx, candidates)
	if err != nil {
		return nil, nil, err
	}

	counts := make(map[uuid.UUID]int)
	for _, candidate := range candidates {
		if assetID, ok := resolution.Assets[candidate]; ok {
			counts[assetID]++
		}
	}
	return counts, resolution.Unresolved, nil
}

func (s *service) lockItem(item ContentItem) func() {
	return s.itemLocks.Lock(item.EffectiveCourseID().String() + "/" + item.ID.String())
}

func (s *service) ledgerError(key ReferenceKey, op string, err error) error {
	return &LedgerError{
		CourseID:  key.CourseID,
		ContentID: key.ContentID,
		AssetID:   key.AssetID,
		Op:        op,
		Err:       err,
	}
}

func validateItem(item ContentItem) error {
	if item.ID == uuid.Nil {
		return &ValidationError{Field: "id"}
	}
	if item.EffectiveCourseID() == uuid.Nil {
		return &ValidationError{Field: "course_id"}
	}
	return nil
}
