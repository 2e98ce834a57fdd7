package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/course-assets/pkg/courseassets"
)

// Ledger implements courseassets.Ledger using in-memory storage. All
// mutations run under one lock, which gives the per-triple atomicity
// the engine relies on.
type Ledger struct {
	mu    sync.RWMutex
	links map[courseassets.ReferenceKey]*courseassets.ReferenceLink
}

// NewLedger creates a new in-memory ledger
func NewLedger() *Ledger {
	return &Ledger{
		links: make(map[courseassets.ReferenceKey]*courseassets.ReferenceLink),
	}
}

func (l *Ledger) SetReferenceCount(ctx context.Context, key courseassets.ReferenceKey, count int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if count <= 0 {
		delete(l.links, key)
		return nil
	}

	now := time.Now().UTC()
	if existing, ok := l.links[key]; ok {
		existing.ReferenceCount = count
		existing.UpdatedAt = now
		return nil
	}

	l.links[key] = &courseassets.ReferenceLink{
		ID:             uuid.New(),
		CourseID:       key.CourseID,
		ContentID:      key.ContentID,
		AssetID:        key.AssetID,
		ReferenceCount: count,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return nil
}

func (l *Ledger) AdjustReferenceCount(ctx context.Context, key courseassets.ReferenceKey, delta int) (*courseassets.ReferenceLink, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	existing, ok := l.links[key]
	if !ok {
		if delta <= 0 {
			return nil, courseassets.ErrReferenceNotFound
		}
		now := time.Now().UTC()
		link := &courseassets.ReferenceLink{
			ID:             uuid.New(),
			CourseID:       key.CourseID,
			ContentID:      key.ContentID,
			AssetID:        key.AssetID,
			ReferenceCount: delta,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		l.links[key] = link
		linkCopy := *link
		return &linkCopy, nil
	}

	existing.ReferenceCount += delta
	if existing.ReferenceCount <= 0 {
		delete(l.links, key)
		return nil, nil
	}
	existing.UpdatedAt = time.Now().UTC()

	// Return a copy to prevent external modifications
	linkCopy := *existing
	return &linkCopy, nil
}

func (l *Ledger) GetReference(ctx context.Context, key courseassets.ReferenceKey) (*courseassets.ReferenceLink, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	link, ok := l.links[key]
	if !ok {
		return nil, courseassets.ErrReferenceNotFound
	}
	linkCopy := *link
	return &linkCopy, nil
}

func (l *Ledger) ListByContent(ctx context.Context, courseID, contentID uuid.UUID) ([]*courseassets.ReferenceLink, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*courseassets.ReferenceLink
	for _, link := range l.links {
		if link.CourseID == courseID && link.ContentID == contentID {
			linkCopy := *link
			result = append(result, &linkCopy)
		}
	}
	sortLinks(result)
	return result, nil
}

func (l *Ledger) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*courseassets.ReferenceLink, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*courseassets.ReferenceLink
	for _, link := range l.links {
		if link.CourseID == courseID {
			linkCopy := *link
			result = append(result, &linkCopy)
		}
	}
	sortLinks(result)
	return result, nil
}

func (l *Ledger) CountByAsset(ctx context.Context, assetID uuid.UUID) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var count int64
	for _, link := range l.links {
		if link.AssetID == assetID {
			count++
		}
	}
	return count, nil
}

func (l *Ledger) SumByAsset(ctx context.Context, assetID uuid.UUID) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var sum int64
	for _, link := range l.links {
		if link.AssetID == assetID {
			sum += int64(link.ReferenceCount)
		}
	}
	return sum, nil
}

func (l *Ledger) DeleteByContent(ctx context.Context, courseID, contentID uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int64
	for key, link := range l.links {
		if link.CourseID == courseID && link.ContentID == contentID {
			delete(l.links, key)
			removed++
		}
	}
	return removed, nil
}

func (l *Ledger) DeleteByCourse(ctx context.Context, courseID uuid.UUID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var removed int64
	for key, link := range l.links {
		if link.CourseID == courseID {
			delete(l.links, key)
			removed++
		}
	}
	return removed, nil
}

func sortLinks(links []*courseassets.ReferenceLink) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].ContentID != links[j].ContentID {
			return links[i].ContentID.String() < links[j].ContentID.String()
		}
		return links[i].AssetID.String() < links[j].AssetID.String()
	})
}
