package courseassets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Resolution maps extracted path candidates to canonical asset IDs.
// Candidates that matched zero or multiple stored assets are listed in
// Unresolved; they are a data-quality condition, not a failure.
type Resolution struct {
	// Assets maps each resolved candidate path to its asset ID. Two
	// candidates with the same file name map to the same asset.
	Assets map[string]uuid.UUID

	// Unresolved lists distinct candidates that did not resolve to
	// exactly one asset.
	Unresolved []string
}

// Resolver maps extracted path candidates to canonical asset
// identities through the asset catalog.
type Resolver struct {
	catalog AssetCatalog
}

// NewResolver creates a resolver backed by the given catalog.
func NewResolver(catalog AssetCatalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve looks up each distinct candidate by file name and returns the
// candidate-to-asset mapping. The catalog is queried once per distinct
// file name regardless of how often a candidate occurs; callers that
// need per-asset occurrence counts must count the original candidates
// themselves.
func (r *Resolver) Resolve(ctx context.Context, candidates []string) (*Resolution, error) {
	res := &Resolution{Assets: make(map[string]uuid.UUID)}

	// asset ID (or failure) per distinct file name
	byName := make(map[string]uuid.UUID)
	failed := make(map[string]bool)

	for _, candidate := range candidates {
		if _, seen := res.Assets[candidate]; seen {
			continue
		}
		name := FileName(candidate)
		if failed[name] {
			res.Unresolved = appendDistinct(res.Unresolved, candidate)
			continue
		}
		if id, ok := byName[name]; ok {
			res.Assets[candidate] = id
			continue
		}

		assets, err := r.catalog.FindByFileName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("asset lookup for %q: %w", name, err)
		}
		if len(assets) != 1 {
			failed[name] = true
			res.Unresolved = appendDistinct(res.Unresolved, candidate)
			continue
		}
		byName[name] = assets[0].ID
		res.Assets[candidate] = assets[0].ID
	}

	return res, nil
}

func appendDistinct(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
