package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/rvickery/gamedex/internal/domain"
	"github.com/rvickery/gamedex/internal/repository"
)

// Resolver finds the canonical game for a name or identifier. Resolve is the
// strict path used by mutations; ResolveFuzzy adds the alias index and a
// single-hit full-text step for callers that can tolerate a wrong pick on
// ambiguous titles. Disambiguation belongs to the query engine's multi-hit
// search, not here.
type Resolver struct {
	store repository.Store
}

// NewResolver creates a resolver reading from the given store.
func NewResolver(store repository.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve looks up a game by ID or exact normalized name. Resolution order,
// first hit wins: ID reference, normalized_name equal to the raw input,
// normalized_name equal to the normalized input when that differs.
func (r *Resolver) Resolve(ctx context.Context, ref string) (domain.Game, bool, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return r.store.Games().GetByID(ctx, id)
	}

	game, found, err := r.store.Games().GetByNormalizedName(ctx, ref)
	if err != nil || found {
		return game, found, err
	}

	normalized := domain.NormalizeNameValue(ref)
	if normalized == ref {
		return domain.Game{}, false, nil
	}
	return r.store.Games().GetByNormalizedName(ctx, normalized)
}

// ResolveFuzzy extends Resolve with the alias index and, last, the top-ranked
// full-text hit over display names. The final step is inherently lossy.
func (r *Resolver) ResolveFuzzy(ctx context.Context, ref string) (domain.Game, bool, error) {
	game, found, err := r.Resolve(ctx, ref)
	if err != nil || found {
		return game, found, err
	}

	normalized := domain.NormalizeNameValue(ref)
	ids, err := r.store.Aliases().GameIDsByAlias(ctx, normalized)
	if err != nil {
		return domain.Game{}, false, err
	}
	if len(ids) > 0 {
		// An alias may point at several games; single-hit contract takes
		// the oldest attachment.
		game, found, err := r.store.Games().GetByID(ctx, ids[0])
		if err != nil || found {
			return game, found, err
		}
	}

	hits, err := r.store.Games().SearchDisplayName(ctx, ref, 1)
	if err != nil {
		return domain.Game{}, false, err
	}
	if len(hits) == 0 {
		return domain.Game{}, false, nil
	}
	return hits[0], true, nil
}
