package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/rvickery/gamedex/internal/domain"
	"github.com/rvickery/gamedex/internal/repository"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// QueryEngine is the catalog's read path. It owns the join-then-dereference
// listings, the merged name search and the exact-then-fuzzy fallback lookups;
// everything else is a direct index read.
type QueryEngine struct {
	store repository.Store
}

// NewQueryEngine creates the catalog's read path.
func NewQueryEngine(store repository.Store) *QueryEngine {
	return &QueryEngine{store: store}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// GameByID fetches one game by its opaque identity.
func (q *QueryEngine) GameByID(ctx context.Context, id string) (domain.Game, bool, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return domain.Game{}, false, nil
	}
	return q.store.Games().GetByID(ctx, parsed)
}

// GameByNormalizedName fetches one game by exact normalized name.
func (q *QueryEngine) GameByNormalizedName(ctx context.Context, name string) (domain.Game, bool, error) {
	return q.store.Games().GetByNormalizedName(ctx, name)
}

// SearchGamesByName merges two ranked full-text result sets: display-name
// hits first, then normalized-name-only hits. De-duplicated by identity and
// truncated to limit; the order is deliberately not a merged relevance
// ranking.
func (q *QueryEngine) SearchGamesByName(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	limit = clampLimit(limit)

	displayHits, err := q.store.Games().SearchDisplayName(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	normalizedHits, err := q.store.Games().SearchNormalizedName(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(displayHits))
	merged := make([]domain.Game, 0, len(displayHits)+len(normalizedHits))
	for _, g := range displayHits {
		if !seen[g.ID] {
			seen[g.ID] = true
			merged = append(merged, g)
		}
	}
	for _, g := range normalizedHits {
		if !seen[g.ID] {
			seen[g.ID] = true
			merged = append(merged, g)
		}
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// GamesByPlatform lists games carrying a platform value, optionally scoped
// to a decade.
func (q *QueryEngine) GamesByPlatform(ctx context.Context, platform string, decade *int, cursor string, limit int) (domain.GamePage, error) {
	return q.listByAttribute(ctx, domain.AttributePlatform, platform, decade, cursor, limit)
}

// GamesByGenre lists games carrying a genre value, optionally decade-scoped.
func (q *QueryEngine) GamesByGenre(ctx context.Context, genre string, decade *int, cursor string, limit int) (domain.GamePage, error) {
	return q.listByAttribute(ctx, domain.AttributeGenre, genre, decade, cursor, limit)
}

// GamesByTag lists games carrying a tag value, optionally decade-scoped.
func (q *QueryEngine) GamesByTag(ctx context.Context, tag string, decade *int, cursor string, limit int) (domain.GamePage, error) {
	return q.listByAttribute(ctx, domain.AttributeTag, tag, decade, cursor, limit)
}

// GamesByMultiplayerMode lists games carrying a multiplayer mode value.
func (q *QueryEngine) GamesByMultiplayerMode(ctx context.Context, mode string, decade *int, cursor string, limit int) (domain.GamePage, error) {
	return q.listByAttribute(ctx, domain.AttributeMultiplayerMode, mode, decade, cursor, limit)
}

// GamesByInputMethod lists games carrying an input method value.
func (q *QueryEngine) GamesByInputMethod(ctx context.Context, method string, decade *int, cursor string, limit int) (domain.GamePage, error) {
	return q.listByAttribute(ctx, domain.AttributeInputMethod, method, decade, cursor, limit)
}

// listByAttribute is the two-step join: paginate the join table, then
// dereference each row's game. References that no longer resolve are dropped
// silently; a game deleted between the two steps is tolerance, not an error.
func (q *QueryEngine) listByAttribute(ctx context.Context, attr domain.Attribute, value string, decade *int, cursor string, limit int) (domain.GamePage, error) {
	limit = clampLimit(limit)

	afterID, err := domain.DecodeRowCursor(cursor)
	if err != nil {
		return domain.GamePage{}, err
	}

	rows, err := q.store.Attributes().ListPage(ctx, attr, value, decade, afterID, limit)
	if err != nil {
		return domain.GamePage{}, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.GameID)
	}
	games, err := q.store.Games().GetByIDs(ctx, ids)
	if err != nil {
		return domain.GamePage{}, err
	}
	byID := make(map[uuid.UUID]domain.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	page := make([]domain.Game, 0, len(rows))
	for _, row := range rows {
		if g, ok := byID[row.GameID]; ok {
			page = append(page, g)
		}
	}

	if len(rows) < limit {
		return domain.GamePage{Games: page, IsDone: true}, nil
	}
	next := domain.EncodeRowCursor(rows[len(rows)-1].ID)
	return domain.GamePage{Games: page, ContinueCursor: &next, IsDone: false}, nil
}

// GamesByDecade lists games released within a decade bucket.
func (q *QueryEngine) GamesByDecade(ctx context.Context, decade int, cursor string, limit int) (domain.GamePage, error) {
	return q.listGames(ctx, cursor, limit, func(afterID uuid.UUID, limit int) ([]domain.Game, error) {
		return q.store.Games().ListByDecade(ctx, decade, afterID, limit)
	})
}

// GamesByYear lists games released in an exact year.
func (q *QueryEngine) GamesByYear(ctx context.Context, year int, cursor string, limit int) (domain.GamePage, error) {
	return q.listGames(ctx, cursor, limit, func(afterID uuid.UUID, limit int) ([]domain.Game, error) {
		return q.store.Games().ListByYear(ctx, year, afterID, limit)
	})
}

// GamesByPriceModel lists games with an exact price model value.
func (q *QueryEngine) GamesByPriceModel(ctx context.Context, priceModel string, cursor string, limit int) (domain.GamePage, error) {
	return q.listGames(ctx, cursor, limit, func(afterID uuid.UUID, limit int) ([]domain.Game, error) {
		return q.store.Games().ListByField(ctx, "price_model", priceModel, afterID, limit)
	})
}

// GamesByVR lists games by their VR flag.
func (q *QueryEngine) GamesByVR(ctx context.Context, isVR bool, cursor string, limit int) (domain.GamePage, error) {
	return q.listGames(ctx, cursor, limit, func(afterID uuid.UUID, limit int) ([]domain.Game, error) {
		return q.store.Games().ListByFlag(ctx, "is_vr", isVR, afterID, limit)
	})
}

// GamesByOnlineRequirement lists games by their online requirement flag.
func (q *QueryEngine) GamesByOnlineRequirement(ctx context.Context, requiresOnline bool, cursor string, limit int) (domain.GamePage, error) {
	return q.listGames(ctx, cursor, limit, func(afterID uuid.UUID, limit int) ([]domain.Game, error) {
		return q.store.Games().ListByFlag(ctx, "requires_online", requiresOnline, afterID, limit)
	})
}

// GamesByRatingAtLeast lists games with rating >= min.
func (q *QueryEngine) GamesByRatingAtLeast(ctx context.Context, min float64, cursor string, limit int) (domain.GamePage, error) {
	return q.listGames(ctx, cursor, limit, func(afterID uuid.UUID, limit int) ([]domain.Game, error) {
		return q.store.Games().ListByRatingAtLeast(ctx, min, afterID, limit)
	})
}

// GamesByPlaytimeAtMost lists games with playtime_hours <= max.
func (q *QueryEngine) GamesByPlaytimeAtMost(ctx context.Context, max float64, cursor string, limit int) (domain.GamePage, error) {
	return q.listGames(ctx, cursor, limit, func(afterID uuid.UUID, limit int) ([]domain.Game, error) {
		return q.store.Games().ListByPlaytimeAtMost(ctx, max, afterID, limit)
	})
}

// GamesByDeveloper lists games by exact developer; on a first page with zero
// exact rows it falls back to full-text over the same field as a terminal
// page. The two paths are never merged.
func (q *QueryEngine) GamesByDeveloper(ctx context.Context, developer string, cursor string, limit int) (domain.GamePage, error) {
	return q.listByFieldWithFallback(ctx, "developer", developer, cursor, limit)
}

// GamesByPublisher behaves like GamesByDeveloper over the publisher field.
func (q *QueryEngine) GamesByPublisher(ctx context.Context, publisher string, cursor string, limit int) (domain.GamePage, error) {
	return q.listByFieldWithFallback(ctx, "publisher", publisher, cursor, limit)
}

// GamesByFranchise behaves like GamesByDeveloper over the franchise field.
func (q *QueryEngine) GamesByFranchise(ctx context.Context, franchise string, cursor string, limit int) (domain.GamePage, error) {
	return q.listByFieldWithFallback(ctx, "franchise", franchise, cursor, limit)
}

func (q *QueryEngine) listByFieldWithFallback(ctx context.Context, field, value string, cursor string, limit int) (domain.GamePage, error) {
	limit = clampLimit(limit)

	afterID, err := domain.DecodeGameCursor(cursor)
	if err != nil {
		return domain.GamePage{}, err
	}

	games, err := q.store.Games().ListByField(ctx, field, value, afterID, limit)
	if err != nil {
		return domain.GamePage{}, err
	}

	// Fallback fires only when the exact index has nothing at all, not when
	// pagination naturally runs out.
	if len(games) == 0 && cursor == "" {
		fuzzy, err := q.store.Games().SearchByField(ctx, field, value, limit)
		if err != nil {
			return domain.GamePage{}, err
		}
		return domain.TerminalPage(fuzzy), nil
	}

	return buildGamePage(games, limit), nil
}

func (q *QueryEngine) listGames(ctx context.Context, cursor string, limit int, list func(afterID uuid.UUID, limit int) ([]domain.Game, error)) (domain.GamePage, error) {
	limit = clampLimit(limit)

	afterID, err := domain.DecodeGameCursor(cursor)
	if err != nil {
		return domain.GamePage{}, err
	}

	games, err := list(afterID, limit)
	if err != nil {
		return domain.GamePage{}, err
	}
	return buildGamePage(games, limit), nil
}

func buildGamePage(games []domain.Game, limit int) domain.GamePage {
	if len(games) < limit {
		return domain.GamePage{Games: games, IsDone: true}
	}
	next := domain.EncodeGameCursor(games[len(games)-1].ID)
	return domain.GamePage{Games: games, ContinueCursor: &next, IsDone: false}
}
