// Package catalogtest provides an in-memory repository.Store for tests. It
// mirrors the Postgres store's observable behavior: unique normalized names,
// conflict-skipping alias inserts, keyset ordering by identity, and a
// prefix-token approximation of full-text search.
package catalogtest

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/rvickery/gamedex/internal/domain"
	"github.com/rvickery/gamedex/internal/repository"
)

// Store is the fake. Fields are exported so tests can inspect raw state.
type Store struct {
	GamesByID map[uuid.UUID]domain.Game
	ByName    map[string]uuid.UUID
	Joins     map[domain.Attribute][]domain.JoinRow
	AliasRows []domain.Alias

	nextRowID int64
	nextAlias int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		GamesByID: map[uuid.UUID]domain.Game{},
		ByName:    map[string]uuid.UUID{},
		Joins:     map[domain.Attribute][]domain.JoinRow{},
	}
}

func (m *Store) Games() repository.GameRepository           { return (*memGames)(m) }
func (m *Store) Attributes() repository.AttributeRepository { return (*memAttributes)(m) }
func (m *Store) Aliases() repository.AliasRepository        { return (*memAliases)(m) }

func (m *Store) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

type memGames Store

func (m *memGames) Insert(ctx context.Context, game domain.Game) (domain.Game, bool, error) {
	if existingID, ok := m.ByName[game.NormalizedName]; ok {
		return m.GamesByID[existingID], false, nil
	}
	game.ID = uuid.New()
	m.GamesByID[game.ID] = game
	m.ByName[game.NormalizedName] = game.ID
	return game, true, nil
}

func (m *memGames) GetByID(ctx context.Context, id uuid.UUID) (domain.Game, bool, error) {
	g, ok := m.GamesByID[id]
	return g, ok, nil
}

func (m *memGames) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Game, error) {
	out := []domain.Game{}
	for _, id := range ids {
		if g, ok := m.GamesByID[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGames) GetByNormalizedName(ctx context.Context, name string) (domain.Game, bool, error) {
	id, ok := m.ByName[name]
	if !ok {
		return domain.Game{}, false, nil
	}
	return m.GamesByID[id], true, nil
}

func (m *memGames) Update(ctx context.Context, game domain.Game) (domain.Game, error) {
	old := m.GamesByID[game.ID]
	if old.NormalizedName != game.NormalizedName {
		delete(m.ByName, old.NormalizedName)
		m.ByName[game.NormalizedName] = game.ID
	}
	m.GamesByID[game.ID] = game
	return game, nil
}

func (m *memGames) Delete(ctx context.Context, id uuid.UUID) error {
	if g, ok := m.GamesByID[id]; ok {
		delete(m.ByName, g.NormalizedName)
		delete(m.GamesByID, id)
	}
	return nil
}

func (m *memGames) list(afterID uuid.UUID, limit int, match func(domain.Game) bool) []domain.Game {
	all := make([]domain.Game, 0, len(m.GamesByID))
	for _, g := range m.GamesByID {
		if match(g) {
			all = append(all, g)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return bytes.Compare(all[i].ID[:], all[j].ID[:]) < 0
	})
	out := []domain.Game{}
	for _, g := range all {
		if afterID != uuid.Nil && bytes.Compare(g.ID[:], afterID[:]) <= 0 {
			continue
		}
		out = append(out, g)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (m *memGames) ListAll(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	return m.list(afterID, limit, func(domain.Game) bool { return true }), nil
}

func (m *memGames) ListByDecade(ctx context.Context, decade int, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	return m.list(afterID, limit, func(g domain.Game) bool {
		return g.ReleaseDecade != nil && *g.ReleaseDecade == decade
	}), nil
}

func (m *memGames) ListByYear(ctx context.Context, year int, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	return m.list(afterID, limit, func(g domain.Game) bool {
		return g.ReleaseYear != nil && *g.ReleaseYear == year
	}), nil
}

func scalarField(g domain.Game, field string) *string {
	switch field {
	case "developer":
		return g.Developer
	case "publisher":
		return g.Publisher
	case "franchise":
		return g.Franchise
	case "price_model":
		return g.PriceModel
	}
	return nil
}

func (m *memGames) ListByField(ctx context.Context, field, value string, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	return m.list(afterID, limit, func(g domain.Game) bool {
		v := scalarField(g, field)
		return v != nil && *v == value
	}), nil
}

func (m *memGames) ListByFlag(ctx context.Context, field string, value bool, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	return m.list(afterID, limit, func(g domain.Game) bool {
		var v *bool
		switch field {
		case "is_vr":
			v = g.IsVR
		case "requires_online":
			v = g.RequiresOnline
		}
		return v != nil && *v == value
	}), nil
}

func (m *memGames) ListByRatingAtLeast(ctx context.Context, min float64, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	return m.list(afterID, limit, func(g domain.Game) bool {
		return g.Rating != nil && *g.Rating >= min
	}), nil
}

func (m *memGames) ListByPlaytimeAtMost(ctx context.Context, max float64, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	return m.list(afterID, limit, func(g domain.Game) bool {
		return g.PlaytimeHours != nil && *g.PlaytimeHours <= max
	}), nil
}

// searchText approximates prefix full-text matching: every query token must
// prefix-match some word of the target.
func searchText(target, query string) bool {
	words := strings.Fields(strings.ToLower(target))
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		matched := false
		for _, w := range words {
			if strings.HasPrefix(w, tok) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return len(query) > 0
}

func (m *memGames) search(limit int, text func(domain.Game) string, query string) []domain.Game {
	out := m.list(uuid.Nil, len(m.GamesByID), func(g domain.Game) bool {
		return searchText(text(g), query)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memGames) SearchDisplayName(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	return m.search(limit, func(g domain.Game) string { return g.DisplayName }, query), nil
}

func (m *memGames) SearchNormalizedName(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	return m.search(limit, func(g domain.Game) string { return g.NormalizedName }, query), nil
}

func (m *memGames) SearchByField(ctx context.Context, field, query string, limit int) ([]domain.Game, error) {
	return m.search(limit, func(g domain.Game) string {
		if v := scalarField(g, field); v != nil {
			return *v
		}
		return ""
	}, query), nil
}

type memAttributes Store

func (m *memAttributes) Insert(ctx context.Context, attr domain.Attribute, gameID uuid.UUID, values []string, year, decade *int) error {
	for _, v := range values {
		m.nextRowID++
		m.Joins[attr] = append(m.Joins[attr], domain.JoinRow{
			ID:            m.nextRowID,
			GameID:        gameID,
			Value:         v,
			ReleaseYear:   year,
			ReleaseDecade: decade,
		})
	}
	return nil
}

func (m *memAttributes) DeleteByGame(ctx context.Context, attr domain.Attribute, gameID uuid.UUID) error {
	kept := m.Joins[attr][:0]
	for _, row := range m.Joins[attr] {
		if row.GameID != gameID {
			kept = append(kept, row)
		}
	}
	m.Joins[attr] = kept
	return nil
}

func (m *memAttributes) UpdateEra(ctx context.Context, attr domain.Attribute, gameID uuid.UUID, year, decade *int) error {
	for i, row := range m.Joins[attr] {
		if row.GameID == gameID {
			m.Joins[attr][i].ReleaseYear = year
			m.Joins[attr][i].ReleaseDecade = decade
		}
	}
	return nil
}

func (m *memAttributes) ListByGame(ctx context.Context, attr domain.Attribute, gameID uuid.UUID) ([]domain.JoinRow, error) {
	out := []domain.JoinRow{}
	for _, row := range m.Joins[attr] {
		if row.GameID == gameID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memAttributes) ListAll(ctx context.Context, attr domain.Attribute, afterID int64, limit int) ([]domain.JoinRow, error) {
	out := []domain.JoinRow{}
	for _, row := range m.Joins[attr] {
		if row.ID <= afterID {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memAttributes) ListPage(ctx context.Context, attr domain.Attribute, value string, decade *int, afterID int64, limit int) ([]domain.JoinRow, error) {
	out := []domain.JoinRow{}
	for _, row := range m.Joins[attr] {
		if row.Value != value || row.ID <= afterID {
			continue
		}
		if decade != nil && (row.ReleaseDecade == nil || *row.ReleaseDecade != *decade) {
			continue
		}
		out = append(out, row)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memAliases Store

func (m *memAliases) Insert(ctx context.Context, gameID uuid.UUID, alias string, notes *string) (bool, error) {
	for _, a := range m.AliasRows {
		if a.GameID == gameID && a.Alias == alias {
			return false, nil
		}
	}
	m.nextAlias++
	m.AliasRows = append(m.AliasRows, domain.Alias{ID: m.nextAlias, GameID: gameID, Alias: alias, Notes: notes})
	return true, nil
}

func (m *memAliases) DeleteByGame(ctx context.Context, gameID uuid.UUID) error {
	kept := m.AliasRows[:0]
	for _, a := range m.AliasRows {
		if a.GameID != gameID {
			kept = append(kept, a)
		}
	}
	m.AliasRows = kept
	return nil
}

func (m *memAliases) ListByGame(ctx context.Context, gameID uuid.UUID) ([]domain.Alias, error) {
	out := []domain.Alias{}
	for _, a := range m.AliasRows {
		if a.GameID == gameID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAliases) GameIDsByAlias(ctx context.Context, alias string) ([]uuid.UUID, error) {
	out := []uuid.UUID{}
	for _, a := range m.AliasRows {
		if a.Alias == alias {
			out = append(out, a.GameID)
		}
	}
	return out, nil
}
