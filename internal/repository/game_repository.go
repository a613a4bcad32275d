package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rvickery/gamedex/internal/db"
	"github.com/rvickery/gamedex/internal/domain"
)

// gameColumns is the canonical select list; scanGame must stay in sync.
const gameColumns = `id, display_name, normalized_name, summary, franchise, developer, publisher,
	age_rating, setting, perspective, world_type, price_model, story_focus,
	release_year, release_decade, playtime_hours, rating,
	has_microtransactions, is_vr, has_mods, requires_online, cross_platform,
	is_remake_or_remaster, is_dlc, procedurally_generated, parent_game_id,
	platforms, genre, tags, multiplayer_type, input_methods, created_at, updated_at`

// scalarColumns whitelists the exact-index listing targets. Field names reach
// the repository from the query engine, never from raw client input, but the
// whitelist keeps every SQL string static.
var scalarColumns = map[string]bool{
	"developer":   true,
	"publisher":   true,
	"franchise":   true,
	"price_model": true,
}

var flagColumns = map[string]bool{
	"has_microtransactions":  true,
	"is_vr":                  true,
	"has_mods":               true,
	"requires_online":        true,
	"cross_platform":         true,
	"is_remake_or_remaster":  true,
	"is_dlc":                 true,
	"procedurally_generated": true,
}

type gameRepository struct {
	db db.DBTX
}

func (r *gameRepository) Insert(ctx context.Context, game domain.Game) (domain.Game, bool, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO games (
			display_name, normalized_name, summary, franchise, developer, publisher,
			age_rating, setting, perspective, world_type, price_model, story_focus,
			release_year, release_decade, playtime_hours, rating,
			has_microtransactions, is_vr, has_mods, requires_online, cross_platform,
			is_remake_or_remaster, is_dlc, procedurally_generated, parent_game_id,
			platforms, genre, tags, multiplayer_type, input_methods, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32
		)
		ON CONFLICT ON CONSTRAINT games_normalized_name_key DO NOTHING
		RETURNING `+gameColumns,
		game.DisplayName, game.NormalizedName, game.Summary, game.Franchise,
		game.Developer, game.Publisher, game.AgeRating, game.Setting,
		game.Perspective, game.WorldType, game.PriceModel, game.StoryFocus,
		game.ReleaseYear, game.ReleaseDecade, game.PlaytimeHours, game.Rating,
		game.HasMicrotransactions, game.IsVR, game.HasMods, game.RequiresOnline,
		game.CrossPlatform, game.IsRemakeOrRemaster, game.IsDLC,
		game.ProcedurallyGenerated, game.ParentGameID,
		game.Platforms, game.Genres, game.Tags, game.MultiplayerModes,
		game.InputMethods, game.CreatedAt, game.UpdatedAt,
	)

	inserted, err := scanGame(row)
	if err == nil {
		return inserted, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, false, fmt.Errorf("insert game: %w", err)
	}

	// Conflict on normalized name: another writer won the race. Surface the
	// existing row so the caller can report the winner's identity.
	existing, found, err := r.GetByNormalizedName(ctx, game.NormalizedName)
	if err != nil {
		return domain.Game{}, false, err
	}
	if !found {
		return domain.Game{}, false, fmt.Errorf("insert game: conflict row vanished for %q", game.NormalizedName)
	}
	return existing, false, nil
}

func (r *gameRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Game, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	game, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, false, nil
	}
	if err != nil {
		return domain.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}
	return game, true, nil
}

func (r *gameRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Game, error) {
	if len(ids) == 0 {
		return []domain.Game{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get games by ids: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepository) GetByNormalizedName(ctx context.Context, name string) (domain.Game, bool, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE normalized_name = $1`, name)
	game, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Game{}, false, nil
	}
	if err != nil {
		return domain.Game{}, false, fmt.Errorf("get game by normalized name: %w", err)
	}
	return game, true, nil
}

func (r *gameRepository) Update(ctx context.Context, game domain.Game) (domain.Game, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE games SET
			display_name = $2, normalized_name = $3, summary = $4, franchise = $5,
			developer = $6, publisher = $7, age_rating = $8, setting = $9,
			perspective = $10, world_type = $11, price_model = $12, story_focus = $13,
			release_year = $14, release_decade = $15, playtime_hours = $16, rating = $17,
			has_microtransactions = $18, is_vr = $19, has_mods = $20, requires_online = $21,
			cross_platform = $22, is_remake_or_remaster = $23, is_dlc = $24,
			procedurally_generated = $25, parent_game_id = $26,
			platforms = $27, genre = $28, tags = $29, multiplayer_type = $30,
			input_methods = $31, updated_at = $32
		WHERE id = $1
		RETURNING `+gameColumns,
		game.ID, game.DisplayName, game.NormalizedName, game.Summary, game.Franchise,
		game.Developer, game.Publisher, game.AgeRating, game.Setting,
		game.Perspective, game.WorldType, game.PriceModel, game.StoryFocus,
		game.ReleaseYear, game.ReleaseDecade, game.PlaytimeHours, game.Rating,
		game.HasMicrotransactions, game.IsVR, game.HasMods, game.RequiresOnline,
		game.CrossPlatform, game.IsRemakeOrRemaster, game.IsDLC,
		game.ProcedurallyGenerated, game.ParentGameID,
		game.Platforms, game.Genres, game.Tags, game.MultiplayerModes,
		game.InputMethods, game.UpdatedAt,
	)
	updated, err := scanGame(row)
	if err != nil {
		return domain.Game{}, fmt.Errorf("update game: %w", err)
	}
	return updated, nil
}

func (r *gameRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM games WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	return nil
}

func (r *gameRepository) ListAll(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE id > $1
		ORDER BY id LIMIT $2`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepository) ListByDecade(ctx context.Context, decade int, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE release_decade = $1 AND id > $2
		ORDER BY id LIMIT $3`,
		decade, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games by decade: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepository) ListByYear(ctx context.Context, year int, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE release_year = $1 AND id > $2
		ORDER BY id LIMIT $3`,
		year, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games by year: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepository) ListByField(ctx context.Context, field, value string, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	if !scalarColumns[field] {
		return nil, fmt.Errorf("list games by field: unsupported field %q", field)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE `+field+` = $1 AND id > $2
		ORDER BY id LIMIT $3`,
		value, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games by %s: %w", field, err)
	}
	return collectGames(rows)
}

func (r *gameRepository) ListByFlag(ctx context.Context, field string, value bool, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	if !flagColumns[field] {
		return nil, fmt.Errorf("list games by flag: unsupported field %q", field)
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE `+field+` = $1 AND id > $2
		ORDER BY id LIMIT $3`,
		value, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games by %s: %w", field, err)
	}
	return collectGames(rows)
}

func (r *gameRepository) ListByRatingAtLeast(ctx context.Context, min float64, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE rating >= $1 AND id > $2
		ORDER BY id LIMIT $3`,
		min, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games by minimum rating: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepository) ListByPlaytimeAtMost(ctx context.Context, max float64, afterID uuid.UUID, limit int) ([]domain.Game, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE playtime_hours <= $1 AND id > $2
		ORDER BY id LIMIT $3`,
		max, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games by maximum playtime: %w", err)
	}
	return collectGames(rows)
}

func (r *gameRepository) SearchDisplayName(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	return r.searchColumn(ctx, "display_name", query, limit)
}

func (r *gameRepository) SearchNormalizedName(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	return r.searchColumn(ctx, "normalized_name", query, limit)
}

func (r *gameRepository) SearchByField(ctx context.Context, field, query string, limit int) ([]domain.Game, error) {
	if !scalarColumns[field] {
		return nil, fmt.Errorf("search games by field: unsupported field %q", field)
	}
	return r.searchColumn(ctx, "coalesce("+field+", '')", query, limit)
}

func (r *gameRepository) searchColumn(ctx context.Context, expr, query string, limit int) ([]domain.Game, error) {
	tsquery := PrefixTSQuery(query)
	if tsquery == "" {
		return []domain.Game{}, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+gameColumns+`
		FROM games, to_tsquery('simple', $1) q
		WHERE to_tsvector('simple', `+expr+`) @@ q
		ORDER BY ts_rank(to_tsvector('simple', `+expr+`), q) DESC, id
		LIMIT $2`,
		tsquery, limit)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	return collectGames(rows)
}

func collectGames(rows pgx.Rows) ([]domain.Game, error) {
	defer rows.Close()

	games := []domain.Game{}
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}
	return games, nil
}

func scanGame(row pgx.Row) (domain.Game, error) {
	var g domain.Game
	err := row.Scan(
		&g.ID, &g.DisplayName, &g.NormalizedName, &g.Summary, &g.Franchise,
		&g.Developer, &g.Publisher, &g.AgeRating, &g.Setting, &g.Perspective,
		&g.WorldType, &g.PriceModel, &g.StoryFocus,
		&g.ReleaseYear, &g.ReleaseDecade, &g.PlaytimeHours, &g.Rating,
		&g.HasMicrotransactions, &g.IsVR, &g.HasMods, &g.RequiresOnline,
		&g.CrossPlatform, &g.IsRemakeOrRemaster, &g.IsDLC,
		&g.ProcedurallyGenerated, &g.ParentGameID,
		&g.Platforms, &g.Genres, &g.Tags, &g.MultiplayerModes, &g.InputMethods,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return domain.Game{}, err
	}
	return g, nil
}
