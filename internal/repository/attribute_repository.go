package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rvickery/gamedex/internal/db"
	"github.com/rvickery/gamedex/internal/domain"
)

// joinTables maps each multi-valued attribute to its join table. All five
// tables share one layout, so a single repository serves them.
var joinTables = map[domain.Attribute]string{
	domain.AttributePlatform:        "game_platforms",
	domain.AttributeGenre:           "game_genres",
	domain.AttributeTag:             "game_tags",
	domain.AttributeMultiplayerMode: "game_multiplayer_modes",
	domain.AttributeInputMethod:     "game_input_methods",
}

type attributeRepository struct {
	db db.DBTX
}

func tableFor(attr domain.Attribute) (string, error) {
	table, ok := joinTables[attr]
	if !ok {
		return "", fmt.Errorf("unknown attribute %q", attr)
	}
	return table, nil
}

func (r *attributeRepository) Insert(ctx context.Context, attr domain.Attribute, gameID uuid.UUID, values []string, year, decade *int) error {
	table, err := tableFor(attr)
	if err != nil {
		return err
	}
	for _, value := range values {
		_, err := r.db.Exec(ctx, `
			INSERT INTO `+table+` (game_id, value, release_year, release_decade)
			VALUES ($1, $2, $3, $4)`,
			gameID, value, year, decade)
		if err != nil {
			return fmt.Errorf("insert %s row: %w", attr, err)
		}
	}
	return nil
}

func (r *attributeRepository) DeleteByGame(ctx context.Context, attr domain.Attribute, gameID uuid.UUID) error {
	table, err := tableFor(attr)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("delete %s rows: %w", attr, err)
	}
	return nil
}

func (r *attributeRepository) UpdateEra(ctx context.Context, attr domain.Attribute, gameID uuid.UUID, year, decade *int) error {
	table, err := tableFor(attr)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
		UPDATE `+table+` SET release_year = $2, release_decade = $3
		WHERE game_id = $1`,
		gameID, year, decade)
	if err != nil {
		return fmt.Errorf("update %s era: %w", attr, err)
	}
	return nil
}

func (r *attributeRepository) ListByGame(ctx context.Context, attr domain.Attribute, gameID uuid.UUID) ([]domain.JoinRow, error) {
	table, err := tableFor(attr)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, game_id, value, release_year, release_decade
		FROM `+table+` WHERE game_id = $1 ORDER BY id`,
		gameID)
	if err != nil {
		return nil, fmt.Errorf("list %s rows by game: %w", attr, err)
	}
	return collectJoinRows(rows, attr)
}

func (r *attributeRepository) ListAll(ctx context.Context, attr domain.Attribute, afterID int64, limit int) ([]domain.JoinRow, error) {
	table, err := tableFor(attr)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, game_id, value, release_year, release_decade
		FROM `+table+`
		WHERE id > $1
		ORDER BY id LIMIT $2`,
		afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s rows: %w", attr, err)
	}
	return collectJoinRows(rows, attr)
}

func (r *attributeRepository) ListPage(ctx context.Context, attr domain.Attribute, value string, decade *int, afterID int64, limit int) ([]domain.JoinRow, error) {
	table, err := tableFor(attr)
	if err != nil {
		return nil, err
	}

	var (
		sql  string
		args []any
	)
	if decade != nil {
		sql = `SELECT id, game_id, value, release_year, release_decade
			FROM ` + table + `
			WHERE value = $1 AND release_decade = $2 AND id > $3
			ORDER BY id LIMIT $4`
		args = []any{value, *decade, afterID, limit}
	} else {
		sql = `SELECT id, game_id, value, release_year, release_decade
			FROM ` + table + `
			WHERE value = $1 AND id > $2
			ORDER BY id LIMIT $3`
		args = []any{value, afterID, limit}
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s page: %w", attr, err)
	}
	return collectJoinRows(rows, attr)
}

func collectJoinRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Close()
	Err() error
}, attr domain.Attribute) ([]domain.JoinRow, error) {
	defer rows.Close()

	result := []domain.JoinRow{}
	for rows.Next() {
		var jr domain.JoinRow
		if err := rows.Scan(&jr.ID, &jr.GameID, &jr.Value, &jr.ReleaseYear, &jr.ReleaseDecade); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", attr, err)
		}
		result = append(result, jr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", attr, err)
	}
	return result, nil
}
