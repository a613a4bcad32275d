package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rvickery/gamedex/internal/db"
	"github.com/rvickery/gamedex/internal/domain"
)

type aliasRepository struct {
	db db.DBTX
}

func (r *aliasRepository) Insert(ctx context.Context, gameID uuid.UUID, alias string, notes *string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO game_aliases (game_id, alias, notes)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT game_aliases_game_alias_key DO NOTHING`,
		gameID, alias, notes)
	if err != nil {
		return false, fmt.Errorf("insert alias: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *aliasRepository) DeleteByGame(ctx context.Context, gameID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM game_aliases WHERE game_id = $1`, gameID); err != nil {
		return fmt.Errorf("delete aliases: %w", err)
	}
	return nil
}

func (r *aliasRepository) ListByGame(ctx context.Context, gameID uuid.UUID) ([]domain.Alias, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, game_id, alias, notes
		FROM game_aliases WHERE game_id = $1 ORDER BY id`,
		gameID)
	if err != nil {
		return nil, fmt.Errorf("list aliases by game: %w", err)
	}
	defer rows.Close()

	aliases := []domain.Alias{}
	for rows.Next() {
		var a domain.Alias
		if err := rows.Scan(&a.ID, &a.GameID, &a.Alias, &a.Notes); err != nil {
			return nil, fmt.Errorf("scan alias row: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alias rows: %w", err)
	}
	return aliases, nil
}

func (r *aliasRepository) GameIDsByAlias(ctx context.Context, alias string) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `
		SELECT game_id FROM game_aliases WHERE alias = $1 ORDER BY id`,
		alias)
	if err != nil {
		return nil, fmt.Errorf("find games by alias: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan alias game id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alias game ids: %w", err)
	}
	return ids, nil
}
