package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/rvickery/gamedex/internal/domain"
)

// Store bundles the catalog repositories and the transactional boundary.
// Each mutation runs its reads and writes through one WithTx call so a
// replace-all reconciliation can never be observed half done.
type Store interface {
	Games() GameRepository
	Attributes() AttributeRepository
	Aliases() AliasRepository

	// WithTx runs fn against a store view scoped to a single transaction.
	WithTx(ctx context.Context, fn func(Store) error) error
}

// GameRepository defines the interface for entity table operations. Lookups
// report absence through the bool return; errors are infrastructure failures
// only.
type GameRepository interface {
	// Insert creates the row, or returns the existing row with inserted=false
	// when another writer already owns the normalized name.
	Insert(ctx context.Context, game domain.Game) (domain.Game, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Game, bool, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Game, error)
	GetByNormalizedName(ctx context.Context, name string) (domain.Game, bool, error)
	Update(ctx context.Context, game domain.Game) (domain.Game, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Keyset listings over entity indexes. afterID is the exclusive lower
	// bound; uuid.Nil starts from the beginning.
	ListAll(ctx context.Context, afterID uuid.UUID, limit int) ([]domain.Game, error)
	ListByDecade(ctx context.Context, decade int, afterID uuid.UUID, limit int) ([]domain.Game, error)
	ListByYear(ctx context.Context, year int, afterID uuid.UUID, limit int) ([]domain.Game, error)
	ListByField(ctx context.Context, field, value string, afterID uuid.UUID, limit int) ([]domain.Game, error)
	ListByFlag(ctx context.Context, field string, value bool, afterID uuid.UUID, limit int) ([]domain.Game, error)
	ListByRatingAtLeast(ctx context.Context, min float64, afterID uuid.UUID, limit int) ([]domain.Game, error)
	ListByPlaytimeAtMost(ctx context.Context, max float64, afterID uuid.UUID, limit int) ([]domain.Game, error)

	// Ranked full-text searches.
	SearchDisplayName(ctx context.Context, query string, limit int) ([]domain.Game, error)
	SearchNormalizedName(ctx context.Context, query string, limit int) ([]domain.Game, error)
	SearchByField(ctx context.Context, field, query string, limit int) ([]domain.Game, error)
}

// AttributeRepository owns the five join tables.
type AttributeRepository interface {
	Insert(ctx context.Context, attr domain.Attribute, gameID uuid.UUID, values []string, year, decade *int) error
	DeleteByGame(ctx context.Context, attr domain.Attribute, gameID uuid.UUID) error
	// UpdateEra refreshes the denormalized year/decade copies on rows that
	// survive an update untouched.
	UpdateEra(ctx context.Context, attr domain.Attribute, gameID uuid.UUID, year, decade *int) error
	ListByGame(ctx context.Context, attr domain.Attribute, gameID uuid.UUID) ([]domain.JoinRow, error)
	ListPage(ctx context.Context, attr domain.Attribute, value string, decade *int, afterID int64, limit int) ([]domain.JoinRow, error)
	// ListAll pages one join table in row-id order, for exports.
	ListAll(ctx context.Context, attr domain.Attribute, afterID int64, limit int) ([]domain.JoinRow, error)
}

// AliasRepository owns the alias table.
type AliasRepository interface {
	// Insert attaches an alias, skipping silently when the (game, alias)
	// pair already exists. The bool reports whether a row was written.
	Insert(ctx context.Context, gameID uuid.UUID, alias string, notes *string) (bool, error)
	DeleteByGame(ctx context.Context, gameID uuid.UUID) error
	ListByGame(ctx context.Context, gameID uuid.UUID) ([]domain.Alias, error)
	GameIDsByAlias(ctx context.Context, alias string) ([]uuid.UUID, error)
}
