package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rvickery/gamedex/internal/db"
)

// pgStore implements Store on top of a pgx pool or transaction.
type pgStore struct {
	conn *db.Connection
	exec db.DBTX

	games      *gameRepository
	attributes *attributeRepository
	aliases    *aliasRepository
}

// NewStore creates a Postgres-backed catalog store.
func NewStore(conn *db.Connection) Store {
	return newPGStore(conn, conn.Pool)
}

func newPGStore(conn *db.Connection, exec db.DBTX) *pgStore {
	return &pgStore{
		conn:       conn,
		exec:       exec,
		games:      &gameRepository{db: exec},
		attributes: &attributeRepository{db: exec},
		aliases:    &aliasRepository{db: exec},
	}
}

func (s *pgStore) Games() GameRepository           { return s.games }
func (s *pgStore) Attributes() AttributeRepository { return s.attributes }
func (s *pgStore) Aliases() AliasRepository        { return s.aliases }

// WithTx scopes fn to one transaction. A store view that is already
// transaction-scoped reuses the open transaction instead of nesting.
func (s *pgStore) WithTx(ctx context.Context, fn func(Store) error) error {
	if _, ok := s.exec.(pgx.Tx); ok {
		return fn(s)
	}
	return s.conn.WithTx(ctx, func(tx pgx.Tx) error {
		return fn(newPGStore(s.conn, tx))
	})
}
