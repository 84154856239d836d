package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/slotswap-api/internal/store"
)

// PostgresTransactor implements store.Transactor on top of store.RunInTransaction.
type PostgresTransactor struct {
	db     *sql.DB
	logger *slog.Logger
	base   store.Stores
}

// NewPostgresTransactor creates a transactor over db.
// If logger is nil, a default logger will be used.
func NewPostgresTransactor(db *sql.DB, logger *slog.Logger) *PostgresTransactor {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTransactor{
		db:     db,
		logger: logger,
		base:   newStores(db, logger),
	}
}

// Ensure PostgresTransactor implements store.Transactor interface
var _ store.Transactor = (*PostgresTransactor)(nil)

func newStores(db store.DBTX, logger *slog.Logger) store.Stores {
	return store.Stores{
		Slots: NewPostgresSlotStore(db, logger),
		Swaps: NewPostgresSwapRequestStore(db, logger),
		Users: NewPostgresUserStore(db, logger),
	}
}

// InTx implements store.Transactor.InTx
func (t *PostgresTransactor) InTx(ctx context.Context, fn store.UnitOfWork) error {
	return store.RunInTransaction(ctx, t.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, newStores(tx, t.logger))
	})
}

// Stores implements store.Transactor.Stores
func (t *PostgresTransactor) Stores() store.Stores {
	return t.base
}
