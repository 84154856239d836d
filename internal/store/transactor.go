package store

import "context"

// Stores bundles the stores bound to a single unit of work.
type Stores struct {
	Slots SlotStore
	Swaps SwapRequestStore
	Users UserStore
}

// UnitOfWork runs inside a transaction. Returning an error rolls back every
// write made through stores; returning nil commits them.
type UnitOfWork func(ctx context.Context, stores Stores) error

// Transactor opens units of work.
type Transactor interface {
	// InTx executes fn in a new transaction. Errors returned by fn are
	// returned unchanged after rollback. Commit failures wrap ErrTransactionFailed.
	InTx(ctx context.Context, fn UnitOfWork) error

	// Stores returns stores that are not bound to any transaction, for reads.
	Stores() Stores
}
