/*
store.go - Persistence interface for day ledgers, sales and close-outs

PURPOSE:
  Defines the boundary between the ledger core and storage. The core
  does not care whether the implementation is SQLite, Postgres or an
  in-memory map; it requires read-your-writes consistency within one
  logical operation.

CONTRACT NOTES:
  - ListSales returns ONLY currently-existing sales for the date.
    Cancellation is deletion, so the stock fold over ListSales output is
    correct by construction (there is no "cancelled" flag to forget to
    filter on).
  - Get* methods return (nil, nil) for "not found"; the caller decides
    which domain error that maps to.
  - Every failure is returned to the caller. Implementations must not
    substitute empty results for errors: stock and cash figures are
    financial data.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go:  SQLite (WAL), production

SEE ALSO:
  - daybook/: The only writer
*/
package ledger

import "context"

// =============================================================================
// STORE - Persistence collaborator
// =============================================================================

type Store interface {
	// GetDay returns the ledger for a date, or (nil, nil) if none exists.
	GetDay(ctx context.Context, date Date) (*DayLedger, error)

	// PutDay inserts or replaces a day ledger.
	PutDay(ctx context.Context, day DayLedger) error

	// ListSales returns all currently-existing sales for the date,
	// ordered by creation time. Cancelled sales are gone, not flagged.
	ListSales(ctx context.Context, date Date) ([]SaleRecord, error)

	// GetSale returns a sale by ID, or (nil, nil) if it does not exist.
	GetSale(ctx context.Context, id SaleID) (*SaleRecord, error)

	// PutSale inserts or replaces a sale record.
	PutSale(ctx context.Context, sale SaleRecord) error

	// DeleteSale removes a sale record entirely. Deleting a missing ID
	// is not an error at this layer.
	DeleteSale(ctx context.Context, id SaleID) error

	// PutCloseOut persists a close-out record. At most one per date.
	PutCloseOut(ctx context.Context, rec CloseOutRecord) error

	// GetCloseOut returns the close-out for a date, or (nil, nil).
	GetCloseOut(ctx context.Context, date Date) (*CloseOutRecord, error)

	// LatestCloseOut returns the most recent close-out strictly before
	// the given date, or (nil, nil) if none exists. Used to seed the next
	// day's beverage stock.
	LatestCloseOut(ctx context.Context, before Date) (*CloseOutRecord, error)

	// PutExpense records a cash-out for a date.
	PutExpense(ctx context.Context, exp Expense) error

	// ListExpenses returns all expenses for a date.
	ListExpenses(ctx context.Context, date Date) ([]Expense, error)
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// TxStore wraps Store with a transactional scope. The daybook runs each
// mutation's read-validate-write sequence inside WithTx when available,
// so a failed write leaves no partial state.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error
	// the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
