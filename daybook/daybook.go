/*
Package daybook implements the day-scoped operations of the ledger:
opening a day, recording/editing/cancelling sales, settlement, and the
end-of-day close.

PURPOSE:
  The ledger package is pure; this package is where reads, decisions and
  writes meet. Every operation follows the same shape:

    1. Serialize on the target date (per-day mutex)
    2. Read the day ledger and its sales through the Store
    3. Decide against a freshly-computed StockSnapshot
    4. Write inside the store's transactional scope when available

CONCURRENCY:
  The reference system had a read-snapshot-then-write race: two
  concurrent sales could both pass admission against the same stale
  snapshot and jointly oversell the perishable good. The per-day mutex
  closes that gap - admission and persist are one critical section per
  date. Beverage admission is advisory and needs no such guarantee, but
  it rides along for free.

DAY LIFECYCLE RULES:
  - A date gets exactly one DayLedger, ever. Closing is terminal.
  - OpeningWholeUnits must be entered fresh every day (it spoils).
  - OpeningBeverages is seeded from the previous close's leftover stock
    unless explicitly overridden (it doesn't spoil); restock deliveries
    are added on top.

SEE ALSO:
  - sales.go: Sale recording and mutation
  - close.go: Close-out reconciliation
*/
package daybook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/ledger"
)

// =============================================================================
// DAYBOOK - The operations service
// =============================================================================

type Daybook struct {
	store   ledger.Store
	catalog Catalog
	tables  TableBoard

	mu       sync.Mutex
	dayLocks map[ledger.Date]*sync.Mutex

	// Overridable for tests.
	now   func() time.Time
	newID func() string
}

// NewDaybook creates the service. A nil tables board disables occupancy
// side effects.
func NewDaybook(store ledger.Store, catalog Catalog, tables TableBoard) *Daybook {
	if tables == nil {
		tables = NoopTableBoard{}
	}
	return &Daybook{
		store:    store,
		catalog:  catalog,
		tables:   tables,
		dayLocks: make(map[ledger.Date]*sync.Mutex),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// lockDay serializes all mutations for one date. Returns the unlock func.
func (b *Daybook) lockDay(date ledger.Date) func() {
	b.mu.Lock()
	l, ok := b.dayLocks[date]
	if !ok {
		l = &sync.Mutex{}
		b.dayLocks[date] = l
	}
	b.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// withTx runs fn in the store's transactional scope when it has one.
func (b *Daybook) withTx(ctx context.Context, fn func(ledger.Store) error) error {
	if ts, ok := b.store.(ledger.TxStore); ok {
		return ts.WithTx(ctx, fn)
	}
	return fn(b.store)
}

// persistErr tags a storage failure so callers can classify it. Storage
// failures always surface; they are never replaced with empty data.
func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ledger.ErrPersistence, op, err)
}

// openDay loads the ledger for a date and checks it is open.
func openDay(ctx context.Context, store ledger.Store, date ledger.Date) (*ledger.DayLedger, error) {
	day, err := store.GetDay(ctx, date)
	if err != nil {
		return nil, persistErr("get day", err)
	}
	if day == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrDayNotOpen, date)
	}
	if day.State == ledger.DayClosed {
		return nil, fmt.Errorf("%w: %s", ledger.ErrDayAlreadyClosed, date)
	}
	return day, nil
}

// =============================================================================
// OPEN DAY
// =============================================================================

type OpenDayInput struct {
	Date              ledger.Date
	OpeningWholeUnits decimal.Decimal
	StartingCash      decimal.Decimal

	// Explicit beverage count. When nil, the opening stock is seeded
	// from the most recent close-out's leftover beverages.
	Beverages ledger.BeverageStock

	// Deliveries received this morning, added on top of the seeded or
	// explicit stock.
	Restock ledger.BeverageStock
}

// OpenDay creates the DayLedger for a date. The perishable count and the
// starting cash must be entered explicitly; beverages carry forward.
func (b *Daybook) OpenDay(ctx context.Context, in OpenDayInput) (*ledger.DayLedger, error) {
	if in.Date.IsZero() {
		return nil, &ledger.MalformedLineItemError{Reason: "open day requires a date"}
	}
	if in.OpeningWholeUnits.IsNegative() {
		return nil, fmt.Errorf("%w: opening whole units must not be negative", ledger.ErrMalformedLineItem)
	}
	if !ledger.OnEighthGrid(in.OpeningWholeUnits) {
		return nil, fmt.Errorf("%w: opening whole units must be a multiple of 0.125", ledger.ErrMalformedLineItem)
	}
	if in.StartingCash.IsNegative() {
		return nil, fmt.Errorf("%w: starting cash must not be negative", ledger.ErrMalformedLineItem)
	}

	unlock := b.lockDay(in.Date)
	defer unlock()

	var day *ledger.DayLedger
	err := b.withTx(ctx, func(store ledger.Store) error {
		existing, err := store.GetDay(ctx, in.Date)
		if err != nil {
			return persistErr("get day", err)
		}
		if existing != nil {
			return fmt.Errorf("%w: %s", ledger.ErrDayAlreadyOpen, in.Date)
		}

		beverages, err := b.seedBeverages(ctx, store, in)
		if err != nil {
			return err
		}

		day = &ledger.DayLedger{
			Date:              in.Date,
			OpeningWholeUnits: in.OpeningWholeUnits,
			OpeningBeverages:  beverages,
			StartingCash:      in.StartingCash,
			State:             ledger.DayOpen,
			OpenedAt:          b.now().UTC(),
		}
		if err := store.PutDay(ctx, *day); err != nil {
			return persistErr("put day", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return day, nil
}

// seedBeverages resolves the day's opening beverage stock: explicit
// override wins; otherwise the previous close's leftovers; restock
// deliveries are added on top either way. The perishable good is never
// seeded - it spoils overnight.
func (b *Daybook) seedBeverages(ctx context.Context, store ledger.Store, in OpenDayInput) (ledger.BeverageStock, error) {
	var beverages ledger.BeverageStock
	if in.Beverages != nil {
		beverages = in.Beverages.Clone()
	} else {
		prev, err := store.LatestCloseOut(ctx, in.Date)
		if err != nil {
			return nil, persistErr("latest close-out", err)
		}
		if prev != nil {
			beverages = prev.ClosingBeverages.Clone()
		} else {
			beverages = ledger.BeverageStock{}
		}
	}

	for _, key := range in.Restock.Keys() {
		n, _ := in.Restock.Count(key)
		if n < 0 {
			return nil, fmt.Errorf("%w: restock count must not be negative", ledger.ErrMalformedLineItem)
		}
		beverages.Add(key, n)
	}
	return beverages, nil
}

// =============================================================================
// STOCK VIEW
// =============================================================================

// Day returns the ledger for a date, open or closed.
func (b *Daybook) Day(ctx context.Context, date ledger.Date) (*ledger.DayLedger, error) {
	day, err := b.store.GetDay(ctx, date)
	if err != nil {
		return nil, persistErr("get day", err)
	}
	if day == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrDayNotOpen, date)
	}
	return day, nil
}

// Snapshot recomputes the current available stock for a date. Always a
// fresh fold over the day's sales; nothing is cached.
func (b *Daybook) Snapshot(ctx context.Context, date ledger.Date) (*ledger.StockSnapshot, error) {
	day, err := b.Day(ctx, date)
	if err != nil {
		return nil, err
	}
	sales, err := b.store.ListSales(ctx, date)
	if err != nil {
		return nil, persistErr("list sales", err)
	}
	snap := ledger.ComputeStock(date, day.Opening(), sales)
	return &snap, nil
}

// Sales lists the day's currently-existing sales.
func (b *Daybook) Sales(ctx context.Context, date ledger.Date) ([]ledger.SaleRecord, error) {
	if _, err := b.Day(ctx, date); err != nil {
		return nil, err
	}
	sales, err := b.store.ListSales(ctx, date)
	if err != nil {
		return nil, persistErr("list sales", err)
	}
	return sales, nil
}

// CloseOut returns the close-out record for a date, or nil if the day
// never closed.
func (b *Daybook) CloseOut(ctx context.Context, date ledger.Date) (*ledger.CloseOutRecord, error) {
	rec, err := b.store.GetCloseOut(ctx, date)
	if err != nil {
		return nil, persistErr("get close-out", err)
	}
	return rec, nil
}

// Expenses lists the day's recorded expenses in creation order.
func (b *Daybook) Expenses(ctx context.Context, date ledger.Date) ([]ledger.Expense, error) {
	expenses, err := b.store.ListExpenses(ctx, date)
	if err != nil {
		return nil, persistErr("list expenses", err)
	}
	return expenses, nil
}
