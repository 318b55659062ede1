/*
close.go - End-of-day reconciliation

PURPOSE:
  Compares the manager's physical counts against the expectation the
  ledger computed, writes the immutable CloseOutRecord, and flips the
  day to Closed. The close is terminal: every later mutation against
  the date is rejected.

EXPECTED CASH:
  startingCash + cash-attributed portions of Paid sales - cash expenses.
  A sale settled across several methods contributes only its cash legs.

CARRY-FORWARD:
  The close-out stores the clamped available beverage stock; the next
  OpenDay seeds from it. The perishable count is deliberately NOT
  carried (it spoils overnight and must be recounted fresh).
*/
package daybook

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/ledger"
)

// PhysicalCounts is what the manager actually counted at close.
type PhysicalCounts struct {
	WholeUnits decimal.Decimal
	Beverages  ledger.BeverageStock
	Cash       decimal.Decimal
}

// CloseDay reconciles and closes an open day.
func (b *Daybook) CloseDay(ctx context.Context, date ledger.Date, counts PhysicalCounts, notes string) (*ledger.CloseOutRecord, error) {
	unlock := b.lockDay(date)
	defer unlock()

	var rec *ledger.CloseOutRecord
	err := b.withTx(ctx, func(store ledger.Store) error {
		day, err := openDay(ctx, store, date)
		if err != nil {
			return err
		}
		sales, err := store.ListSales(ctx, date)
		if err != nil {
			return persistErr("list sales", err)
		}
		expenses, err := store.ListExpenses(ctx, date)
		if err != nil {
			return persistErr("list expenses", err)
		}

		snap := ledger.ComputeStock(date, day.Opening(), sales)
		expectedCash := expectedCash(day, sales, expenses)

		rec = &ledger.CloseOutRecord{
			Date:               date,
			PhysicalWholeUnits: counts.WholeUnits,
			PhysicalBeverages:  counts.Beverages.Clone(),
			PhysicalCash:       counts.Cash,
			ExpectedWholeUnits: snap.AvailableWholeUnits,
			ExpectedCash:       expectedCash,
			ClosingBeverages:   snap.AvailableBeverages.Clone(),
			VarianceWholeUnits: counts.WholeUnits.Sub(snap.AvailableWholeUnits),
			VarianceCash:       counts.Cash.Sub(expectedCash),
			VarianceBeverages:  beverageVariances(counts.Beverages, snap.AvailableBeverages),
			Notes:              notes,
			ClosedAt:           b.now().UTC(),
		}

		if err := store.PutCloseOut(ctx, *rec); err != nil {
			return persistErr("put close-out", err)
		}
		day.State = ledger.DayClosed
		if err := store.PutDay(ctx, *day); err != nil {
			return persistErr("put day", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// expectedCash folds the settled cash over the drawer's starting float.
func expectedCash(day *ledger.DayLedger, sales []ledger.SaleRecord, expenses []ledger.Expense) decimal.Decimal {
	cash := day.StartingCash
	for i := range sales {
		cash = cash.Add(sales[i].CashPaid())
	}
	for _, exp := range expenses {
		if exp.Method == ledger.MethodCash {
			cash = cash.Sub(exp.Amount)
		}
	}
	return cash
}

// beverageVariances computes physical - expected per key, over the union
// of both key sets. Sign convention: positive is surplus, negative is
// shrinkage.
func beverageVariances(physical, expected ledger.BeverageStock) map[ledger.BeverageKey]int {
	variances := make(map[ledger.BeverageKey]int)
	seen := make(map[ledger.BeverageKey]bool)

	for _, key := range physical.Keys() {
		p, _ := physical.Count(key)
		e, _ := expected.Count(key)
		variances[key] = p - e
		seen[key] = true
	}
	for _, key := range expected.Keys() {
		if seen[key] {
			continue
		}
		e, _ := expected.Count(key)
		variances[key] = -e
	}
	return variances
}
