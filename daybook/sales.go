/*
sales.go - Sale recording, mutation, cancellation and settlement

ADMISSION POLICY (asymmetric, deliberate):
  - Perishable: a sale whose consumption exceeds the available whole
    units is hard-rejected. The good cannot be fabricated on the spot.
  - Beverage: a shortfall never blocks the sale; it is attached to the
    successful result as a warning, because substitutions and informal
    backstock are common in practice.

EDIT SEMANTICS:
  UpdateSale fully replaces the line items and recomputes the derived
  fields from scratch. Full replace is the only way to return a removed
  item's stock without per-line provenance tracking. Unlike the system
  this replaces, the edit re-runs the perishable admission check against
  a snapshot that excludes the sale's own prior consumption - an edit
  may not oversell what a fresh sale could not.

CANCELLATION:
  Hard delete. The stock fold only ever sums currently-existing records,
  so deleting the record IS returning its stock.
*/
package daybook

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/ledger"
)

// LineInput is a proposed sale line: what and how many. Price, fraction
// and beverage tag come from the catalog at resolution time.
type LineInput struct {
	ProductRef string
	Quantity   int
}

// SaleResult is a successful record/update outcome. Warnings carry any
// beverage keys the sale took short; the sale itself went through.
type SaleResult struct {
	Sale     ledger.SaleRecord
	Warnings []ledger.BeverageShortage
}

// =============================================================================
// RECORD SALE
// =============================================================================

// RecordSale validates a proposed sale against current stock and persists
// it atomically with its consumed-stock snapshot.
func (b *Daybook) RecordSale(ctx context.Context, date ledger.Date, lines []LineInput, tableRef string) (*SaleResult, error) {
	items, err := b.resolveLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	candidate := ledger.ConsumptionOf(items)

	unlock := b.lockDay(date)
	defer unlock()

	var result *SaleResult
	err = b.withTx(ctx, func(store ledger.Store) error {
		day, err := openDay(ctx, store, date)
		if err != nil {
			return err
		}
		sales, err := store.ListSales(ctx, date)
		if err != nil {
			return persistErr("list sales", err)
		}
		snap := ledger.ComputeStock(date, day.Opening(), sales)

		if err := admitPerishable(date, candidate, snap); err != nil {
			return err
		}
		warnings := beverageShortages(candidate, snap)

		sale := ledger.SaleRecord{
			ID:                 ledger.SaleID(b.newID()),
			Date:               date,
			LineItems:          items,
			ConsumedWholeUnits: candidate.WholeUnits,
			ConsumedBeverages:  candidate.Beverages,
			Total:              ledger.TotalOf(items),
			PaymentState:       ledger.PaymentUnpaid,
			KitchenState:       ledger.KitchenPending,
			TableRef:           tableRef,
			CreatedAt:          b.now().UTC(),
		}
		if err := store.PutSale(ctx, sale); err != nil {
			return persistErr("put sale", err)
		}

		result = &SaleResult{Sale: sale, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if tableRef != "" {
		if err := b.tables.SetOccupied(ctx, tableRef); err != nil {
			return nil, fmt.Errorf("sale %s recorded but table board failed: %w", result.Sale.ID, err)
		}
	}
	return result, nil
}

// =============================================================================
// UPDATE SALE
// =============================================================================

// UpdateSale fully replaces an unpaid sale's line items while its day is
// still open, recomputing consumption and total from scratch.
func (b *Daybook) UpdateSale(ctx context.Context, id ledger.SaleID, lines []LineInput) (*SaleResult, error) {
	existing, err := b.findSale(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := b.resolveLines(ctx, lines)
	if err != nil {
		return nil, err
	}
	candidate := ledger.ConsumptionOf(items)

	unlock := b.lockDay(existing.Date)
	defer unlock()

	var result *SaleResult
	err = b.withTx(ctx, func(store ledger.Store) error {
		day, err := openDay(ctx, store, existing.Date)
		if err != nil {
			return err
		}
		sale, err := store.GetSale(ctx, id)
		if err != nil {
			return persistErr("get sale", err)
		}
		if sale == nil {
			return fmt.Errorf("%w: %s", ledger.ErrSaleNotFound, id)
		}
		if sale.PaymentState == ledger.PaymentPaid {
			return fmt.Errorf("%w: %s", ledger.ErrSaleAlreadyPaid, id)
		}

		// Admission runs against the day WITHOUT this sale: its old
		// consumption is being handed back before the new one is taken.
		sales, err := store.ListSales(ctx, sale.Date)
		if err != nil {
			return persistErr("list sales", err)
		}
		others := sales[:0:0]
		for _, s := range sales {
			if s.ID != id {
				others = append(others, s)
			}
		}
		snap := ledger.ComputeStock(sale.Date, day.Opening(), others)

		if err := admitPerishable(sale.Date, candidate, snap); err != nil {
			return err
		}
		warnings := beverageShortages(candidate, snap)

		sale.LineItems = items
		sale.ConsumedWholeUnits = candidate.WholeUnits
		sale.ConsumedBeverages = candidate.Beverages
		sale.Total = ledger.TotalOf(items)
		if err := store.PutSale(ctx, *sale); err != nil {
			return persistErr("put sale", err)
		}

		result = &SaleResult{Sale: *sale, Warnings: warnings}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// =============================================================================
// CANCEL SALE
// =============================================================================

// CancelSale hard-deletes a sale while its day is open, returning its
// stock implicitly (the next fold no longer sees it) and freeing its
// table.
func (b *Daybook) CancelSale(ctx context.Context, id ledger.SaleID) error {
	existing, err := b.findSale(ctx, id)
	if err != nil {
		return err
	}

	unlock := b.lockDay(existing.Date)
	defer unlock()

	var tableRef string
	err = b.withTx(ctx, func(store ledger.Store) error {
		if _, err := openDay(ctx, store, existing.Date); err != nil {
			return err
		}
		sale, err := store.GetSale(ctx, id)
		if err != nil {
			return persistErr("get sale", err)
		}
		if sale == nil {
			return fmt.Errorf("%w: %s", ledger.ErrSaleNotFound, id)
		}
		tableRef = sale.TableRef
		if err := store.DeleteSale(ctx, id); err != nil {
			return persistErr("delete sale", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if tableRef != "" {
		if err := b.tables.SetFree(ctx, tableRef); err != nil {
			return fmt.Errorf("sale %s cancelled but table board failed: %w", id, err)
		}
	}
	return nil
}

// =============================================================================
// SETTLEMENT AND KITCHEN STATE
// =============================================================================

// SettleSale marks a sale paid with the given split. The portions must
// sum exactly to the sale total - a manager-entered split that doesn't
// add up would corrupt the expected-cash figure at close.
func (b *Daybook) SettleSale(ctx context.Context, id ledger.SaleID, split []ledger.PaymentPortion) (*ledger.SaleRecord, error) {
	existing, err := b.findSale(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := b.lockDay(existing.Date)
	defer unlock()

	var settled *ledger.SaleRecord
	err = b.withTx(ctx, func(store ledger.Store) error {
		if _, err := openDay(ctx, store, existing.Date); err != nil {
			return err
		}
		sale, err := store.GetSale(ctx, id)
		if err != nil {
			return persistErr("get sale", err)
		}
		if sale == nil {
			return fmt.Errorf("%w: %s", ledger.ErrSaleNotFound, id)
		}
		if sale.PaymentState == ledger.PaymentPaid {
			return fmt.Errorf("%w: %s", ledger.ErrSaleAlreadyPaid, id)
		}

		sum := decimal.Zero
		for _, p := range split {
			if p.Amount.IsNegative() {
				return fmt.Errorf("%w: payment portion must not be negative", ledger.ErrPaymentSplitMismatch)
			}
			sum = sum.Add(p.Amount)
		}
		if !sum.Equal(sale.Total) {
			return &ledger.PaymentSplitMismatchError{SaleID: id, SaleTotal: sale.Total, SplitSum: sum}
		}

		sale.PaymentState = ledger.PaymentPaid
		sale.PaymentSplit = append([]ledger.PaymentPortion(nil), split...)
		if err := store.PutSale(ctx, *sale); err != nil {
			return persistErr("put sale", err)
		}
		settled = sale
		return nil
	})
	if err != nil {
		return nil, err
	}

	if settled.TableRef != "" {
		if err := b.tables.SetFree(ctx, settled.TableRef); err != nil {
			return nil, fmt.Errorf("sale %s settled but table board failed: %w", id, err)
		}
	}
	return settled, nil
}

// MarkSaleReady flips the kitchen state. Irrelevant to the ledger math
// but co-located with the sale record.
func (b *Daybook) MarkSaleReady(ctx context.Context, id ledger.SaleID) (*ledger.SaleRecord, error) {
	existing, err := b.findSale(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock := b.lockDay(existing.Date)
	defer unlock()

	var updated *ledger.SaleRecord
	err = b.withTx(ctx, func(store ledger.Store) error {
		if _, err := openDay(ctx, store, existing.Date); err != nil {
			return err
		}
		sale, err := store.GetSale(ctx, id)
		if err != nil {
			return persistErr("get sale", err)
		}
		if sale == nil {
			return fmt.Errorf("%w: %s", ledger.ErrSaleNotFound, id)
		}
		sale.KitchenState = ledger.KitchenReady
		if err := store.PutSale(ctx, *sale); err != nil {
			return persistErr("put sale", err)
		}
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// =============================================================================
// EXPENSES
// =============================================================================

// AddExpense records a cash-out against an open day. Cash-method
// expenses reduce the expected cash at close.
func (b *Daybook) AddExpense(ctx context.Context, date ledger.Date, method ledger.PaymentMethod, amount decimal.Decimal, description string) (*ledger.Expense, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: expense amount must be positive", ledger.ErrMalformedLineItem)
	}

	unlock := b.lockDay(date)
	defer unlock()

	var exp *ledger.Expense
	err := b.withTx(ctx, func(store ledger.Store) error {
		if _, err := openDay(ctx, store, date); err != nil {
			return err
		}
		exp = &ledger.Expense{
			ID:          ledger.ExpenseID(b.newID()),
			Date:        date,
			Method:      method,
			Amount:      amount,
			Description: description,
			CreatedAt:   b.now().UTC(),
		}
		if err := store.PutExpense(ctx, *exp); err != nil {
			return persistErr("put expense", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// resolveLines turns proposed lines into stored line items, pinning the
// catalog's current price, fraction and beverage tag onto each.
func (b *Daybook) resolveLines(ctx context.Context, lines []LineInput) ([]ledger.LineItem, error) {
	if len(lines) == 0 {
		return nil, &ledger.MalformedLineItemError{Reason: "sale has no line items"}
	}

	items := make([]ledger.LineItem, 0, len(lines))
	for i, line := range lines {
		product, err := b.catalog.Product(ctx, line.ProductRef)
		if err != nil {
			return nil, fmt.Errorf("catalog lookup failed: %w", err)
		}
		if product == nil {
			return nil, &ledger.UnknownProductError{Ref: line.ProductRef}
		}
		if line.Quantity < 1 {
			return nil, &ledger.MalformedLineItemError{Index: i, ProductRef: line.ProductRef, Reason: "quantity must be at least 1"}
		}

		item := ledger.LineItem{
			ProductRef:         product.Ref,
			Name:               product.Name,
			Quantity:           line.Quantity,
			UnitPrice:          product.UnitPrice,
			PerishableFraction: product.PerishableFraction,
		}
		if product.Beverage != nil {
			key := *product.Beverage
			item.Beverage = &key
		}
		items = append(items, item)
	}

	if err := ledger.ValidateLineItems(items); err != nil {
		return nil, err
	}
	return items, nil
}

// findSale locates a sale for lock acquisition; existence is re-checked
// under the day lock.
func (b *Daybook) findSale(ctx context.Context, id ledger.SaleID) (*ledger.SaleRecord, error) {
	sale, err := b.store.GetSale(ctx, id)
	if err != nil {
		return nil, persistErr("get sale", err)
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrSaleNotFound, id)
	}
	return sale, nil
}

// admitPerishable is the hard gate: a candidate consuming more whole
// units than the snapshot has available blocks the whole operation.
func admitPerishable(date ledger.Date, candidate ledger.Consumption, snap ledger.StockSnapshot) error {
	if candidate.WholeUnits.GreaterThan(snap.AvailableWholeUnits) {
		return &ledger.InsufficientPerishableStockError{
			Date:      date,
			Requested: candidate.WholeUnits,
			Available: snap.AvailableWholeUnits,
		}
	}
	return nil
}

// beverageShortages computes the advisory per-key shortfall list.
func beverageShortages(candidate ledger.Consumption, snap ledger.StockSnapshot) []ledger.BeverageShortage {
	var shortages []ledger.BeverageShortage
	for _, key := range candidate.Beverages.Keys() {
		requested, _ := candidate.Beverages.Count(key)
		available, _ := snap.AvailableBeverages.Count(key)
		if requested > available {
			shortages = append(shortages, ledger.BeverageShortage{
				Key:       key,
				Requested: requested,
				Available: available,
			})
		}
	}
	return shortages
}
