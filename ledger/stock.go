/*
stock.go - The stock calculator: a fold over sales history

PURPOSE:
  Computes the current available stock from the day's opening counts and
  the full set of currently-recorded sales. This is the central
  calculation that answers "how much is left?".

KEY INSIGHT:
  Available stock is ALWAYS recomputed from history. Cancelling a sale
  is deleting its record; editing a sale rewrites its record. Either way
  the next fold is automatically consistent. A stored running counter
  would have to be patched on every cancel/edit and would drift the
  first time a code path forgot.

ASYMMETRY (deliberate business rule, preserve it):
  - Perishable total is NOT floored. A negative available count means
    the ledger is inconsistent with reality and must be surfaced so a
    human investigates. Perishable correctness gates new-sale admission.
  - Beverage counts ARE floored at zero per key. Beverages get swapped,
    comped and restocked informally; small negative drift is tolerated
    by clamping because beverage availability is advisory, not gating.

PURITY:
  ComputeStock has no side effects and no hidden state. Same inputs in
  any order give bit-identical output.

SEE ALSO:
  - types.go: StockSnapshot, Consumption
  - daybook/: Admission checks built on this fold
*/
package ledger

import "github.com/shopspring/decimal"

// =============================================================================
// CONSUMPTION FORMULA - Shared by recorded sales and admission candidates
// =============================================================================

// ConsumptionOf computes the stock delta a set of line items consumes.
// The same formula produces a SaleRecord's pinned ConsumedWholeUnits /
// ConsumedBeverages and an admission candidate's requested amounts.
func ConsumptionOf(items []LineItem) Consumption {
	c := Consumption{
		WholeUnits: decimal.Zero,
		Beverages:  BeverageStock{},
	}
	for _, item := range items {
		if item.PerishableFraction.IsPositive() {
			qty := decimal.NewFromInt(int64(item.Quantity))
			c.WholeUnits = c.WholeUnits.Add(item.PerishableFraction.Mul(qty))
		}
		if item.Beverage != nil {
			c.Beverages.Add(*item.Beverage, item.Quantity)
		}
	}
	return c
}

// TotalOf computes the monetary total of a set of line items.
func TotalOf(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		total = total.Add(item.UnitPrice.Mul(qty))
	}
	return total
}

// =============================================================================
// THE FOLD - ComputeStock
// =============================================================================

// ComputeStock folds the given sales over the opening position and returns
// the current available stock.
//
// Callers must pre-filter sales to the opening's date; cancelled sales do
// not exist (cancellation is deletion), so "all sales for the date" is the
// correct input by construction.
//
// The perishable total is signed: no flooring. Beverage counts are clamped
// at zero per key.
func ComputeStock(date Date, opening Opening, sales []SaleRecord) StockSnapshot {
	wholeUnits := opening.WholeUnits
	beverages := opening.Beverages.Clone()

	for _, sale := range sales {
		wholeUnits = wholeUnits.Sub(sale.ConsumedWholeUnits)
		for _, key := range sale.ConsumedBeverages.Keys() {
			n, _ := sale.ConsumedBeverages.Count(key)
			beverages.Add(key, -n)
		}
	}

	// Clamp beverages only. The perishable total stays signed.
	for _, key := range beverages.Keys() {
		if n, _ := beverages.Count(key); n < 0 {
			beverages.Set(key, 0)
		}
	}

	return StockSnapshot{
		Date:                date,
		AvailableWholeUnits: wholeUnits,
		AvailableBeverages:  beverages,
	}
}

// =============================================================================
// LINE ITEM VALIDATION
// =============================================================================

// ValidateLineItems checks structural validity of resolved line items:
// at least one line, quantity >= 1, price >= 0, perishable fraction in
// [0, 1] on the eighth grid. Returns MalformedLineItemError on the first
// violation.
func ValidateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return &MalformedLineItemError{Reason: "sale has no line items"}
	}
	one := decimal.NewFromInt(1)
	for i, item := range items {
		if item.Quantity < 1 {
			return &MalformedLineItemError{Index: i, ProductRef: item.ProductRef, Reason: "quantity must be at least 1"}
		}
		if item.UnitPrice.IsNegative() {
			return &MalformedLineItemError{Index: i, ProductRef: item.ProductRef, Reason: "unit price must not be negative"}
		}
		f := item.PerishableFraction
		if f.IsNegative() || f.GreaterThan(one) {
			return &MalformedLineItemError{Index: i, ProductRef: item.ProductRef, Reason: "perishable fraction must be in [0, 1]"}
		}
		if !OnEighthGrid(f) {
			return &MalformedLineItemError{Index: i, ProductRef: item.ProductRef, Reason: "perishable fraction must be a multiple of 0.125"}
		}
	}
	return nil
}
