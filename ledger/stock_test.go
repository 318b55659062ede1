package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var (
	colaCan  = ledger.BeverageKey{Brand: "cola", Size: "can"}
	colaLtr  = ledger.BeverageKey{Brand: "cola", Size: "liter"}
	beerBott = ledger.BeverageKey{Brand: "lager", Size: "bottle"}
)

func beverages(pairs ...any) ledger.BeverageStock {
	stock := ledger.BeverageStock{}
	for i := 0; i < len(pairs); i += 2 {
		stock.Set(pairs[i].(ledger.BeverageKey), pairs[i+1].(int))
	}
	return stock
}

func opening(wholeUnits float64, stock ledger.BeverageStock) ledger.Opening {
	if stock == nil {
		stock = ledger.BeverageStock{}
	}
	return ledger.Opening{WholeUnits: ledger.Units(wholeUnits), Beverages: stock}
}

func perishableLine(ref string, qty int, fraction float64, price float64) ledger.LineItem {
	return ledger.LineItem{
		ProductRef:         ref,
		Name:               ref,
		Quantity:           qty,
		UnitPrice:          ledger.Cash(price),
		PerishableFraction: ledger.Units(fraction),
	}
}

func beverageLine(ref string, qty int, key ledger.BeverageKey, price float64) ledger.LineItem {
	return ledger.LineItem{
		ProductRef: ref,
		Name:       ref,
		Quantity:   qty,
		UnitPrice:  ledger.Cash(price),
		Beverage:   &key,
	}
}

func saleOf(items ...ledger.LineItem) ledger.SaleRecord {
	c := ledger.ConsumptionOf(items)
	return ledger.SaleRecord{
		LineItems:          items,
		ConsumedWholeUnits: c.WholeUnits,
		ConsumedBeverages:  c.Beverages,
		Total:              ledger.TotalOf(items),
	}
}

func mustEqual(t *testing.T, got, want decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s = %s, want %s", label, got, want)
	}
}

// =============================================================================
// CONSUMPTION FORMULA
// =============================================================================

func TestConsumptionOf_SumsPerishableFractions(t *testing.T) {
	// GIVEN: 2x half-portion and 3x quarter-portion lines
	// WHEN: Computing consumption
	// THEN: 2*0.5 + 3*0.25 = 1.75 whole units

	items := []ledger.LineItem{
		perishableLine("roast-half", 2, 0.5, 12),
		perishableLine("roast-quarter", 3, 0.25, 7),
	}

	c := ledger.ConsumptionOf(items)
	mustEqual(t, c.WholeUnits, ledger.Units(1.75), "consumed whole units")
	if c.Beverages.Total() != 0 {
		t.Fatalf("expected no beverage consumption, got %d", c.Beverages.Total())
	}
}

func TestConsumptionOf_AccumulatesBeveragesByKey(t *testing.T) {
	// GIVEN: Two lines of the same beverage key plus one of another
	// WHEN: Computing consumption
	// THEN: Same-key quantities accumulate

	items := []ledger.LineItem{
		beverageLine("cola-can", 2, colaCan, 1.5),
		beverageLine("cola-can-again", 3, colaCan, 1.5),
		beverageLine("lager", 1, beerBott, 2.5),
	}

	c := ledger.ConsumptionOf(items)
	if n, _ := c.Beverages.Count(colaCan); n != 5 {
		t.Fatalf("cola cans consumed = %d, want 5", n)
	}
	if n, _ := c.Beverages.Count(beerBott); n != 1 {
		t.Fatalf("lager bottles consumed = %d, want 1", n)
	}
	mustEqual(t, c.WholeUnits, decimal.Zero, "consumed whole units")
}

func TestTotalOf_MultipliesPriceByQuantity(t *testing.T) {
	items := []ledger.LineItem{
		perishableLine("roast-half", 2, 0.5, 12.50),
		beverageLine("cola-can", 4, colaCan, 1.25),
	}
	mustEqual(t, ledger.TotalOf(items), ledger.Cash(30), "sale total")
}

// =============================================================================
// THE FOLD
// =============================================================================

func TestComputeStock_SubtractsAllSales(t *testing.T) {
	// GIVEN: 10 whole units and 24 cola cans at open, one sale of a
	//        half portion plus a can
	// WHEN: Folding
	// THEN: 9.5 units and 23 cans remain

	sales := []ledger.SaleRecord{
		saleOf(perishableLine("roast-half", 1, 0.5, 12), beverageLine("cola-can", 1, colaCan, 1.5)),
	}

	snap := ledger.ComputeStock(ledger.NewDate(2026, 8, 28), opening(10, beverages(colaCan, 24)), sales)

	mustEqual(t, snap.AvailableWholeUnits, ledger.Units(9.5), "available whole units")
	if n, _ := snap.AvailableBeverages.Count(colaCan); n != 23 {
		t.Fatalf("cola cans available = %d, want 23", n)
	}
}

func TestComputeStock_OrderIndependent(t *testing.T) {
	// GIVEN: Three sales
	// WHEN: Folding them in two different orders
	// THEN: Identical snapshots

	a := saleOf(perishableLine("roast-whole", 1, 1, 20))
	b := saleOf(perishableLine("roast-eighth", 3, 0.125, 4))
	c := saleOf(beverageLine("cola-can", 5, colaCan, 1.5))

	date := ledger.NewDate(2026, 8, 28)
	open := opening(6, beverages(colaCan, 12))

	first := ledger.ComputeStock(date, open, []ledger.SaleRecord{a, b, c})
	second := ledger.ComputeStock(date, open, []ledger.SaleRecord{c, a, b})

	mustEqual(t, first.AvailableWholeUnits, second.AvailableWholeUnits, "whole units across orders")
	na, _ := first.AvailableBeverages.Count(colaCan)
	nb, _ := second.AvailableBeverages.Count(colaCan)
	if na != nb {
		t.Fatalf("beverage counts diverge across orders: %d vs %d", na, nb)
	}
	mustEqual(t, first.AvailableWholeUnits, ledger.Units(4.625), "available whole units")
}

func TestComputeStock_PerishableGoesNegative(t *testing.T) {
	// GIVEN: 1 whole unit at open and sales consuming 1.5
	// WHEN: Folding
	// THEN: The snapshot reports -0.5, not 0 (shrinkage must surface)

	sales := []ledger.SaleRecord{
		saleOf(perishableLine("roast-whole", 1, 1, 20)),
		saleOf(perishableLine("roast-half", 1, 0.5, 12)),
	}

	snap := ledger.ComputeStock(ledger.NewDate(2026, 8, 28), opening(1, nil), sales)
	mustEqual(t, snap.AvailableWholeUnits, ledger.Units(-0.5), "available whole units")
}

func TestComputeStock_BeveragesClampAtZeroPerKey(t *testing.T) {
	// GIVEN: 2 cans at open and a 5-can sale, another key untouched
	// WHEN: Folding
	// THEN: The oversold key reads 0; the other key is unaffected

	sales := []ledger.SaleRecord{
		saleOf(beverageLine("cola-can", 5, colaCan, 1.5)),
	}

	snap := ledger.ComputeStock(ledger.NewDate(2026, 8, 28),
		opening(0, beverages(colaCan, 2, beerBott, 6)), sales)

	if n, _ := snap.AvailableBeverages.Count(colaCan); n != 0 {
		t.Fatalf("oversold key = %d, want 0", n)
	}
	if n, _ := snap.AvailableBeverages.Count(beerBott); n != 6 {
		t.Fatalf("untouched key = %d, want 6", n)
	}
}

func TestComputeStock_CancellationIsDeletion(t *testing.T) {
	// GIVEN: A fold over two sales
	// WHEN: One sale is removed from the input (cancelled)
	// THEN: The fold returns exactly the pre-sale stock for it

	kept := saleOf(perishableLine("roast-quarter", 2, 0.25, 7))
	cancelled := saleOf(perishableLine("roast-whole", 1, 1, 20), beverageLine("cola-can", 2, colaCan, 1.5))

	date := ledger.NewDate(2026, 8, 28)
	open := opening(8, beverages(colaCan, 10))

	before := ledger.ComputeStock(date, open, []ledger.SaleRecord{kept})
	after := ledger.ComputeStock(date, open, []ledger.SaleRecord{kept, cancelled})

	if before.AvailableWholeUnits.Equal(after.AvailableWholeUnits) {
		t.Fatal("cancelled sale should have changed the fold while present")
	}

	restored := ledger.ComputeStock(date, open, []ledger.SaleRecord{kept})
	mustEqual(t, restored.AvailableWholeUnits, before.AvailableWholeUnits, "whole units after cancellation")
	n0, _ := before.AvailableBeverages.Count(colaCan)
	n1, _ := restored.AvailableBeverages.Count(colaCan)
	if n0 != n1 {
		t.Fatalf("beverage count after cancellation = %d, want %d", n1, n0)
	}
}

func TestComputeStock_Idempotent(t *testing.T) {
	// Same inputs, repeated folds, identical output.

	sales := []ledger.SaleRecord{
		saleOf(perishableLine("roast-half", 3, 0.5, 12)),
		saleOf(beverageLine("cola-liter", 2, colaLtr, 3)),
	}
	date := ledger.NewDate(2026, 8, 28)
	open := opening(5, beverages(colaLtr, 4))

	first := ledger.ComputeStock(date, open, sales)
	for i := 0; i < 3; i++ {
		again := ledger.ComputeStock(date, open, sales)
		mustEqual(t, again.AvailableWholeUnits, first.AvailableWholeUnits, "repeated fold whole units")
	}
}

func TestComputeStock_DoesNotMutateOpening(t *testing.T) {
	// The fold clones the opening beverages; the input must stay intact.

	open := opening(4, beverages(colaCan, 10))
	sales := []ledger.SaleRecord{saleOf(beverageLine("cola-can", 4, colaCan, 1.5))}

	ledger.ComputeStock(ledger.NewDate(2026, 8, 28), open, sales)

	if n, _ := open.Beverages.Count(colaCan); n != 10 {
		t.Fatalf("opening beverages mutated: %d, want 10", n)
	}
}

// =============================================================================
// LINE ITEM VALIDATION
// =============================================================================

func TestValidateLineItems_RejectsEmptySale(t *testing.T) {
	err := ledger.ValidateLineItems(nil)
	if err == nil {
		t.Fatal("expected error for empty sale")
	}
}

func TestValidateLineItems_RejectsOffGridFraction(t *testing.T) {
	// 0.3 is not a multiple of 0.125.
	items := []ledger.LineItem{perishableLine("bad", 1, 0.3, 5)}
	if err := ledger.ValidateLineItems(items); err == nil {
		t.Fatal("expected error for off-grid perishable fraction")
	}
}

func TestValidateLineItems_AcceptsEveryEighth(t *testing.T) {
	for i := 0; i <= 8; i++ {
		f := float64(i) * 0.125
		items := []ledger.LineItem{perishableLine("ok", 1, f, 5)}
		if err := ledger.ValidateLineItems(items); err != nil {
			t.Fatalf("fraction %v rejected: %v", f, err)
		}
	}
}

func TestValidateLineItems_RejectsZeroQuantity(t *testing.T) {
	items := []ledger.LineItem{perishableLine("bad", 0, 0.5, 5)}
	if err := ledger.ValidateLineItems(items); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestValidateLineItems_RejectsNegativePrice(t *testing.T) {
	items := []ledger.LineItem{perishableLine("bad", 1, 0.5, -1)}
	if err := ledger.ValidateLineItems(items); err == nil {
		t.Fatal("expected error for negative price")
	}
}

func TestValidateLineItems_RejectsFractionAboveOne(t *testing.T) {
	items := []ledger.LineItem{perishableLine("bad", 1, 1.25, 5)}
	if err := ledger.ValidateLineItems(items); err == nil {
		t.Fatal("expected error for fraction above 1")
	}
}
