package daybook_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braseria/poscore/daybook"
	"github.com/braseria/poscore/ledger"
	"github.com/braseria/poscore/ledger/store"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

var (
	colaCan = ledger.BeverageKey{Brand: "cola", Size: "can"}
	beerBtl = ledger.BeverageKey{Brand: "lager", Size: "bottle"}
)

// testCatalog mirrors a typical menu: perishable portions on the eighth
// grid, stocked beverages, and one item that touches no stock at all.
func testCatalog() daybook.StaticCatalog {
	return daybook.StaticCatalog{
		"roast-whole":   {Ref: "roast-whole", Name: "Whole roast", UnitPrice: ledger.Cash(20), PerishableFraction: ledger.Units(1)},
		"roast-half":    {Ref: "roast-half", Name: "Half roast", UnitPrice: ledger.Cash(12), PerishableFraction: ledger.Units(0.5)},
		"roast-quarter": {Ref: "roast-quarter", Name: "Quarter roast", UnitPrice: ledger.Cash(7), PerishableFraction: ledger.Units(0.25)},
		"cola-can":      {Ref: "cola-can", Name: "Cola can", UnitPrice: ledger.Cash(1.5), Beverage: &colaCan},
		"lager":         {Ref: "lager", Name: "Lager bottle", UnitPrice: ledger.Cash(2.5), Beverage: &beerBtl},
		"fries":         {Ref: "fries", Name: "Fries", UnitPrice: ledger.Cash(3)},
	}
}

func newTestDaybook() (*daybook.Daybook, *daybook.MemoryTableBoard) {
	tables := daybook.NewMemoryTableBoard()
	return daybook.NewDaybook(store.NewTxMemory(), testCatalog(), tables), tables
}

func openStandardDay(t *testing.T, book *daybook.Daybook, date ledger.Date) {
	t.Helper()
	beverages := ledger.BeverageStock{}
	beverages.Set(colaCan, 24)
	beverages.Set(beerBtl, 12)

	_, err := book.OpenDay(context.Background(), daybook.OpenDayInput{
		Date:              date,
		OpeningWholeUnits: ledger.Units(10),
		StartingCash:      ledger.Cash(100),
		Beverages:         beverages,
	})
	require.NoError(t, err)
}

func line(ref string, qty int) daybook.LineInput {
	return daybook.LineInput{ProductRef: ref, Quantity: qty}
}

var testDate = ledger.NewDate(2026, 8, 28)

// =============================================================================
// RECORDING SALES
// =============================================================================

func TestRecordSale_ReducesStock(t *testing.T) {
	// GIVEN: A day opened with 10 whole units and 24 cola cans
	// WHEN: Recording a sale of a half portion and one can
	// THEN: The snapshot shows 9.5 units and 23 cans

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{
		line("roast-half", 1),
		line("cola-can", 1),
	}, "")
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.True(t, result.Sale.Total.Equal(ledger.Cash(13.5)))
	assert.Equal(t, ledger.PaymentUnpaid, result.Sale.PaymentState)
	assert.Equal(t, ledger.KitchenPending, result.Sale.KitchenState)

	snap, err := book.Snapshot(ctx, testDate)
	require.NoError(t, err)
	assert.True(t, snap.AvailableWholeUnits.Equal(ledger.Units(9.5)),
		"available = %s", snap.AvailableWholeUnits)
	n, _ := snap.AvailableBeverages.Count(colaCan)
	assert.Equal(t, 23, n)
}

func TestRecordSale_RejectsPerishableOversell(t *testing.T) {
	// GIVEN: 9.5 whole units remaining after a half-portion sale
	// WHEN: Recording 10 whole portions
	// THEN: Hard rejection carrying requested and available amounts

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	_, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("roast-half", 1)}, "")
	require.NoError(t, err)

	_, err = book.RecordSale(ctx, testDate, []daybook.LineInput{line("roast-whole", 10)}, "")
	require.Error(t, err)
	require.ErrorIs(t, err, ledger.ErrInsufficientPerishableStock)

	var stockErr *ledger.InsufficientPerishableStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Requested.Equal(ledger.Units(10)))
	assert.True(t, stockErr.Available.Equal(ledger.Units(9.5)))

	// The rejected sale left no trace.
	sales, err := book.Sales(ctx, testDate)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestRecordSale_BeverageShortageWarnsButSucceeds(t *testing.T) {
	// GIVEN: 24 cola cans in stock
	// WHEN: Recording a 30-can sale
	// THEN: The sale goes through with a shortage warning, and the
	//       available count clamps at zero

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("cola-can", 30)}, "")
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, colaCan, result.Warnings[0].Key)
	assert.Equal(t, 30, result.Warnings[0].Requested)
	assert.Equal(t, 24, result.Warnings[0].Available)

	snap, err := book.Snapshot(ctx, testDate)
	require.NoError(t, err)
	n, _ := snap.AvailableBeverages.Count(colaCan)
	assert.Equal(t, 0, n)
}

func TestRecordSale_UnknownProductRejected(t *testing.T) {
	book, _ := newTestDaybook()
	openStandardDay(t, book, testDate)

	_, err := book.RecordSale(context.Background(), testDate, []daybook.LineInput{line("no-such-dish", 1)}, "")
	require.ErrorIs(t, err, ledger.ErrUnknownProduct)
}

func TestRecordSale_RequiresOpenDay(t *testing.T) {
	book, _ := newTestDaybook()

	_, err := book.RecordSale(context.Background(), testDate, []daybook.LineInput{line("fries", 1)}, "")
	require.ErrorIs(t, err, ledger.ErrDayNotOpen)
}

func TestRecordSale_OccupiesTable(t *testing.T) {
	// GIVEN: A dine-in sale at table 4
	// THEN: The board marks the table occupied; settling frees it

	book, tables := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("fries", 1)}, "4")
	require.NoError(t, err)
	assert.True(t, tables.Occupied("4"))

	_, err = book.SettleSale(ctx, result.Sale.ID, []ledger.PaymentPortion{
		{Method: ledger.MethodCash, Amount: ledger.Cash(3)},
	})
	require.NoError(t, err)
	assert.False(t, tables.Occupied("4"))
}

func TestRecordSale_ConcurrentOversellSerialized(t *testing.T) {
	// GIVEN: Exactly 1 whole unit remaining
	// WHEN: Two whole-portion sales race
	// THEN: Exactly one is admitted

	book, _ := newTestDaybook()
	ctx := context.Background()

	_, err := book.OpenDay(ctx, daybook.OpenDayInput{
		Date:              testDate,
		OpeningWholeUnits: ledger.Units(1),
		StartingCash:      ledger.Cash(0),
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = book.RecordSale(ctx, testDate, []daybook.LineInput{line("roast-whole", 1)}, "")
		}(i)
	}
	wg.Wait()

	admitted := 0
	for _, err := range errs {
		if err == nil {
			admitted++
		} else {
			require.ErrorIs(t, err, ledger.ErrInsufficientPerishableStock)
		}
	}
	assert.Equal(t, 1, admitted)
}

// =============================================================================
// EDITING AND CANCELLING
// =============================================================================

func TestUpdateSale_ReplacesLinesAndRechecksStock(t *testing.T) {
	// GIVEN: A recorded half-portion sale
	// WHEN: Replacing it with two quarter portions
	// THEN: Derived fields are recomputed and stock reflects the new lines

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("roast-half", 1)}, "")
	require.NoError(t, err)

	updated, err := book.UpdateSale(ctx, result.Sale.ID, []daybook.LineInput{line("roast-quarter", 2)})
	require.NoError(t, err)
	assert.True(t, updated.Sale.ConsumedWholeUnits.Equal(ledger.Units(0.5)))
	assert.True(t, updated.Sale.Total.Equal(ledger.Cash(14)))

	snap, err := book.Snapshot(ctx, testDate)
	require.NoError(t, err)
	assert.True(t, snap.AvailableWholeUnits.Equal(ledger.Units(9.5)))
}

func TestUpdateSale_EditCannotOversell(t *testing.T) {
	// GIVEN: 10 units at open, one sale holding 9 and another holding 1
	// WHEN: Editing the smaller sale up to 2 whole portions
	// THEN: Rejection - the edit's own prior unit comes back, but only
	//       1 unit total is free

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	_, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("roast-whole", 9)}, "")
	require.NoError(t, err)
	small, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("roast-whole", 1)}, "")
	require.NoError(t, err)

	_, err = book.UpdateSale(ctx, small.Sale.ID, []daybook.LineInput{line("roast-whole", 2)})
	require.ErrorIs(t, err, ledger.ErrInsufficientPerishableStock)

	// Growing within the freed allowance is fine.
	grown, err := book.UpdateSale(ctx, small.Sale.ID, []daybook.LineInput{line("roast-half", 2)})
	require.NoError(t, err)
	assert.True(t, grown.Sale.ConsumedWholeUnits.Equal(ledger.Units(1)))
}

func TestUpdateSale_PaidSaleImmutable(t *testing.T) {
	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("fries", 1)}, "")
	require.NoError(t, err)
	_, err = book.SettleSale(ctx, result.Sale.ID, []ledger.PaymentPortion{
		{Method: ledger.MethodCard, Amount: ledger.Cash(3)},
	})
	require.NoError(t, err)

	_, err = book.UpdateSale(ctx, result.Sale.ID, []daybook.LineInput{line("fries", 2)})
	require.ErrorIs(t, err, ledger.ErrSaleAlreadyPaid)
}

func TestCancelSale_RestoresStockExactly(t *testing.T) {
	// GIVEN: A sale consuming 1.5 units and 3 cans
	// WHEN: Cancelling it
	// THEN: The snapshot returns to the opening position and the sale
	//       is gone from the day's list

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{
		line("roast-whole", 1),
		line("roast-half", 1),
		line("cola-can", 3),
	}, "")
	require.NoError(t, err)

	require.NoError(t, book.CancelSale(ctx, result.Sale.ID))

	snap, err := book.Snapshot(ctx, testDate)
	require.NoError(t, err)
	assert.True(t, snap.AvailableWholeUnits.Equal(ledger.Units(10)))
	n, _ := snap.AvailableBeverages.Count(colaCan)
	assert.Equal(t, 24, n)

	sales, err := book.Sales(ctx, testDate)
	require.NoError(t, err)
	assert.Empty(t, sales)

	require.ErrorIs(t, book.CancelSale(ctx, result.Sale.ID), ledger.ErrSaleNotFound)
}

// =============================================================================
// SETTLEMENT
// =============================================================================

func TestSettleSale_SplitMustMatchTotal(t *testing.T) {
	// GIVEN: A 13.50 sale
	// WHEN: Settling with portions summing to 13.00
	// THEN: Rejection with both figures attached

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{
		line("roast-half", 1),
		line("cola-can", 1),
	}, "")
	require.NoError(t, err)

	_, err = book.SettleSale(ctx, result.Sale.ID, []ledger.PaymentPortion{
		{Method: ledger.MethodCash, Amount: ledger.Cash(10)},
		{Method: ledger.MethodCard, Amount: ledger.Cash(3)},
	})
	require.ErrorIs(t, err, ledger.ErrPaymentSplitMismatch)

	var mismatch *ledger.PaymentSplitMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.SaleTotal.Equal(ledger.Cash(13.5)))
	assert.True(t, mismatch.SplitSum.Equal(ledger.Cash(13)))

	// Exact split settles.
	settled, err := book.SettleSale(ctx, result.Sale.ID, []ledger.PaymentPortion{
		{Method: ledger.MethodCash, Amount: ledger.Cash(10)},
		{Method: ledger.MethodCard, Amount: ledger.Cash(3.5)},
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.PaymentPaid, settled.PaymentState)
	assert.True(t, settled.CashPaid().Equal(ledger.Cash(10)))

	// Double settlement is a conflict.
	_, err = book.SettleSale(ctx, result.Sale.ID, []ledger.PaymentPortion{
		{Method: ledger.MethodCash, Amount: ledger.Cash(13.5)},
	})
	require.ErrorIs(t, err, ledger.ErrSaleAlreadyPaid)
}

func TestMarkSaleReady(t *testing.T) {
	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("fries", 1)}, "")
	require.NoError(t, err)

	updated, err := book.MarkSaleReady(ctx, result.Sale.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.KitchenReady, updated.KitchenState)
}

// =============================================================================
// CLOSE-OUT
// =============================================================================

func TestCloseDay_ZeroVarianceWhenCountsMatch(t *testing.T) {
	// GIVEN: One settled cash sale and one cash expense
	// WHEN: Closing with physical counts equal to the computed state
	// THEN: All variances are zero and the day rejects further sales

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{
		line("roast-half", 1),
		line("cola-can", 2),
	}, "")
	require.NoError(t, err)
	_, err = book.SettleSale(ctx, result.Sale.ID, []ledger.PaymentPortion{
		{Method: ledger.MethodCash, Amount: ledger.Cash(15)},
	})
	require.NoError(t, err)

	_, err = book.AddExpense(ctx, testDate, ledger.MethodCash, ledger.Cash(20), "ice delivery")
	require.NoError(t, err)

	physical := ledger.BeverageStock{}
	physical.Set(colaCan, 22)
	physical.Set(beerBtl, 12)

	// Expected cash: 100 float + 15 cash sale - 20 cash expense = 95.
	rec, err := book.CloseDay(ctx, testDate, daybook.PhysicalCounts{
		WholeUnits: ledger.Units(9.5),
		Beverages:  physical,
		Cash:       ledger.Cash(95),
	}, "clean close")
	require.NoError(t, err)

	assert.True(t, rec.VarianceWholeUnits.IsZero(), "unit variance = %s", rec.VarianceWholeUnits)
	assert.True(t, rec.VarianceCash.IsZero(), "cash variance = %s", rec.VarianceCash)
	for key, v := range rec.VarianceBeverages {
		assert.Zero(t, v, "variance for %v", key)
	}
	assert.Equal(t, "clean close", rec.Notes)

	// Closed is terminal.
	_, err = book.RecordSale(ctx, testDate, []daybook.LineInput{line("fries", 1)}, "")
	require.ErrorIs(t, err, ledger.ErrDayAlreadyClosed)

	_, err = book.CloseDay(ctx, testDate, daybook.PhysicalCounts{
		WholeUnits: ledger.Units(9.5),
		Beverages:  physical,
		Cash:       ledger.Cash(95),
	}, "")
	require.ErrorIs(t, err, ledger.ErrDayAlreadyClosed)
}

func TestCloseDay_ReportsShrinkage(t *testing.T) {
	// GIVEN: 9.5 units expected
	// WHEN: The physical count finds only 9
	// THEN: Variance is -0.5 (shrinkage), recorded not rejected

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	_, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("roast-half", 1)}, "")
	require.NoError(t, err)

	physical := ledger.BeverageStock{}
	physical.Set(colaCan, 23)
	physical.Set(beerBtl, 12)

	rec, err := book.CloseDay(ctx, testDate, daybook.PhysicalCounts{
		WholeUnits: ledger.Units(9),
		Beverages:  physical,
		Cash:       ledger.Cash(100),
	}, "")
	require.NoError(t, err)

	assert.True(t, rec.VarianceWholeUnits.Equal(ledger.Units(-0.5)))
	assert.Equal(t, -1, rec.VarianceBeverages[colaCan])
	assert.Equal(t, 0, rec.VarianceBeverages[beerBtl])
}

// =============================================================================
// DAY LIFECYCLE AND CARRY-FORWARD
// =============================================================================

func TestOpenDay_OncePerDate(t *testing.T) {
	book, _ := newTestDaybook()
	openStandardDay(t, book, testDate)

	_, err := book.OpenDay(context.Background(), daybook.OpenDayInput{
		Date:              testDate,
		OpeningWholeUnits: ledger.Units(5),
		StartingCash:      ledger.Cash(50),
	})
	require.ErrorIs(t, err, ledger.ErrDayAlreadyOpen)
}

func TestOpenDay_RejectsOffGridUnits(t *testing.T) {
	book, _ := newTestDaybook()

	_, err := book.OpenDay(context.Background(), daybook.OpenDayInput{
		Date:              testDate,
		OpeningWholeUnits: ledger.Units(10.3),
		StartingCash:      ledger.Cash(0),
	})
	require.ErrorIs(t, err, ledger.ErrMalformedLineItem)
}

func TestOpenDay_BeveragesCarryForwardPerishablesDoNot(t *testing.T) {
	// GIVEN: A closed day that ended with 20 cans and leftover roast
	// WHEN: Opening the next day without an explicit beverage count
	// THEN: Beverages seed from the close; the perishable count is only
	//       what was entered fresh

	book, _ := newTestDaybook()
	ctx := context.Background()
	openStandardDay(t, book, testDate)

	result, err := book.RecordSale(ctx, testDate, []daybook.LineInput{line("cola-can", 4)}, "")
	require.NoError(t, err)
	_, err = book.SettleSale(ctx, result.Sale.ID, []ledger.PaymentPortion{
		{Method: ledger.MethodCash, Amount: ledger.Cash(6)},
	})
	require.NoError(t, err)

	physical := ledger.BeverageStock{}
	physical.Set(colaCan, 20)
	physical.Set(beerBtl, 12)
	_, err = book.CloseDay(ctx, testDate, daybook.PhysicalCounts{
		WholeUnits: ledger.Units(10),
		Beverages:  physical,
		Cash:       ledger.Cash(106),
	}, "")
	require.NoError(t, err)

	// Next morning: 6 fresh units entered, plus a cola delivery.
	restock := ledger.BeverageStock{}
	restock.Set(colaCan, 24)

	nextDay := testDate.Next()
	day, err := book.OpenDay(ctx, daybook.OpenDayInput{
		Date:              nextDay,
		OpeningWholeUnits: ledger.Units(6),
		StartingCash:      ledger.Cash(100),
		Restock:           restock,
	})
	require.NoError(t, err)

	assert.True(t, day.OpeningWholeUnits.Equal(ledger.Units(6)))
	n, _ := day.OpeningBeverages.Count(colaCan)
	assert.Equal(t, 44, n, "20 carried + 24 restocked")
	b, _ := day.OpeningBeverages.Count(beerBtl)
	assert.Equal(t, 12, b)
}

func TestAddExpense_RequiresOpenDayAndPositiveAmount(t *testing.T) {
	book, _ := newTestDaybook()
	ctx := context.Background()

	_, err := book.AddExpense(ctx, testDate, ledger.MethodCash, ledger.Cash(5), "x")
	require.ErrorIs(t, err, ledger.ErrDayNotOpen)

	openStandardDay(t, book, testDate)
	_, err = book.AddExpense(ctx, testDate, ledger.MethodCash, decimal.Zero, "x")
	require.ErrorIs(t, err, ledger.ErrMalformedLineItem)
}
