/*
Package ledger provides the core inventory ledger for a restaurant day.

PURPOSE:
  This package contains the domain types and pure algorithms that turn a
  day's opening counts plus its recorded sales into a live stock view,
  and that reconcile expected vs. physically-counted stock at day close.
  It knows nothing about HTTP, SQL, or UI - those live in api/, store/,
  and the out-of-scope frontend respectively.

KEY CONCEPTS IN THIS FILE (types.go):
  - DayLedger: The day's opening counts and open/closed state
  - SaleRecord: One transaction with its consumed-stock snapshot pinned
  - BeverageStock: Sparse (brand, size) -> count mapping
  - StockSnapshot: Computed "what's left right now", never persisted
  - CloseOutRecord: Immutable end-of-day reconciliation result

DESIGN PRINCIPLES:
  1. Stock is a fold over history: available stock is always recomputed
     from opening counts minus the sum over currently-existing sales.
     There is no stored running counter that can drift.
  2. Precision: perishable units and cash use decimal.Decimal. The
     perishable good is sold in eighth portions, so every perishable
     quantity must sit on the 1/8 grid.
  3. Pinned derived fields: a sale's consumption and total are computed
     once at write time and stored, so later catalog price changes never
     rewrite history.
  4. Asymmetric stock policy: perishable scarcity hard-rejects a sale,
     beverage scarcity only warns (and the computed view clamps beverage
     counts at zero per key). This is a business rule, not a bug.

SEE ALSO:
  - stock.go: The fold (ComputeStock) and the consumption formula
  - errors.go: Error taxonomy
  - store.go: Persistence interface
*/
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERISHABLE UNITS - Whole units sold in eighth portions
// =============================================================================

// Eighth is the granularity of the perishable good. Portions are whole,
// half, quarter or eighth, so every valid quantity is a multiple of 0.125.
var Eighth = decimal.New(125, -3)

// Units builds a perishable quantity from a float. Callers must ensure the
// value sits on the eighth grid; ValidateLineItems enforces it for input.
func Units(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// Cash builds a currency amount from a float.
func Cash(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// OnEighthGrid reports whether d is a multiple of 0.125.
func OnEighthGrid(d decimal.Decimal) bool {
	return d.Mod(Eighth).IsZero()
}

// =============================================================================
// BEVERAGE STOCK - Sparse two-level (brand -> size -> count) mapping
// =============================================================================

// Brand and SizeVariant are open enumerations: new brands and sizes appear
// without a schema change.
type Brand string
type SizeVariant string

// BeverageKey identifies one stocked beverage variant.
type BeverageKey struct {
	Brand Brand
	Size  SizeVariant
}

// BeverageStock maps brand -> size -> count. Counts are whole cans/bottles.
type BeverageStock map[Brand]map[SizeVariant]int

// Clone returns a deep copy. Mutating the copy never touches the original.
func (s BeverageStock) Clone() BeverageStock {
	if s == nil {
		return BeverageStock{}
	}
	out := make(BeverageStock, len(s))
	for brand, sizes := range s {
		out[brand] = make(map[SizeVariant]int, len(sizes))
		for size, n := range sizes {
			out[brand][size] = n
		}
	}
	return out
}

// Count returns the count for a key, and whether the key is stocked at all.
// A missing key is distinguishable from an explicit zero so that catalog
// drift (selling a brand the ledger has never seen) can be surfaced.
func (s BeverageStock) Count(key BeverageKey) (int, bool) {
	sizes, ok := s[key.Brand]
	if !ok {
		return 0, false
	}
	n, ok := sizes[key.Size]
	return n, ok
}

// Lookup is Count with an explicit error for unknown keys.
func (s BeverageStock) Lookup(key BeverageKey) (int, error) {
	n, ok := s.Count(key)
	if !ok {
		return 0, &UnknownBeverageError{Key: key}
	}
	return n, nil
}

// Set assigns a count, creating the brand level as needed.
func (s BeverageStock) Set(key BeverageKey, n int) {
	sizes, ok := s[key.Brand]
	if !ok {
		sizes = make(map[SizeVariant]int)
		s[key.Brand] = sizes
	}
	sizes[key.Size] = n
}

// Add increments a key by n (n may be negative).
func (s BeverageStock) Add(key BeverageKey, n int) {
	cur, _ := s.Count(key)
	s.Set(key, cur+n)
}

// Keys returns all keys in deterministic (brand, size) order.
func (s BeverageStock) Keys() []BeverageKey {
	var keys []BeverageKey
	for brand, sizes := range s {
		for size := range sizes {
			keys = append(keys, BeverageKey{Brand: brand, Size: size})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Brand != keys[j].Brand {
			return keys[i].Brand < keys[j].Brand
		}
		return keys[i].Size < keys[j].Size
	})
	return keys
}

// Total returns the sum over all keys.
func (s BeverageStock) Total() int {
	total := 0
	for _, sizes := range s {
		for _, n := range sizes {
			total += n
		}
	}
	return total
}

// =============================================================================
// DAY LEDGER - Opening counts and day state, one per calendar date
// =============================================================================

type DayState string

const (
	DayOpen   DayState = "open"
	DayClosed DayState = "closed"
)

// DayLedger holds the day's opening position. Created by an explicit
// open-day action; mutated only to flip State at close.
//
// INVARIANT: at most one non-Closed ledger per date.
type DayLedger struct {
	Date Date

	// Count of the perishable good at day start, in whole units on the
	// eighth grid. Never carried forward between days (it spoils).
	OpeningWholeUnits decimal.Decimal

	// Per-(brand, size) counts at day start. Seeded from the previous
	// close unless explicitly overridden (beverages do not spoil).
	OpeningBeverages BeverageStock

	StartingCash decimal.Decimal
	State        DayState
	OpenedAt     time.Time
}

// Opening is the input half of the stock fold.
type Opening struct {
	WholeUnits decimal.Decimal
	Beverages  BeverageStock
}

// Opening extracts the fold input from the ledger.
func (d *DayLedger) Opening() Opening {
	return Opening{WholeUnits: d.OpeningWholeUnits, Beverages: d.OpeningBeverages}
}

// =============================================================================
// SALE RECORD - One transaction, with derived fields pinned at write time
// =============================================================================

type SaleID string

type PaymentState string

const (
	PaymentUnpaid PaymentState = "unpaid"
	PaymentPaid   PaymentState = "paid"
)

type KitchenState string

const (
	KitchenPending KitchenState = "pending"
	KitchenReady   KitchenState = "ready"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// PaymentPortion is one leg of a (possibly split) settlement.
type PaymentPortion struct {
	Method PaymentMethod
	Amount decimal.Decimal
}

// LineItem is one line of a sale. UnitPrice, PerishableFraction and the
// beverage tag are resolved from the catalog when the line is added and
// stored here verbatim, so catalog changes never alter recorded sales.
type LineItem struct {
	ProductRef string
	Name       string
	Quantity   int

	UnitPrice decimal.Decimal

	// Whole units of the perishable good consumed per unit quantity,
	// in [0, 1] on the eighth grid. Zero for non-perishable products.
	PerishableFraction decimal.Decimal

	// Non-nil when the product is a stocked beverage.
	Beverage *BeverageKey
}

// SaleRecord is one dine-in or takeaway transaction.
//
// Lifecycle: created Unpaid/Pending; line items (and the derived fields)
// may be rewritten in place while the day is open and the sale unpaid;
// hard-deleted on cancellation. Once the day closes the record is
// immutable.
type SaleRecord struct {
	ID        SaleID
	Date      Date
	LineItems []LineItem

	// Derived from LineItems at write time, stored not recomputed.
	ConsumedWholeUnits decimal.Decimal
	ConsumedBeverages  BeverageStock
	Total              decimal.Decimal

	PaymentState PaymentState
	PaymentSplit []PaymentPortion
	KitchenState KitchenState

	// Empty means takeaway.
	TableRef string

	CreatedAt time.Time
}

// CashPaid returns the cash-attributed portion of a settled sale.
func (s *SaleRecord) CashPaid() decimal.Decimal {
	if s.PaymentState != PaymentPaid {
		return decimal.Zero
	}
	cash := decimal.Zero
	for _, p := range s.PaymentSplit {
		if p.Method == MethodCash {
			cash = cash.Add(p.Amount)
		}
	}
	return cash
}

// Consumption is the stock delta a set of line items implies.
type Consumption struct {
	WholeUnits decimal.Decimal
	Beverages  BeverageStock
}

// =============================================================================
// STOCK SNAPSHOT - Ephemeral "what's left right now", never persisted
// =============================================================================

// StockSnapshot is the result of the fold. AvailableWholeUnits is signed:
// a negative value means the ledger and reality disagree and must be
// surfaced, not hidden. AvailableBeverages is clamped at zero per key.
type StockSnapshot struct {
	Date                Date
	AvailableWholeUnits decimal.Decimal
	AvailableBeverages  BeverageStock
}

// =============================================================================
// CLOSE-OUT RECORD - Immutable end-of-day reconciliation
// =============================================================================

// CloseOutRecord compares the manager's physical counts against the
// computed expectation. Written exactly once per day; writing it flips
// the owning DayLedger to Closed.
//
// Sign convention: variance = physical - expected. Positive is surplus,
// negative is shrinkage.
type CloseOutRecord struct {
	Date Date

	PhysicalWholeUnits decimal.Decimal
	PhysicalBeverages  BeverageStock
	PhysicalCash       decimal.Decimal

	ExpectedWholeUnits decimal.Decimal
	ExpectedCash       decimal.Decimal

	// The clamped available beverage stock at close. Seeds the next
	// day's OpeningBeverages.
	ClosingBeverages BeverageStock

	VarianceWholeUnits decimal.Decimal
	VarianceCash       decimal.Decimal
	VarianceBeverages  map[BeverageKey]int

	Notes    string
	ClosedAt time.Time
}

// =============================================================================
// EXPENSE - Cash out during the day, reduces expected cash at close
// =============================================================================

type ExpenseID string

type Expense struct {
	ID          ExpenseID
	Date        Date
	Method      PaymentMethod
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}
