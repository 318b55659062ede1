/*
errors.go - Centralized error taxonomy for the ledger core

PURPOSE:
  All error kinds in one place. Callers classify with errors.Is against
  the sentinels; structured types carry the quantities a UI needs to
  render a precise message (which key, requested vs. available).

PROPAGATION POLICY:
  Hard errors abort the operation. Nothing is corrected automatically
  except the beverage floor-at-zero clamp in stock.go, which is a
  documented business rule, not error suppression. In particular a
  persistence failure is NEVER downgraded to an empty list or default
  value - a swallowed write failure would show staff a confirmed sale
  whose stock was never decremented.

NOTE:
  Beverage shortage is deliberately NOT an error. It is advisory data
  attached to a successful result (see daybook.SaleResult).

SEE ALSO:
  - daybook/: Where most of these are produced
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDayNotOpen is returned when an operation targets a date with no
	// open DayLedger.
	ErrDayNotOpen = errors.New("no open day ledger for date")

	// ErrDayAlreadyClosed is returned for any mutation after close. The
	// transition to Closed is terminal.
	ErrDayAlreadyClosed = errors.New("day ledger already closed")

	// ErrDayAlreadyOpen is returned when opening a date that already has
	// a ledger. A date gets exactly one ledger, ever.
	ErrDayAlreadyOpen = errors.New("day ledger already exists for date")

	// ErrInsufficientPerishableStock is the hard admission rejection.
	ErrInsufficientPerishableStock = errors.New("insufficient perishable stock")

	// ErrSaleNotFound is returned when a mutation references a sale that
	// does not exist (possibly because it was cancelled).
	ErrSaleNotFound = errors.New("sale not found")

	// ErrSaleAlreadyPaid is returned when editing a settled sale.
	ErrSaleAlreadyPaid = errors.New("sale already paid")

	// ErrMalformedLineItem is returned for structurally invalid input.
	ErrMalformedLineItem = errors.New("malformed line item")

	// ErrUnknownProduct is returned when the catalog has no such product.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrUnknownBeverage is returned by explicit beverage lookups for a
	// (brand, size) key the stock has never seen. The fold itself never
	// produces this; it exists to catch catalog/ledger drift early.
	ErrUnknownBeverage = errors.New("unknown beverage key")

	// ErrPaymentSplitMismatch is returned when a settlement's portions do
	// not sum to the sale total.
	ErrPaymentSplitMismatch = errors.New("payment split does not match sale total")

	// ErrPersistence wraps storage-collaborator failures. Always
	// propagated, never substituted with empty data.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientPerishableStockError reports a hard admission rejection
// with the exact quantities involved.
type InsufficientPerishableStockError struct {
	Date      Date
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientPerishableStockError) Error() string {
	return fmt.Sprintf("insufficient perishable stock on %s: requested %s, available %s",
		e.Date, e.Requested, e.Available)
}

func (e *InsufficientPerishableStockError) Unwrap() error {
	return ErrInsufficientPerishableStock
}

// BeverageShortage describes one (brand, size) key a sale would take
// below zero. It is NOT an error: sales with shortages still succeed and
// carry their shortages as warnings.
type BeverageShortage struct {
	Key       BeverageKey
	Requested int
	Available int
}

func (s BeverageShortage) String() string {
	return fmt.Sprintf("%s %s: requested %d, available %d",
		s.Key.Brand, s.Key.Size, s.Requested, s.Available)
}

// UnknownProductError reports a line item referencing a product the
// catalog does not know.
type UnknownProductError struct {
	Ref string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product reference: %s", e.Ref)
}

func (e *UnknownProductError) Unwrap() error { return ErrUnknownProduct }

// UnknownBeverageError reports a lookup for a never-stocked key.
type UnknownBeverageError struct {
	Key BeverageKey
}

func (e *UnknownBeverageError) Error() string {
	return fmt.Sprintf("unknown beverage key: %s %s", e.Key.Brand, e.Key.Size)
}

func (e *UnknownBeverageError) Unwrap() error { return ErrUnknownBeverage }

// MalformedLineItemError pinpoints the offending line.
type MalformedLineItemError struct {
	Index      int
	ProductRef string
	Reason     string
}

func (e *MalformedLineItemError) Error() string {
	if e.ProductRef == "" {
		return fmt.Sprintf("malformed line item: %s", e.Reason)
	}
	return fmt.Sprintf("malformed line item %d (%s): %s", e.Index, e.ProductRef, e.Reason)
}

func (e *MalformedLineItemError) Unwrap() error { return ErrMalformedLineItem }

// PaymentSplitMismatchError reports the settlement totals involved.
type PaymentSplitMismatchError struct {
	SaleID    SaleID
	SaleTotal decimal.Decimal
	SplitSum  decimal.Decimal
}

func (e *PaymentSplitMismatchError) Error() string {
	return fmt.Sprintf("payment split for sale %s sums to %s, sale total is %s",
		e.SaleID, e.SplitSum, e.SaleTotal)
}

func (e *PaymentSplitMismatchError) Unwrap() error { return ErrPaymentSplitMismatch }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a business-rule rejection (HTTP 4xx territory).
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientPerishableStock) ||
		errors.Is(err, ErrDayAlreadyClosed) ||
		errors.Is(err, ErrDayAlreadyOpen) ||
		errors.Is(err, ErrSaleAlreadyPaid) ||
		errors.Is(err, ErrMalformedLineItem) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, ErrPaymentSplitMismatch)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDayNotOpen) ||
		errors.Is(err, ErrSaleNotFound) ||
		errors.Is(err, ErrUnknownBeverage)
}
