/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Days:
    DayDTO, OpenDayRequest, StockDTO, CloseDayRequest, CloseOutDTO

  Sales:
    SaleDTO, RecordSaleRequest, UpdateSaleRequest, SettleSaleRequest

  Expenses:
    ExpenseDTO, AddExpenseRequest

AMOUNTS:
  Money and perishable quantities travel as JSON numbers. Internally
  everything is decimal; conversion happens at this boundary only.

BEVERAGES:
  Beverage stock is a nested brand/size map internally; on the wire it
  is a flat list of {brand, size, count} entries, which is friendlier
  to clients and keeps ordering stable.

VALIDATION:
  Validation is done in handlers and in the daybook service, not in
  DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - daybook/daybook.go: Domain service these map onto
*/
package api

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/daybook"
	"github.com/braseria/poscore/ledger"
)

// =============================================================================
// BEVERAGE ENCODING
// =============================================================================

// BeverageEntryDTO is one brand/size count on the wire.
type BeverageEntryDTO struct {
	Brand string `json:"brand"`
	Size  string `json:"size"`
	Count int    `json:"count"`
}

func toBeverageEntries(stock ledger.BeverageStock) []BeverageEntryDTO {
	entries := make([]BeverageEntryDTO, 0, len(stock))
	for _, key := range stock.Keys() {
		count, _ := stock.Count(key)
		entries = append(entries, BeverageEntryDTO{
			Brand: string(key.Brand),
			Size:  string(key.Size),
			Count: count,
		})
	}
	return entries
}

func fromBeverageEntries(entries []BeverageEntryDTO) ledger.BeverageStock {
	stock := make(ledger.BeverageStock)
	for _, e := range entries {
		stock.Set(ledger.BeverageKey{Brand: ledger.Brand(e.Brand), Size: ledger.SizeVariant(e.Size)}, e.Count)
	}
	return stock
}

func toVarianceEntries(variances map[ledger.BeverageKey]int) []BeverageEntryDTO {
	entries := make([]BeverageEntryDTO, 0, len(variances))
	for key, n := range variances {
		entries = append(entries, BeverageEntryDTO{Brand: string(key.Brand), Size: string(key.Size), Count: n})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Brand != entries[j].Brand {
			return entries[i].Brand < entries[j].Brand
		}
		return entries[i].Size < entries[j].Size
	})
	return entries
}

// =============================================================================
// DAY TYPES
// =============================================================================

// DayDTO represents a day ledger in API responses.
type DayDTO struct {
	Date              string             `json:"date"`
	OpeningWholeUnits float64            `json:"opening_whole_units"`
	OpeningBeverages  []BeverageEntryDTO `json:"opening_beverages"`
	StartingCash      float64            `json:"starting_cash"`
	State             string             `json:"state"`
	OpenedAt          string             `json:"opened_at,omitempty"`
}

func toDayDTO(day *ledger.DayLedger) DayDTO {
	dto := DayDTO{
		Date:              day.Date.String(),
		OpeningWholeUnits: day.OpeningWholeUnits.InexactFloat64(),
		OpeningBeverages:  toBeverageEntries(day.OpeningBeverages),
		StartingCash:      day.StartingCash.InexactFloat64(),
		State:             string(day.State),
	}
	if !day.OpenedAt.IsZero() {
		dto.OpenedAt = day.OpenedAt.Format(time.RFC3339)
	}
	return dto
}

// OpenDayRequest is the request to open a trading day.
type OpenDayRequest struct {
	Date              string             `json:"date"`
	OpeningWholeUnits float64            `json:"opening_whole_units"`
	StartingCash      float64            `json:"starting_cash"`
	Beverages         []BeverageEntryDTO `json:"beverages,omitempty"`
	Restock           []BeverageEntryDTO `json:"restock,omitempty"`
}

// StockDTO is the live stock snapshot for a day.
type StockDTO struct {
	Date                string             `json:"date"`
	AvailableWholeUnits float64            `json:"available_whole_units"`
	AvailableBeverages  []BeverageEntryDTO `json:"available_beverages"`
}

func toStockDTO(snap ledger.StockSnapshot) StockDTO {
	return StockDTO{
		Date:                snap.Date.String(),
		AvailableWholeUnits: snap.AvailableWholeUnits.InexactFloat64(),
		AvailableBeverages:  toBeverageEntries(snap.AvailableBeverages),
	}
}

// CloseDayRequest carries the physical end-of-day counts.
type CloseDayRequest struct {
	WholeUnits float64            `json:"whole_units"`
	Beverages  []BeverageEntryDTO `json:"beverages"`
	Cash       float64            `json:"cash"`
	Notes      string             `json:"notes,omitempty"`
}

// CloseOutDTO represents a reconciliation record in API responses.
type CloseOutDTO struct {
	Date               string             `json:"date"`
	PhysicalWholeUnits float64            `json:"physical_whole_units"`
	PhysicalBeverages  []BeverageEntryDTO `json:"physical_beverages"`
	PhysicalCash       float64            `json:"physical_cash"`
	ExpectedWholeUnits float64            `json:"expected_whole_units"`
	ExpectedCash       float64            `json:"expected_cash"`
	ClosingBeverages   []BeverageEntryDTO `json:"closing_beverages"`
	VarianceWholeUnits float64            `json:"variance_whole_units"`
	VarianceCash       float64            `json:"variance_cash"`
	VarianceBeverages  []BeverageEntryDTO `json:"variance_beverages"`
	Notes              string             `json:"notes,omitempty"`
	ClosedAt           string             `json:"closed_at"`
}

func toCloseOutDTO(rec *ledger.CloseOutRecord) CloseOutDTO {
	return CloseOutDTO{
		Date:               rec.Date.String(),
		PhysicalWholeUnits: rec.PhysicalWholeUnits.InexactFloat64(),
		PhysicalBeverages:  toBeverageEntries(rec.PhysicalBeverages),
		PhysicalCash:       rec.PhysicalCash.InexactFloat64(),
		ExpectedWholeUnits: rec.ExpectedWholeUnits.InexactFloat64(),
		ExpectedCash:       rec.ExpectedCash.InexactFloat64(),
		ClosingBeverages:   toBeverageEntries(rec.ClosingBeverages),
		VarianceWholeUnits: rec.VarianceWholeUnits.InexactFloat64(),
		VarianceCash:       rec.VarianceCash.InexactFloat64(),
		VarianceBeverages:  toVarianceEntries(rec.VarianceBeverages),
		Notes:              rec.Notes,
		ClosedAt:           rec.ClosedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// SALE TYPES
// =============================================================================

// LineItemDTO is one line of a sale in API responses.
type LineItemDTO struct {
	ProductRef         string  `json:"product_ref"`
	Name               string  `json:"name"`
	Quantity           int     `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	PerishableFraction float64 `json:"perishable_fraction"`
}

// SaleDTO represents a sale in API responses.
type SaleDTO struct {
	ID                 string        `json:"id"`
	Date               string        `json:"date"`
	LineItems          []LineItemDTO `json:"line_items"`
	ConsumedWholeUnits float64       `json:"consumed_whole_units"`
	Total              float64       `json:"total"`
	PaymentState       string        `json:"payment_state"`
	PaymentSplit       []PaymentDTO  `json:"payment_split,omitempty"`
	KitchenState       string        `json:"kitchen_state"`
	TableRef           string        `json:"table_ref,omitempty"`
	CreatedAt          string        `json:"created_at"`
	Warnings           []string      `json:"warnings,omitempty"`
}

// PaymentDTO is one portion of a split payment.
type PaymentDTO struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

func toSaleDTO(sale *ledger.SaleRecord, warnings []ledger.BeverageShortage) SaleDTO {
	items := make([]LineItemDTO, len(sale.LineItems))
	for i, li := range sale.LineItems {
		items[i] = LineItemDTO{
			ProductRef:         li.ProductRef,
			Name:               li.Name,
			Quantity:           li.Quantity,
			UnitPrice:          li.UnitPrice.InexactFloat64(),
			PerishableFraction: li.PerishableFraction.InexactFloat64(),
		}
	}
	dto := SaleDTO{
		ID:                 string(sale.ID),
		Date:               sale.Date.String(),
		LineItems:          items,
		ConsumedWholeUnits: sale.ConsumedWholeUnits.InexactFloat64(),
		Total:              sale.Total.InexactFloat64(),
		PaymentState:       string(sale.PaymentState),
		KitchenState:       string(sale.KitchenState),
		TableRef:           sale.TableRef,
		CreatedAt:          sale.CreatedAt.Format(time.RFC3339),
	}
	for _, p := range sale.PaymentSplit {
		dto.PaymentSplit = append(dto.PaymentSplit, PaymentDTO{
			Method: string(p.Method),
			Amount: p.Amount.InexactFloat64(),
		})
	}
	for _, warning := range warnings {
		dto.Warnings = append(dto.Warnings, warning.String())
	}
	return dto
}

// RecordSaleRequest is the request to record a sale.
type RecordSaleRequest struct {
	Lines    []SaleLineRequest `json:"lines"`
	TableRef string            `json:"table_ref,omitempty"`
}

// SaleLineRequest is one requested line of a sale.
type SaleLineRequest struct {
	ProductRef string `json:"product_ref"`
	Quantity   int    `json:"quantity"`
}

func toLineInputs(lines []SaleLineRequest) []daybook.LineInput {
	inputs := make([]daybook.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = daybook.LineInput{ProductRef: l.ProductRef, Quantity: l.Quantity}
	}
	return inputs
}

// UpdateSaleRequest replaces a sale's lines wholesale.
type UpdateSaleRequest struct {
	Lines []SaleLineRequest `json:"lines"`
}

// SettleSaleRequest records payment for a sale.
type SettleSaleRequest struct {
	Split []PaymentDTO `json:"split"`
}

func toPaymentSplit(split []PaymentDTO) []ledger.PaymentPortion {
	portions := make([]ledger.PaymentPortion, len(split))
	for i, p := range split {
		portions[i] = ledger.PaymentPortion{
			Method: ledger.PaymentMethod(p.Method),
			Amount: decimal.NewFromFloat(p.Amount),
		}
	}
	return portions
}

// =============================================================================
// EXPENSE TYPES
// =============================================================================

// ExpenseDTO represents an expense in API responses.
type ExpenseDTO struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Method      string  `json:"method"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func toExpenseDTO(exp ledger.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          string(exp.ID),
		Date:        exp.Date.String(),
		Method:      string(exp.Method),
		Amount:      exp.Amount.InexactFloat64(),
		Description: exp.Description,
		CreatedAt:   exp.CreatedAt.Format(time.RFC3339),
	}
}

// AddExpenseRequest is the request to record an expense.
type AddExpenseRequest struct {
	Method      string  `json:"method"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
}

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
