/*
handlers.go - HTTP API handlers for the day-ledger service

PURPOSE:
  Exposes the daybook service via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Days:
    POST   /api/days                    Open a trading day
    GET    /api/days/{date}             Get day ledger
    GET    /api/days/{date}/stock       Live stock snapshot
    POST   /api/days/{date}/close       Close out and reconcile
    GET    /api/days/{date}/closeout    Get the reconciliation record

  Sales:
    GET    /api/days/{date}/sales       List the day's sales
    POST   /api/days/{date}/sales       Record a sale
    PUT    /api/sales/{id}              Replace a sale's lines
    DELETE /api/sales/{id}              Cancel a sale
    POST   /api/sales/{id}/payment      Settle (possibly split) payment
    POST   /api/sales/{id}/ready        Mark kitchen-ready

  Expenses:
    GET    /api/days/{date}/expenses    List expenses
    POST   /api/days/{date}/expenses    Record an expense

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (daybook service)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Day not open, sale not found
  - 409: Conflict (day already open/closed, sale paid, stock refusal)
  - 500: Internal errors
  The mapping from domain sentinels lives in statusFor.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.
  Deploy behind the venue's LAN or a reverse proxy with auth.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - daybook/: Domain service
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/daybook"
	"github.com/braseria/poscore/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Day *daybook.Daybook
}

// NewHandler creates a new handler around the daybook service.
func NewHandler(day *daybook.Daybook) *Handler {
	return &Handler{Day: day}
}

// =============================================================================
// DAY HANDLERS
// =============================================================================

// OpenDay opens a trading day.
// POST /api/days
func (h *Handler) OpenDay(w http.ResponseWriter, r *http.Request) {
	var req OpenDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := ledger.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return
	}

	in := daybook.OpenDayInput{
		Date:              date,
		OpeningWholeUnits: decimal.NewFromFloat(req.OpeningWholeUnits),
		StartingCash:      decimal.NewFromFloat(req.StartingCash),
	}
	if req.Beverages != nil {
		in.Beverages = fromBeverageEntries(req.Beverages)
	}
	if req.Restock != nil {
		in.Restock = fromBeverageEntries(req.Restock)
	}

	day, err := h.Day.OpenDay(r.Context(), in)
	if err != nil {
		writeDomainError(w, "Failed to open day", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDayDTO(day))
}

// GetDay returns a day ledger.
// GET /api/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	day, err := h.Day.Day(r.Context(), date)
	if err != nil {
		writeDomainError(w, "Failed to get day", err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

// GetStock returns the live stock snapshot for a day.
// GET /api/days/{date}/stock
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	snap, err := h.Day.Snapshot(r.Context(), date)
	if err != nil {
		writeDomainError(w, "Failed to compute stock", err)
		return
	}
	writeJSON(w, http.StatusOK, toStockDTO(*snap))
}

// CloseDay reconciles physical counts and closes the day.
// POST /api/days/{date}/close
func (h *Handler) CloseDay(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	var req CloseDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	counts := daybook.PhysicalCounts{
		WholeUnits: decimal.NewFromFloat(req.WholeUnits),
		Beverages:  fromBeverageEntries(req.Beverages),
		Cash:       decimal.NewFromFloat(req.Cash),
	}

	rec, err := h.Day.CloseDay(r.Context(), date, counts, req.Notes)
	if err != nil {
		writeDomainError(w, "Failed to close day", err)
		return
	}
	writeJSON(w, http.StatusOK, toCloseOutDTO(rec))
}

// GetCloseOut returns the reconciliation record for a closed day.
// GET /api/days/{date}/closeout
func (h *Handler) GetCloseOut(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	rec, err := h.Day.CloseOut(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get close-out", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Close-out not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toCloseOutDTO(rec))
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// ListSales returns the day's sales in creation order.
// GET /api/days/{date}/sales
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	sales, err := h.Day.Sales(r.Context(), date)
	if err != nil {
		writeDomainError(w, "Failed to list sales", err)
		return
	}

	dtos := make([]SaleDTO, len(sales))
	for i := range sales {
		dtos[i] = toSaleDTO(&sales[i], nil)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordSale records a new sale against the day's stock.
// POST /api/days/{date}/sales
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	var req RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Day.RecordSale(r.Context(), date, toLineInputs(req.Lines), req.TableRef)
	if err != nil {
		writeDomainError(w, "Failed to record sale", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSaleDTO(&result.Sale, result.Warnings))
}

// UpdateSale replaces the lines of an unpaid sale.
// PUT /api/sales/{id}
func (h *Handler) UpdateSale(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	var req UpdateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.Day.UpdateSale(r.Context(), id, toLineInputs(req.Lines))
	if err != nil {
		writeDomainError(w, "Failed to update sale", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(&result.Sale, result.Warnings))
}

// CancelSale removes a sale; its consumed stock returns to the pool.
// DELETE /api/sales/{id}
func (h *Handler) CancelSale(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	if err := h.Day.CancelSale(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to cancel sale", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SettleSale records full payment on a sale.
// POST /api/sales/{id}/payment
func (h *Handler) SettleSale(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	var req SettleSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Split) == 0 {
		writeError(w, http.StatusBadRequest, "Payment split is required", nil)
		return
	}

	sale, err := h.Day.SettleSale(r.Context(), id, toPaymentSplit(req.Split))
	if err != nil {
		writeDomainError(w, "Failed to settle sale", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(sale, nil))
}

// MarkSaleReady flips the kitchen state to ready.
// POST /api/sales/{id}/ready
func (h *Handler) MarkSaleReady(w http.ResponseWriter, r *http.Request) {
	id := ledger.SaleID(chi.URLParam(r, "id"))

	sale, err := h.Day.MarkSaleReady(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to mark sale ready", err)
		return
	}
	writeJSON(w, http.StatusOK, toSaleDTO(sale, nil))
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns the day's expenses.
// GET /api/days/{date}/expenses
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	expenses, err := h.Day.Expenses(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expenses", err)
		return
	}

	dtos := make([]ExpenseDTO, len(expenses))
	for i, exp := range expenses {
		dtos[i] = toExpenseDTO(exp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AddExpense records a cash-out or card expense against the day.
// POST /api/days/{date}/expenses
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r)
	if !ok {
		return
	}

	var req AddExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	exp, err := h.Day.AddExpense(r.Context(), date,
		ledger.PaymentMethod(req.Method), decimal.NewFromFloat(req.Amount), req.Description)
	if err != nil {
		writeDomainError(w, "Failed to add expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(*exp))
}

// =============================================================================
// HELPERS
// =============================================================================

func dateParam(w http.ResponseWriter, r *http.Request) (ledger.Date, bool) {
	date, err := ledger.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err)
		return ledger.Date{}, false
	}
	return date, true
}

// statusFor maps domain sentinels to HTTP statuses. Anything
// unrecognized is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrMalformedLineItem),
		errors.Is(err, ledger.ErrUnknownProduct),
		errors.Is(err, ledger.ErrUnknownBeverage),
		errors.Is(err, ledger.ErrPaymentSplitMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrDayNotOpen),
		errors.Is(err, ledger.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDayAlreadyClosed),
		errors.Is(err, ledger.ErrDayAlreadyOpen),
		errors.Is(err, ledger.ErrSaleAlreadyPaid),
		errors.Is(err, ledger.ErrInsufficientPerishableStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, statusFor(err), message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
