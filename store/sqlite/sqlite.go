/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Persists day ledgers, sales, close-outs and expenses. In production
  the same patterns apply to PostgreSQL - only minor dialect changes.

INTERFACES IMPLEMENTED:
  ledger.Store:   Day/sale/close-out/expense persistence
  ledger.TxStore: WithTx transactional scope

KEY TABLES:
  day_ledgers: One row per calendar date (opening counts + state)
  sales:       Current sales; cancellation is a hard DELETE
  closeouts:   Immutable reconciliation records, one per closed day
  expenses:    Cash-outs per date

ENCODING:
  Decimal quantities are stored as TEXT (exact, no float drift).
  Line items, beverage maps and payment splits are stored as JSON
  columns: they are always read and written whole, never queried into.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers
  don't block, single writer at a time, better crash recovery.

CONCURRENCY:
  A sync.RWMutex serializes access. All SQL goes through lock-free
  helpers over a shared dbtx interface so WithTx can reuse them inside
  the held lock without re-entering it.

USAGE:
  store, err := sqlite.New("./data/poscore.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/ledger"
)

// Store implements ledger.Store and ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Day ledgers: one per calendar date
	CREATE TABLE IF NOT EXISTS day_ledgers (
		date TEXT PRIMARY KEY,
		opening_whole_units TEXT NOT NULL,
		opening_beverages_json TEXT NOT NULL,
		starting_cash TEXT NOT NULL,
		state TEXT NOT NULL,
		opened_at TEXT NOT NULL
	);

	-- Sales: mutable while the day is open, hard-deleted on cancel
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		line_items_json TEXT NOT NULL,
		consumed_whole_units TEXT NOT NULL,
		consumed_beverages_json TEXT NOT NULL,
		total TEXT NOT NULL,
		payment_state TEXT NOT NULL,
		payment_split_json TEXT,
		kitchen_state TEXT NOT NULL,
		table_ref TEXT,
		created_at TEXT NOT NULL
	);

	-- Hot path: every stock fold lists the day's sales
	CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(date, created_at);

	-- Close-outs: write-once reconciliation records
	CREATE TABLE IF NOT EXISTS closeouts (
		date TEXT PRIMARY KEY,
		physical_whole_units TEXT NOT NULL,
		physical_beverages_json TEXT NOT NULL,
		physical_cash TEXT NOT NULL,
		expected_whole_units TEXT NOT NULL,
		expected_cash TEXT NOT NULL,
		closing_beverages_json TEXT NOT NULL,
		variance_whole_units TEXT NOT NULL,
		variance_cash TEXT NOT NULL,
		variance_beverages_json TEXT NOT NULL,
		notes TEXT,
		closed_at TEXT NOT NULL
	);

	-- Expenses: cash-outs per date
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		method TEXT NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DAY LEDGERS
// =============================================================================

func (s *Store) GetDay(ctx context.Context, date ledger.Date) (*ledger.DayLedger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getDay(ctx, s.db, date)
}

func getDay(ctx context.Context, db dbtx, date ledger.Date) (*ledger.DayLedger, error) {
	row := db.QueryRowContext(ctx,
		`SELECT date, opening_whole_units, opening_beverages_json, starting_cash, state, opened_at
		 FROM day_ledgers WHERE date = ?`, date.String())

	var (
		day           ledger.DayLedger
		dateStr       string
		units, cash   string
		beveragesJSON string
		openedAt      string
	)
	err := row.Scan(&dateStr, &units, &beveragesJSON, &cash, &day.State, &openedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan day ledger: %w", err)
	}

	if day.Date, err = ledger.ParseDate(dateStr); err != nil {
		return nil, err
	}
	if day.OpeningWholeUnits, err = decimal.NewFromString(units); err != nil {
		return nil, fmt.Errorf("corrupt opening_whole_units: %w", err)
	}
	if day.StartingCash, err = decimal.NewFromString(cash); err != nil {
		return nil, fmt.Errorf("corrupt starting_cash: %w", err)
	}
	if err := json.Unmarshal([]byte(beveragesJSON), &day.OpeningBeverages); err != nil {
		return nil, fmt.Errorf("corrupt opening_beverages_json: %w", err)
	}
	day.OpenedAt, _ = time.Parse(time.RFC3339, openedAt)
	return &day, nil
}

func (s *Store) PutDay(ctx context.Context, day ledger.DayLedger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putDay(ctx, s.db, day)
}

func putDay(ctx context.Context, db dbtx, day ledger.DayLedger) error {
	beveragesJSON, err := json.Marshal(day.OpeningBeverages)
	if err != nil {
		return fmt.Errorf("failed to encode opening beverages: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO day_ledgers (date, opening_whole_units, opening_beverages_json, starting_cash, state, opened_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			opening_whole_units = excluded.opening_whole_units,
			opening_beverages_json = excluded.opening_beverages_json,
			starting_cash = excluded.starting_cash,
			state = excluded.state
	`,
		day.Date.String(),
		day.OpeningWholeUnits.String(),
		string(beveragesJSON),
		day.StartingCash.String(),
		day.State,
		day.OpenedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to put day ledger: %w", err)
	}
	return nil
}

// =============================================================================
// SALES
// =============================================================================

func (s *Store) ListSales(ctx context.Context, date ledger.Date) ([]ledger.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSales(ctx, s.db, date)
}

func listSales(ctx context.Context, db dbtx, date ledger.Date) ([]ledger.SaleRecord, error) {
	rows, err := db.QueryContext(ctx, saleColumns+` FROM sales WHERE date = ? ORDER BY created_at ASC, id ASC`, date.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []ledger.SaleRecord
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, rows.Err()
}

func (s *Store) GetSale(ctx context.Context, id ledger.SaleID) (*ledger.SaleRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSale(ctx, s.db, id)
}

func getSale(ctx context.Context, db dbtx, id ledger.SaleID) (*ledger.SaleRecord, error) {
	rows, err := db.QueryContext(ctx, saleColumns+` FROM sales WHERE id = ?`, string(id))
	if err != nil {
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	sale, err := scanSale(rows)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

const saleColumns = `SELECT id, date, line_items_json, consumed_whole_units, consumed_beverages_json,
	total, payment_state, payment_split_json, kitchen_state, table_ref, created_at`

func scanSale(rows *sql.Rows) (ledger.SaleRecord, error) {
	var (
		sale          ledger.SaleRecord
		dateStr       string
		itemsJSON     string
		units, total  string
		beveragesJSON string
		splitJSON     sql.NullString
		tableRef      sql.NullString
		createdAt     string
	)
	err := rows.Scan(&sale.ID, &dateStr, &itemsJSON, &units, &beveragesJSON,
		&total, &sale.PaymentState, &splitJSON, &sale.KitchenState, &tableRef, &createdAt)
	if err != nil {
		return sale, fmt.Errorf("failed to scan sale: %w", err)
	}

	if sale.Date, err = ledger.ParseDate(dateStr); err != nil {
		return sale, err
	}
	if err := json.Unmarshal([]byte(itemsJSON), &sale.LineItems); err != nil {
		return sale, fmt.Errorf("corrupt line_items_json: %w", err)
	}
	if sale.ConsumedWholeUnits, err = decimal.NewFromString(units); err != nil {
		return sale, fmt.Errorf("corrupt consumed_whole_units: %w", err)
	}
	if err := json.Unmarshal([]byte(beveragesJSON), &sale.ConsumedBeverages); err != nil {
		return sale, fmt.Errorf("corrupt consumed_beverages_json: %w", err)
	}
	if sale.Total, err = decimal.NewFromString(total); err != nil {
		return sale, fmt.Errorf("corrupt total: %w", err)
	}
	if splitJSON.Valid && splitJSON.String != "" {
		if err := json.Unmarshal([]byte(splitJSON.String), &sale.PaymentSplit); err != nil {
			return sale, fmt.Errorf("corrupt payment_split_json: %w", err)
		}
	}
	sale.TableRef = tableRef.String
	sale.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return sale, nil
}

func (s *Store) PutSale(ctx context.Context, sale ledger.SaleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putSale(ctx, s.db, sale)
}

func putSale(ctx context.Context, db dbtx, sale ledger.SaleRecord) error {
	itemsJSON, err := json.Marshal(sale.LineItems)
	if err != nil {
		return fmt.Errorf("failed to encode line items: %w", err)
	}
	beveragesJSON, err := json.Marshal(sale.ConsumedBeverages)
	if err != nil {
		return fmt.Errorf("failed to encode consumed beverages: %w", err)
	}
	var splitJSON []byte
	if len(sale.PaymentSplit) > 0 {
		if splitJSON, err = json.Marshal(sale.PaymentSplit); err != nil {
			return fmt.Errorf("failed to encode payment split: %w", err)
		}
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO sales (id, date, line_items_json, consumed_whole_units, consumed_beverages_json,
			total, payment_state, payment_split_json, kitchen_state, table_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			line_items_json = excluded.line_items_json,
			consumed_whole_units = excluded.consumed_whole_units,
			consumed_beverages_json = excluded.consumed_beverages_json,
			total = excluded.total,
			payment_state = excluded.payment_state,
			payment_split_json = excluded.payment_split_json,
			kitchen_state = excluded.kitchen_state,
			table_ref = excluded.table_ref
	`,
		string(sale.ID),
		sale.Date.String(),
		string(itemsJSON),
		sale.ConsumedWholeUnits.String(),
		string(beveragesJSON),
		sale.Total.String(),
		sale.PaymentState,
		nullString(string(splitJSON)),
		sale.KitchenState,
		nullString(sale.TableRef),
		sale.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to put sale: %w", err)
	}
	return nil
}

func (s *Store) DeleteSale(ctx context.Context, id ledger.SaleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return deleteSale(ctx, s.db, id)
}

func deleteSale(ctx context.Context, db dbtx, id ledger.SaleID) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM sales WHERE id = ?`, string(id)); err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	return nil
}

// =============================================================================
// CLOSE-OUTS
// =============================================================================

// beverageVarianceRow is the JSON shape for the variance map (struct keys
// can't be JSON object keys).
type beverageVarianceRow struct {
	Brand ledger.Brand       `json:"brand"`
	Size  ledger.SizeVariant `json:"size"`
	Count int                `json:"count"`
}

func (s *Store) PutCloseOut(ctx context.Context, rec ledger.CloseOutRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putCloseOut(ctx, s.db, rec)
}

func putCloseOut(ctx context.Context, db dbtx, rec ledger.CloseOutRecord) error {
	physicalJSON, err := json.Marshal(rec.PhysicalBeverages)
	if err != nil {
		return fmt.Errorf("failed to encode physical beverages: %w", err)
	}
	closingJSON, err := json.Marshal(rec.ClosingBeverages)
	if err != nil {
		return fmt.Errorf("failed to encode closing beverages: %w", err)
	}

	var varianceRows []beverageVarianceRow
	for key, n := range rec.VarianceBeverages {
		varianceRows = append(varianceRows, beverageVarianceRow{Brand: key.Brand, Size: key.Size, Count: n})
	}
	varianceJSON, err := json.Marshal(varianceRows)
	if err != nil {
		return fmt.Errorf("failed to encode beverage variances: %w", err)
	}

	// Close-outs are write-once: plain INSERT, a second close is a bug.
	_, err = db.ExecContext(ctx, `
		INSERT INTO closeouts (date, physical_whole_units, physical_beverages_json, physical_cash,
			expected_whole_units, expected_cash, closing_beverages_json,
			variance_whole_units, variance_cash, variance_beverages_json, notes, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Date.String(),
		rec.PhysicalWholeUnits.String(),
		string(physicalJSON),
		rec.PhysicalCash.String(),
		rec.ExpectedWholeUnits.String(),
		rec.ExpectedCash.String(),
		string(closingJSON),
		rec.VarianceWholeUnits.String(),
		rec.VarianceCash.String(),
		string(varianceJSON),
		rec.Notes,
		rec.ClosedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to put close-out: %w", err)
	}
	return nil
}

func (s *Store) GetCloseOut(ctx context.Context, date ledger.Date) (*ledger.CloseOutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryCloseOut(ctx, s.db, `WHERE date = ?`, date.String())
}

func (s *Store) LatestCloseOut(ctx context.Context, before ledger.Date) (*ledger.CloseOutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryCloseOut(ctx, s.db, `WHERE date < ? ORDER BY date DESC LIMIT 1`, before.String())
}

func queryCloseOut(ctx context.Context, db dbtx, where string, args ...any) (*ledger.CloseOutRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT date, physical_whole_units, physical_beverages_json, physical_cash,
			expected_whole_units, expected_cash, closing_beverages_json,
			variance_whole_units, variance_cash, variance_beverages_json, notes, closed_at
		FROM closeouts `+where, args...)

	var (
		rec                                            ledger.CloseOutRecord
		dateStr                                        string
		physUnits, physCash, expUnits, expCash         string
		varUnits, varCash                              string
		physicalJSON, closingJSON, varianceJSON, notes sql.NullString
		closedAt                                       string
	)
	err := row.Scan(&dateStr, &physUnits, &physicalJSON, &physCash,
		&expUnits, &expCash, &closingJSON,
		&varUnits, &varCash, &varianceJSON, &notes, &closedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan close-out: %w", err)
	}

	if rec.Date, err = ledger.ParseDate(dateStr); err != nil {
		return nil, err
	}
	if rec.PhysicalWholeUnits, err = decimal.NewFromString(physUnits); err != nil {
		return nil, fmt.Errorf("corrupt physical_whole_units: %w", err)
	}
	if rec.PhysicalCash, err = decimal.NewFromString(physCash); err != nil {
		return nil, fmt.Errorf("corrupt physical_cash: %w", err)
	}
	if rec.ExpectedWholeUnits, err = decimal.NewFromString(expUnits); err != nil {
		return nil, fmt.Errorf("corrupt expected_whole_units: %w", err)
	}
	if rec.ExpectedCash, err = decimal.NewFromString(expCash); err != nil {
		return nil, fmt.Errorf("corrupt expected_cash: %w", err)
	}
	if rec.VarianceWholeUnits, err = decimal.NewFromString(varUnits); err != nil {
		return nil, fmt.Errorf("corrupt variance_whole_units: %w", err)
	}
	if rec.VarianceCash, err = decimal.NewFromString(varCash); err != nil {
		return nil, fmt.Errorf("corrupt variance_cash: %w", err)
	}
	if err := json.Unmarshal([]byte(physicalJSON.String), &rec.PhysicalBeverages); err != nil {
		return nil, fmt.Errorf("corrupt physical_beverages_json: %w", err)
	}
	if err := json.Unmarshal([]byte(closingJSON.String), &rec.ClosingBeverages); err != nil {
		return nil, fmt.Errorf("corrupt closing_beverages_json: %w", err)
	}

	var varianceRows []beverageVarianceRow
	if varianceJSON.Valid && varianceJSON.String != "" {
		if err := json.Unmarshal([]byte(varianceJSON.String), &varianceRows); err != nil {
			return nil, fmt.Errorf("corrupt variance_beverages_json: %w", err)
		}
	}
	rec.VarianceBeverages = make(map[ledger.BeverageKey]int, len(varianceRows))
	for _, r := range varianceRows {
		rec.VarianceBeverages[ledger.BeverageKey{Brand: r.Brand, Size: r.Size}] = r.Count
	}

	rec.Notes = notes.String
	rec.ClosedAt, _ = time.Parse(time.RFC3339, closedAt)
	return &rec, nil
}

// =============================================================================
// EXPENSES
// =============================================================================

func (s *Store) PutExpense(ctx context.Context, exp ledger.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return putExpense(ctx, s.db, exp)
}

func putExpense(ctx context.Context, db dbtx, exp ledger.Expense) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO expenses (id, date, method, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		string(exp.ID),
		exp.Date.String(),
		exp.Method,
		exp.Amount.String(),
		exp.Description,
		exp.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to put expense: %w", err)
	}
	return nil
}

func (s *Store) ListExpenses(ctx context.Context, date ledger.Date) ([]ledger.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listExpenses(ctx, s.db, date)
}

func listExpenses(ctx context.Context, db dbtx, date ledger.Date) ([]ledger.Expense, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, date, method, amount, description, created_at
		FROM expenses WHERE date = ? ORDER BY created_at ASC
	`, date.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []ledger.Expense
	for rows.Next() {
		var (
			exp         ledger.Expense
			dateStr     string
			amount      string
			description sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&exp.ID, &dateStr, &exp.Method, &amount, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if exp.Date, err = ledger.ParseDate(dateStr); err != nil {
			return nil, err
		}
		if exp.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("corrupt expense amount: %w", err)
		}
		exp.Description = description.String
		exp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore)
// =============================================================================

// WithTx executes fn within one database transaction. The store mutex is
// held for the duration so the tx-backed view can use the lock-free
// helpers directly.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetDay(ctx context.Context, date ledger.Date) (*ledger.DayLedger, error) {
	return getDay(ctx, ts.tx, date)
}

func (ts *txStore) PutDay(ctx context.Context, day ledger.DayLedger) error {
	return putDay(ctx, ts.tx, day)
}

func (ts *txStore) ListSales(ctx context.Context, date ledger.Date) ([]ledger.SaleRecord, error) {
	return listSales(ctx, ts.tx, date)
}

func (ts *txStore) GetSale(ctx context.Context, id ledger.SaleID) (*ledger.SaleRecord, error) {
	return getSale(ctx, ts.tx, id)
}

func (ts *txStore) PutSale(ctx context.Context, sale ledger.SaleRecord) error {
	return putSale(ctx, ts.tx, sale)
}

func (ts *txStore) DeleteSale(ctx context.Context, id ledger.SaleID) error {
	return deleteSale(ctx, ts.tx, id)
}

func (ts *txStore) PutCloseOut(ctx context.Context, rec ledger.CloseOutRecord) error {
	return putCloseOut(ctx, ts.tx, rec)
}

func (ts *txStore) GetCloseOut(ctx context.Context, date ledger.Date) (*ledger.CloseOutRecord, error) {
	return queryCloseOut(ctx, ts.tx, `WHERE date = ?`, date.String())
}

func (ts *txStore) LatestCloseOut(ctx context.Context, before ledger.Date) (*ledger.CloseOutRecord, error) {
	return queryCloseOut(ctx, ts.tx, `WHERE date < ? ORDER BY date DESC LIMIT 1`, before.String())
}

func (ts *txStore) PutExpense(ctx context.Context, exp ledger.Expense) error {
	return putExpense(ctx, ts.tx, exp)
}

func (ts *txStore) ListExpenses(ctx context.Context, date ledger.Date) ([]ledger.Expense, error) {
	return listExpenses(ctx, ts.tx, date)
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
