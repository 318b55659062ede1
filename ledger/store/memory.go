// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/braseria/poscore/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	days      map[ledger.Date]ledger.DayLedger
	sales     map[ledger.SaleID]ledger.SaleRecord
	closeouts map[ledger.Date]ledger.CloseOutRecord
	expenses  map[ledger.Date][]ledger.Expense
}

func NewMemory() *Memory {
	return &Memory{
		days:      make(map[ledger.Date]ledger.DayLedger),
		sales:     make(map[ledger.SaleID]ledger.SaleRecord),
		closeouts: make(map[ledger.Date]ledger.CloseOutRecord),
		expenses:  make(map[ledger.Date][]ledger.Expense),
	}
}

func (m *Memory) GetDay(_ context.Context, date ledger.Date) (*ledger.DayLedger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day, ok := m.days[date]
	if !ok {
		return nil, nil
	}
	day.OpeningBeverages = day.OpeningBeverages.Clone()
	return &day, nil
}

func (m *Memory) PutDay(_ context.Context, day ledger.DayLedger) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	day.OpeningBeverages = day.OpeningBeverages.Clone()
	m.days[day.Date] = day
	return nil
}

func (m *Memory) ListSales(_ context.Context, date ledger.Date) ([]ledger.SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []ledger.SaleRecord
	for _, sale := range m.sales {
		if sale.Date == date {
			result = append(result, cloneSale(sale))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) GetSale(_ context.Context, id ledger.SaleID) (*ledger.SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sale, ok := m.sales[id]
	if !ok {
		return nil, nil
	}
	c := cloneSale(sale)
	return &c, nil
}

func (m *Memory) PutSale(_ context.Context, sale ledger.SaleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sales[sale.ID] = cloneSale(sale)
	return nil
}

func (m *Memory) DeleteSale(_ context.Context, id ledger.SaleID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sales, id)
	return nil
}

func (m *Memory) PutCloseOut(_ context.Context, rec ledger.CloseOutRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeouts[rec.Date] = cloneCloseOut(rec)
	return nil
}

func (m *Memory) GetCloseOut(_ context.Context, date ledger.Date) (*ledger.CloseOutRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.closeouts[date]
	if !ok {
		return nil, nil
	}
	c := cloneCloseOut(rec)
	return &c, nil
}

func (m *Memory) LatestCloseOut(_ context.Context, before ledger.Date) (*ledger.CloseOutRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *ledger.CloseOutRecord
	for date, rec := range m.closeouts {
		if date.After(before) || date == before {
			continue
		}
		if latest == nil || date.After(latest.Date) {
			c := cloneCloseOut(rec)
			latest = &c
		}
	}
	return latest, nil
}

func (m *Memory) PutExpense(_ context.Context, exp ledger.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expenses[exp.Date] = append(m.expenses[exp.Date], exp)
	return nil
}

func (m *Memory) ListExpenses(_ context.Context, date ledger.Date) ([]ledger.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Expense, len(m.expenses[date]))
	copy(result, m.expenses[date])
	return result, nil
}

func cloneSale(s ledger.SaleRecord) ledger.SaleRecord {
	s.LineItems = append([]ledger.LineItem(nil), s.LineItems...)
	s.PaymentSplit = append([]ledger.PaymentPortion(nil), s.PaymentSplit...)
	s.ConsumedBeverages = s.ConsumedBeverages.Clone()
	return s
}

func cloneCloseOut(rec ledger.CloseOutRecord) ledger.CloseOutRecord {
	rec.PhysicalBeverages = rec.PhysicalBeverages.Clone()
	rec.ClosingBeverages = rec.ClosingBeverages.Clone()
	variances := make(map[ledger.BeverageKey]int, len(rec.VarianceBeverages))
	for k, v := range rec.VarianceBeverages {
		variances[k] = v
	}
	rec.VarianceBeverages = variances
	return rec
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support, simulated with a
// snapshot + rollback on error.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

func (tm *TxMemory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	snapshot := tm.snapshot()

	if err := fn(tm.Memory); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	s := memorySnapshot{
		days:      make(map[ledger.Date]ledger.DayLedger, len(tm.days)),
		sales:     make(map[ledger.SaleID]ledger.SaleRecord, len(tm.sales)),
		closeouts: make(map[ledger.Date]ledger.CloseOutRecord, len(tm.closeouts)),
		expenses:  make(map[ledger.Date][]ledger.Expense, len(tm.expenses)),
	}
	for k, v := range tm.days {
		v.OpeningBeverages = v.OpeningBeverages.Clone()
		s.days[k] = v
	}
	for k, v := range tm.sales {
		s.sales[k] = cloneSale(v)
	}
	for k, v := range tm.closeouts {
		s.closeouts[k] = cloneCloseOut(v)
	}
	for k, v := range tm.expenses {
		s.expenses[k] = append([]ledger.Expense(nil), v...)
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.days = s.days
	tm.sales = s.sales
	tm.closeouts = s.closeouts
	tm.expenses = s.expenses
}

type memorySnapshot struct {
	days      map[ledger.Date]ledger.DayLedger
	sales     map[ledger.SaleID]ledger.SaleRecord
	closeouts map[ledger.Date]ledger.CloseOutRecord
	expenses  map[ledger.Date][]ledger.Expense
}
