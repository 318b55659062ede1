package daybook

import (
	"context"
	"sync"
)

// =============================================================================
// TABLE BOARD - Occupancy collaborator (write-only side effect)
// =============================================================================

// TableBoard is the table/seat collaborator. The ledger core only ever
// writes occupancy; it never reads it back.
type TableBoard interface {
	SetOccupied(ctx context.Context, tableRef string) error
	SetFree(ctx context.Context, tableRef string) error
}

// NoopTableBoard is used when no table system is wired (takeaway-only
// deployments).
type NoopTableBoard struct{}

func (NoopTableBoard) SetOccupied(context.Context, string) error { return nil }
func (NoopTableBoard) SetFree(context.Context, string) error     { return nil }

// MemoryTableBoard tracks occupancy in memory. Used by the dev server
// and tests.
type MemoryTableBoard struct {
	mu       sync.Mutex
	occupied map[string]bool
}

func NewMemoryTableBoard() *MemoryTableBoard {
	return &MemoryTableBoard{occupied: make(map[string]bool)}
}

func (b *MemoryTableBoard) SetOccupied(_ context.Context, tableRef string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.occupied[tableRef] = true
	return nil
}

func (b *MemoryTableBoard) SetFree(_ context.Context, tableRef string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.occupied, tableRef)
	return nil
}

// Occupied reports current occupancy, for display layers.
func (b *MemoryTableBoard) Occupied(tableRef string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.occupied[tableRef]
}
