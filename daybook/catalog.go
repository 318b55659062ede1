/*
catalog.go - Pricing/catalog collaborator

PURPOSE:
  The catalog supplies a product's unit price, perishable fraction and
  beverage tag at the moment a line item is added. The daybook copies
  those values onto the stored SaleRecord and never re-resolves them, so
  catalog price changes do not retroactively alter historical totals.

SEE ALSO:
  - daybook.go: resolveLines
*/
package daybook

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/braseria/poscore/ledger"
)

// Product is one sellable item as the catalog describes it right now.
type Product struct {
	Ref  string
	Name string

	UnitPrice decimal.Decimal

	// Whole units of the perishable good per unit sold, in [0, 1] on
	// the eighth grid. Zero for everything that is not a portion of it.
	PerishableFraction decimal.Decimal

	// Non-nil when the product is a stocked beverage.
	Beverage *ledger.BeverageKey
}

// Catalog resolves product references. Returns (nil, nil) for unknown
// refs; the daybook turns that into an UnknownProductError.
type Catalog interface {
	Product(ctx context.Context, ref string) (*Product, error)
}

// =============================================================================
// STATIC CATALOG - Fixed in-memory catalog (file-loaded or test-built)
// =============================================================================

type StaticCatalog map[string]Product

func (c StaticCatalog) Product(_ context.Context, ref string) (*Product, error) {
	p, ok := c[ref]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// productFile is the on-disk JSON shape for LoadCatalogFile.
type productFile struct {
	Ref                string  `json:"ref"`
	Name               string  `json:"name"`
	UnitPrice          float64 `json:"unit_price"`
	PerishableFraction float64 `json:"perishable_fraction"`
	Brand              string  `json:"brand,omitempty"`
	Size               string  `json:"size,omitempty"`
}

// LoadCatalogFile reads a JSON array of products from disk.
func LoadCatalogFile(path string) (StaticCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []productFile
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	catalog := make(StaticCatalog, len(entries))
	for _, e := range entries {
		p := Product{
			Ref:                e.Ref,
			Name:               e.Name,
			UnitPrice:          decimal.NewFromFloat(e.UnitPrice),
			PerishableFraction: decimal.NewFromFloat(e.PerishableFraction),
		}
		if e.Brand != "" {
			p.Beverage = &ledger.BeverageKey{
				Brand: ledger.Brand(e.Brand),
				Size:  ledger.SizeVariant(e.Size),
			}
		}
		catalog[e.Ref] = p
	}
	return catalog, nil
}
