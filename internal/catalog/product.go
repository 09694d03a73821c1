// Package catalog loads the storefront menu from the upstream products API
// and normalizes the inconsistent upstream records into one canonical shape.
// When the upstream is unreachable the embedded sample menu is served instead,
// so the catalog is always populated.
package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

// Variant is a purchasable size option of a product. Prices and weights are
// derived from the product base values at normalization time and never change
// afterwards within a page session.
type Variant struct {
	ID     string          `json:"id"`
	Size   string          `json:"size"`
	Price  decimal.Decimal `json:"price"`
	Weight int             `json:"weight"`
}

// Product is the canonical catalog item shown to customers. Instances are
// produced by Normalize and are immutable after load.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Calories    int             `json:"calories"`
	Weight      int             `json:"weight"`
	Available   bool            `json:"isAvailable"`
	Rating      float64         `json:"rating"`
	Image       string          `json:"image"`
	Variants    []Variant       `json:"variants"`
}

// Variant returns the product variant with the given id, or false when the
// product has no such size option.
func (p *Product) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Record is a raw product record as the upstream API reports it: English
// name, upstream category code, base price. It is the input to Normalize.
type Record struct {
	ID       string          `json:"id"`
	Name     string          `json:"productName"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

// Fetcher retrieves raw product records from the upstream API.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]Record, error)
}
