// Package inventory defines the read-only port onto the live stock catalog.
//
// The core never mutates stock levels; it only reads them at reconciliation
// time. The one write path, bulk catalog import, is an admin operation that
// replaces records wholesale and is gated separately.
package inventory

import (
	"context"
	"errors"
	"time"
)

// Record is one catalog entry as the collaborator reports it.
type Record struct {
	SKU            string    `json:"sku"`
	ProductName    string    `json:"product_name"`
	Available      int       `json:"available"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Active         bool      `json:"active"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ErrUnavailable signals a collaborator outage or timeout. It is the only
// retriable failure class in the pipeline.
var ErrUnavailable = errors.New("inventory: collaborator unavailable")

// Lookup is the read port. LookupMany returns a record per known SKU;
// missing entries simply do not appear in the result, which downstream
// classifies as Unknown.
type Lookup interface {
	LookupMany(ctx context.Context, skus []string) (map[string]Record, error)
}

// Catalog extends Lookup with the admin-only maintenance surface.
type Catalog interface {
	Lookup
	List(ctx context.Context) ([]Record, error)
	UpsertMany(ctx context.Context, records []Record) (int, error)
}
