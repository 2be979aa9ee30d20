package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dbctrade/ordercore/internal/inventory"
)

var _ inventory.Catalog = (*Store)(nil)

// LookupMany returns a record per known SKU. Missing SKUs simply do not
// appear in the result; downstream classifies them as Unknown.
func (s *Store) LookupMany(ctx context.Context, skus []string) (map[string]inventory.Record, error) {
	out := make(map[string]inventory.Record, len(skus))
	if len(skus) == 0 {
		return out, nil
	}

	params := strings.TrimSuffix(strings.Repeat("?,", len(skus)), ",")
	args := make([]any, len(skus))
	for i, sku := range skus {
		args[i] = sku
	}

	q := `SELECT sku, product_name, available, unit_price_cents, active, updated_at
	      FROM products WHERE sku IN (` + params + `)`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: lookup products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: lookup products: %w", err)
		}
		out[rec.SKU] = rec
	}
	return out, rows.Err()
}

// List returns the whole catalog ordered by SKU.
func (s *Store) List(ctx context.Context) ([]inventory.Record, error) {
	const q = `
		SELECT sku, product_name, available, unit_price_cents, active, updated_at
		FROM   products
		ORDER  BY sku`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list products: %w", err)
	}
	defer rows.Close()

	var out []inventory.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list products: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpsertMany replaces catalog records wholesale, in one transaction, and
// returns the number of records written. Used by the admin bulk import.
func (s *Store) UpsertMany(ctx context.Context, records []inventory.Record) (int, error) {
	tx, err := s.begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
		INSERT INTO products (sku, product_name, available, unit_price_cents, active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sku) DO UPDATE SET
			product_name     = excluded.product_name,
			available        = excluded.available,
			unit_price_cents = excluded.unit_price_cents,
			active           = excluded.active,
			updated_at       = excluded.updated_at`

	now := time.Now().UTC()
	count := 0
	for _, rec := range records {
		updatedAt := rec.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		if _, err := tx.ExecContext(ctx, q,
			rec.SKU, rec.ProductName, rec.Available, rec.UnitPriceCents,
			boolToInt(rec.Active), formatTime(updatedAt),
		); err != nil {
			return 0, fmt.Errorf("sqlite: upsert product %q: %w", rec.SKU, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit catalog import: %w", err)
	}
	return count, nil
}

func scanRecord(row rowScanner) (inventory.Record, error) {
	var rec inventory.Record
	var active int
	var updatedAt string
	if err := row.Scan(&rec.SKU, &rec.ProductName, &rec.Available,
		&rec.UnitPriceCents, &active, &updatedAt); err != nil {
		return inventory.Record{}, err
	}
	rec.Active = active != 0
	var err error
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return inventory.Record{}, err
	}
	return rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
