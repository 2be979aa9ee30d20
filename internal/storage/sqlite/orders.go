package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dbctrade/ordercore/internal/order"
)

// OrderRepo is the committed-order view over the store. Orders are written
// only by CommitSubmission; this view is read-only.
type OrderRepo struct {
	s *Store
}

var _ order.OrderRepository = (*OrderRepo)(nil)

// Orders returns the order.OrderRepository implementation.
func (s *Store) Orders() *OrderRepo {
	return &OrderRepo{s: s}
}

// Get loads a committed order; order.ErrNotFound when absent.
func (r *OrderRepo) Get(ctx context.Context, id string) (*order.Order, error) {
	const q = `
		SELECT id, draft_id, owner_id, name, items, total_cents, total_units,
		       status, correlation_id, submitted_at
		FROM   orders
		WHERE  id = ?`

	o, err := scanOrder(r.s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get order %q: %w", id, err)
	}
	return o, nil
}

// ListByOwner returns the owner's committed orders, newest first.
func (r *OrderRepo) ListByOwner(ctx context.Context, ownerID string) ([]order.Order, error) {
	const q = `
		SELECT id, draft_id, owner_id, name, items, total_cents, total_units,
		       status, correlation_id, submitted_at
		FROM   orders
		WHERE  owner_id = ?
		ORDER  BY submitted_at DESC`

	rows, err := r.s.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list orders for %q: %w", ownerID, err)
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list orders for %q: %w", ownerID, err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var items, submittedAt string
	err := row.Scan(&o.ID, &o.DraftID, &o.OwnerID, &o.Name, &items,
		&o.TotalCents, &o.TotalUnits, &o.Status, &o.CorrelationID, &submittedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if o.SubmittedAt, err = parseTime(submittedAt); err != nil {
		return nil, err
	}
	return &o, nil
}
