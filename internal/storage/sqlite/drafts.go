package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dbctrade/ordercore/internal/order"
)

// DraftRepo is the draft view over the store.
type DraftRepo struct {
	s *Store
}

var _ order.DraftRepository = (*DraftRepo)(nil)

// Drafts returns the order.DraftRepository implementation.
func (s *Store) Drafts() *DraftRepo {
	return &DraftRepo{s: s}
}

// Create inserts a fresh draft at version 0.
func (r *DraftRepo) Create(ctx context.Context, d *order.DraftOrder) error {
	items, err := json.Marshal(d.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshal items for draft %q: %w", d.ID, err)
	}

	const q = `
		INSERT INTO drafts (id, owner_id, name, items, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = r.s.db.ExecContext(ctx, q,
		d.ID, d.OwnerID, d.Name, string(items), d.Version,
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create draft %q: %w", d.ID, err)
	}
	return nil
}

// Get loads a draft by id; order.ErrNotFound when absent.
func (r *DraftRepo) Get(ctx context.Context, id string) (*order.DraftOrder, error) {
	const q = `
		SELECT id, owner_id, name, items, version, created_at, updated_at
		FROM   drafts
		WHERE  id = ?`

	d, err := scanDraft(r.s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get draft %q: %w", id, err)
	}
	return d, nil
}

// ListByOwner returns the owner's drafts, most recent first.
func (r *DraftRepo) ListByOwner(ctx context.Context, ownerID string) ([]order.DraftOrder, error) {
	const q = `
		SELECT id, owner_id, name, items, version, created_at, updated_at
		FROM   drafts
		WHERE  owner_id = ?
		ORDER  BY created_at DESC`

	rows, err := r.s.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list drafts for %q: %w", ownerID, err)
	}
	defer rows.Close()

	var out []order.DraftOrder
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: list drafts for %q: %w", ownerID, err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Update writes the draft guarded by expectedVersion. The stored row only
// changes when its version still equals expectedVersion; d.Version must
// already hold the incremented value.
func (r *DraftRepo) Update(ctx context.Context, d *order.DraftOrder, expectedVersion int64) error {
	items, err := json.Marshal(d.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshal items for draft %q: %w", d.ID, err)
	}

	const q = `
		UPDATE drafts
		SET    name = ?, items = ?, version = ?, updated_at = ?
		WHERE  id = ? AND version = ?`

	res, err := r.s.db.ExecContext(ctx, q,
		d.Name, string(items), d.Version, formatTime(d.UpdatedAt),
		d.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update draft %q: %w", d.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: update draft %q: %w", d.ID, err)
	}
	if n == 0 {
		// Either the draft vanished or someone else won the race; tell the
		// caller which.
		if _, err := r.Get(ctx, d.ID); errors.Is(err, order.ErrNotFound) {
			return order.ErrNotFound
		}
		return order.ErrVersionConflict
	}
	return nil
}

// Delete removes the draft, reporting whether a row existed.
func (r *DraftRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("sqlite: delete draft %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: delete draft %q: %w", id, err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*order.DraftOrder, error) {
	var d order.DraftOrder
	var items, createdAt, updatedAt string
	if err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &items, &d.Version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(items), &d.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}
