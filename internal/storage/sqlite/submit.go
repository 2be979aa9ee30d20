package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dbctrade/ordercore/internal/audit"
	"github.com/dbctrade/ordercore/internal/order"
)

var _ order.SubmissionStore = (*Store)(nil)

// CommitSubmission is the one transactional boundary of the core. In a
// single transaction it deletes the draft guarded by the version read at
// the start of submission, inserts the committed order snapshot, and
// appends the audit record.
//
// The compare-and-delete is what serialises concurrent submissions: if the
// draft is already gone or its version moved, zero rows are deleted, the
// transaction rolls back, and the caller observes ErrAlreadyProcessed with
// nothing persisted.
func (s *Store) CommitSubmission(ctx context.Context, draftID string, expectedVersion int64, o *order.Order, rec *audit.Record) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("sqlite: marshal items for order %q: %w", o.ID, err)
	}

	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM drafts WHERE id = ? AND version = ?`,
		draftID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("sqlite: compare-and-delete draft %q: %w", draftID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: compare-and-delete draft %q: %w", draftID, err)
	}
	if n == 0 {
		return order.ErrAlreadyProcessed
	}

	const insertOrder = `
		INSERT INTO orders
			(id, draft_id, owner_id, name, items, total_cents, total_units,
			 status, correlation_id, submitted_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, insertOrder,
		o.ID, o.DraftID, o.OwnerID, o.Name, string(items),
		o.TotalCents, o.TotalUnits, string(o.Status), o.CorrelationID,
		formatTime(o.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: insert order %q: %w", o.ID, err)
	}

	_, err = tx.ExecContext(ctx, insertAuditSQL,
		rec.CorrelationID, rec.ActorID, rec.EntityKind, rec.EntityID,
		string(rec.Operation), rec.Before, rec.After,
		rec.TraceID, rec.SpanID, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: append submit audit record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit submission of draft %q: %w", draftID, err)
	}
	return nil
}
