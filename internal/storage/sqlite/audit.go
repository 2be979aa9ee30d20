package sqlite

import (
	"context"
	"fmt"

	"github.com/dbctrade/ordercore/internal/audit"
)

// AuditRepo is the append-only audit view over the store.
type AuditRepo struct {
	s *Store
}

var _ audit.Repository = (*AuditRepo)(nil)

// Audits returns the audit.Repository implementation.
func (s *Store) Audits() *AuditRepo {
	return &AuditRepo{s: s}
}

const insertAuditSQL = `
	INSERT INTO audit_logs
		(correlation_id, actor_id, entity_kind, entity_id, operation,
		 before_summary, after_summary, trace_id, span_id, created_at)
	VALUES
		(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Save appends one record. Each call is a new row; nothing is ever updated.
func (r *AuditRepo) Save(ctx context.Context, rec *audit.Record) error {
	_, err := r.s.db.ExecContext(ctx, insertAuditSQL,
		rec.CorrelationID, rec.ActorID, rec.EntityKind, rec.EntityID,
		string(rec.Operation), rec.Before, rec.After,
		rec.TraceID, rec.SpanID, formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save audit record for %s/%s: %w", rec.EntityKind, rec.EntityID, err)
	}
	return nil
}

// ListByEntity returns the trail for one entity in chronological order.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityKind, entityID string) ([]audit.Record, error) {
	const q = `
		SELECT correlation_id, actor_id, entity_kind, entity_id, operation,
		       before_summary, after_summary, trace_id, span_id, created_at
		FROM   audit_logs
		WHERE  entity_kind = ? AND entity_id = ?
		ORDER  BY created_at, id`

	rows, err := r.s.db.QueryContext(ctx, q, entityKind, entityID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list audit records for %s/%s: %w", entityKind, entityID, err)
	}
	defer rows.Close()

	var out []audit.Record
	for rows.Next() {
		var rec audit.Record
		var op, createdAt string
		if err := rows.Scan(&rec.CorrelationID, &rec.ActorID, &rec.EntityKind, &rec.EntityID,
			&op, &rec.Before, &rec.After, &rec.TraceID, &rec.SpanID, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: list audit records for %s/%s: %w", entityKind, entityID, err)
		}
		rec.Operation = audit.Operation(op)
		if rec.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
