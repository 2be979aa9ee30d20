// Package audit defines the append-only audit trail for the draft-order core.
//
// Every mutation to a draft or order writes exactly one record, keyed by the
// request's correlation id. The trail serves two purposes:
//
//  1. Attribution: each state change is joined to the authenticated actor
//     and the request that carried it.
//
//  2. Postmortems: the correlation id links a record to the structured logs
//     and, via trace_id, to the distributed trace of the same request.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// Operation names the mutation being recorded.
type Operation string

const (
	OpDraftCreate   Operation = "draft.create"
	OpDraftUpsert   Operation = "draft.upsert_item"
	OpDraftReplace  Operation = "draft.replace"
	OpDraftDiscard  Operation = "draft.discard"
	OpDraftSubmit   Operation = "draft.submit"
	OpAdminOverride Operation = "draft.admin_override_read"
	OpCatalogImport Operation = "catalog.import"
)

// Record is a single row in the audit trail. Rows are immutable events;
// the table is append-only, never upserted.
type Record struct {
	// CorrelationID is the id of the request that performed the mutation.
	CorrelationID string

	// ActorID is the authenticated user who performed it.
	ActorID string

	// EntityKind and EntityID name the mutated aggregate ("draft", "order").
	EntityKind string
	EntityID   string

	// Operation is the mutation performed.
	Operation Operation

	// Before and After are compact JSON summaries of the entity state
	// around the mutation, not full snapshots.
	Before string
	After  string

	// TraceID and SpanID are the W3C identifiers of the active OTel span,
	// empty when no span was recording.
	TraceID string
	SpanID  string

	// CreatedAt is the wall-clock time of the mutation.
	CreatedAt time.Time
}

// Repository is the port for persisting audit records. Save appends; there
// is deliberately no update or delete.
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	ListByEntity(ctx context.Context, entityKind, entityID string) ([]Record, error)
}

// Summary renders a compact JSON before/after summary. Marshal failures
// degrade to an empty object rather than blocking the mutation.
func Summary(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// NewRecord builds a Record with trace identifiers extracted from ctx.
func NewRecord(ctx context.Context, correlationID, actorID, entityKind, entityID string, op Operation, before, after string) *Record {
	rec := &Record{
		CorrelationID: correlationID,
		ActorID:       actorID,
		EntityKind:    entityKind,
		EntityID:      entityID,
		Operation:     op,
		Before:        before,
		After:         after,
		CreatedAt:     time.Now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		rec.TraceID = sc.TraceID().String()
		rec.SpanID = sc.SpanID().String()
	}
	return rec
}
