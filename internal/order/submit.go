package order

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dbctrade/ordercore/internal/audit"
	"github.com/dbctrade/ordercore/internal/identity"
	"github.com/dbctrade/ordercore/internal/reconcile"
	"github.com/dbctrade/ordercore/internal/reqctx"
)

// Preview runs reconciliation without committing anything. The draft is
// untouched; the caller sees exactly the verdict a submission would get
// right now.
func (s *Service) Preview(ctx context.Context, requester *identity.User, draftID string) (reconcile.Verdict, error) {
	d, err := s.GetDraft(ctx, requester, draftID)
	if err != nil {
		return nil, err
	}
	if len(d.Items) == 0 {
		return nil, ErrEmptyDraft
	}
	return s.engine.Reconcile(ctx, d.Items)
}

// Submit drives the draft through Draft → Validating → Submitted|Rejected.
//
// On an all-sufficient verdict the order snapshot, the draft deletion and
// the audit record are committed in one transaction, conditional on the
// draft still holding the version read here. The loser of a concurrent
// submission race observes ErrAlreadyProcessed and nothing is persisted
// for it. A rejection leaves the draft untouched and editable.
func (s *Service) Submit(ctx context.Context, requester *identity.User, draftID string) (*Order, error) {
	d, err := s.GetDraft(ctx, requester, draftID)
	if err != nil {
		return nil, err
	}
	if len(d.Items) == 0 {
		return nil, ErrEmptyDraft
	}
	readVersion := d.Version

	status := StatusDraft
	advance := func(to Status) {
		if !CanTransition(status, to) {
			// Transition table violation is a programming error; log loudly.
			slog.ErrorContext(ctx, "illegal submission transition", "from", status, "to", to, "draft_id", d.ID)
		}
		status = to
	}

	advance(StatusValidating)
	records, err := s.engine.LookupRecords(ctx, d.Items)
	if err != nil {
		return nil, err
	}
	verdict := reconcile.Classify(d.Items, records)

	if !verdict.AllSufficient() {
		advance(StatusRejected)
		slog.InfoContext(ctx, "submission rejected",
			"draft_id", d.ID, "owner_id", d.OwnerID, "verdict", verdict)
		return nil, &RejectionError{Verdict: verdict}
	}

	advance(StatusSubmitted)
	totalCents := 0
	for sku, qty := range d.Items {
		totalCents += records[sku].UnitPriceCents * qty
	}

	correlationID := reqctx.CorrelationID(ctx)
	o := &Order{
		ID:            uuid.NewString(),
		DraftID:       d.ID,
		OwnerID:       d.OwnerID,
		Name:          d.Name,
		Items:         d.Items.Clone(),
		TotalCents:    totalCents,
		TotalUnits:    d.Items.TotalUnits(),
		Status:        StatusSubmitted,
		CorrelationID: correlationID,
		SubmittedAt:   time.Now().UTC(),
	}

	rec := audit.NewRecord(ctx, correlationID, requester.ID, "draft", d.ID,
		audit.OpDraftSubmit,
		summarizeDraft(d),
		audit.Summary(map[string]any{"order_id": o.ID, "total_cents": o.TotalCents}),
	)

	if err := s.commit.CommitSubmission(ctx, d.ID, readVersion, o, rec); err != nil {
		return nil, fmt.Errorf("submit draft %s: %w", d.ID, err)
	}

	slog.InfoContext(ctx, "draft submitted",
		"draft_id", d.ID, "order_id", o.ID, "owner_id", o.OwnerID, "total_cents", o.TotalCents)
	return o, nil
}
