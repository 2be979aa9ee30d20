package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbctrade/ordercore/internal/audit"
	"github.com/dbctrade/ordercore/internal/inventory"
	"github.com/dbctrade/ordercore/internal/reconcile"
	"github.com/dbctrade/ordercore/internal/reqctx"
)

func TestPreviewLeavesDraftUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.service.CreateDraft(ctx, alice, "restock", LineItems{"SKU-A": 2, "SKU-B": 5})
	require.NoError(t, err)

	verdict, err := f.service.Preview(ctx, alice, d.ID)
	require.NoError(t, err)
	assert.Equal(t, reconcile.Sufficient, verdict["SKU-A"].Outcome)
	assert.Equal(t, reconcile.Insufficient, verdict["SKU-B"].Outcome)

	got, err := f.service.GetDraft(ctx, alice, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Version)
	assert.Equal(t, d.Items, got.Items)
}

func TestPreviewEmptyDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.service.CreateDraft(ctx, alice, "restock", nil)
	require.NoError(t, err)

	_, err = f.service.Preview(ctx, alice, d.ID)
	assert.ErrorIs(t, err, ErrEmptyDraft)
}

func TestSubmitCommitsDraft(t *testing.T) {
	f := newFixture()
	ctx := reqctx.With(context.Background(), reqctx.Begin("corr-42"))

	d, err := f.service.CreateDraft(ctx, alice, "march restock", LineItems{"SKU-A": 2, "SKU-B": 1})
	require.NoError(t, err)

	o, err := f.service.Submit(ctx, alice, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, o.DraftID)
	assert.Equal(t, "alice", o.OwnerID)
	assert.Equal(t, StatusSubmitted, o.Status)
	assert.Equal(t, 2*59900+19900, o.TotalCents)
	assert.Equal(t, 3, o.TotalUnits)
	assert.Equal(t, "corr-42", o.CorrelationID)

	// The draft is consumed and the commit carried the audit record.
	_, err = f.service.GetDraft(ctx, alice, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	trail, err := f.audits.ListByEntity(ctx, "draft", d.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, audit.OpDraftSubmit, trail[1].Operation)
	assert.Equal(t, "corr-42", trail[1].CorrelationID)
}

func TestSubmitRejectionKeepsDraftEditable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// SKU-B has 3 on hand; SKU-X is not in the catalog at all.
	d, err := f.service.CreateDraft(ctx, alice, "restock", LineItems{"SKU-A": 1, "SKU-B": 5, "SKU-X": 1})
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, alice, d.ID)
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, reconcile.Sufficient, rejection.Verdict["SKU-A"].Outcome)
	assert.Equal(t, reconcile.Insufficient, rejection.Verdict["SKU-B"].Outcome)
	assert.Equal(t, 5, rejection.Verdict["SKU-B"].Requested)
	assert.Equal(t, 3, rejection.Verdict["SKU-B"].Available)
	assert.Equal(t, reconcile.Unknown, rejection.Verdict["SKU-X"].Outcome)

	// The draft survives at its read version; the owner fixes it and retries.
	got, err := f.service.GetDraft(ctx, alice, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Version)

	_, err = f.service.UpsertItem(ctx, alice, d.ID, "SKU-B", 3)
	require.NoError(t, err)
	_, err = f.service.UpsertItem(ctx, alice, d.ID, "SKU-X", 0)
	require.NoError(t, err)

	o, err := f.service.Submit(ctx, alice, d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, o.Status)
}

func TestSubmitEmptyDraft(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.service.CreateDraft(ctx, alice, "restock", nil)
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, alice, d.ID)
	assert.ErrorIs(t, err, ErrEmptyDraft)
}

func TestSubmitOwnershipAndAbsence(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.service.CreateDraft(ctx, alice, "restock", LineItems{"SKU-A": 1})
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, bob, d.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.service.Submit(ctx, alice, "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitLoserOfRace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.service.CreateDraft(ctx, alice, "restock", LineItems{"SKU-A": 1})
	require.NoError(t, err)

	// First submission wins; the second finds no draft left to submit.
	_, err = f.service.Submit(ctx, alice, d.ID)
	require.NoError(t, err)
	_, err = f.service.Submit(ctx, alice, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitCollaboratorOutage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	d, err := f.service.CreateDraft(ctx, alice, "restock", LineItems{"SKU-A": 1})
	require.NoError(t, err)

	f.lookup.err = context.DeadlineExceeded
	_, err = f.service.Submit(ctx, alice, d.ID)
	assert.ErrorIs(t, err, inventory.ErrUnavailable)

	// An outage rejects nothing; the draft is intact for a retry.
	f.lookup.err = nil
	got, err := f.service.GetDraft(ctx, alice, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Version)
}
