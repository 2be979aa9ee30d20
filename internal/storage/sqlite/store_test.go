package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbctrade/ordercore/internal/audit"
	"github.com/dbctrade/ordercore/internal/inventory"
	"github.com/dbctrade/ordercore/internal/order"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newDraft(owner string) *order.DraftOrder {
	now := time.Now().UTC()
	return &order.DraftOrder{
		ID:        uuid.NewString(),
		OwnerID:   owner,
		Name:      "march restock",
		Items:     order.LineItems{"SKU-A": 2, "SKU-B": 1},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestDraftRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	drafts := s.Drafts()

	d := newDraft("user-1")
	require.NoError(t, drafts.Create(ctx, d))

	got, err := drafts.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.ID)
	assert.Equal(t, d.OwnerID, got.OwnerID)
	assert.Equal(t, d.Name, got.Name)
	assert.Equal(t, d.Items, got.Items)
	assert.Equal(t, int64(0), got.Version)
	assert.WithinDuration(t, d.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestDraftGetAbsent(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Drafts().Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestDraftUpdateGuardedByVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	drafts := s.Drafts()

	d := newDraft("user-1")
	require.NoError(t, drafts.Create(ctx, d))

	d.Items["SKU-C"] = 5
	d.Version = 1
	d.UpdatedAt = time.Now().UTC()
	require.NoError(t, drafts.Update(ctx, d, 0))

	// A writer still holding version 0 must lose.
	stale := newDraft("user-1")
	stale.ID = d.ID
	stale.Version = 1
	err := drafts.Update(ctx, stale, 0)
	assert.ErrorIs(t, err, order.ErrVersionConflict)

	got, err := drafts.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, 5, got.Items["SKU-C"])
}

func TestDraftUpdateAfterDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	drafts := s.Drafts()

	d := newDraft("user-1")
	require.NoError(t, drafts.Create(ctx, d))

	existed, err := drafts.Delete(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	d.Version = 1
	assert.ErrorIs(t, drafts.Update(ctx, d, 0), order.ErrNotFound)

	existed, err = drafts.Delete(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestDraftListByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	drafts := s.Drafts()

	mine := newDraft("user-1")
	theirs := newDraft("user-2")
	require.NoError(t, drafts.Create(ctx, mine))
	require.NoError(t, drafts.Create(ctx, theirs))

	got, err := drafts.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

func newOrderFromDraft(d *order.DraftOrder) *order.Order {
	return &order.Order{
		ID:            uuid.NewString(),
		DraftID:       d.ID,
		OwnerID:       d.OwnerID,
		Name:          d.Name,
		Items:         d.Items.Clone(),
		TotalCents:    119800,
		TotalUnits:    d.Items.TotalUnits(),
		Status:        order.StatusSubmitted,
		CorrelationID: uuid.NewString(),
		SubmittedAt:   time.Now().UTC(),
	}
}

func submitRecord(d *order.DraftOrder, o *order.Order) *audit.Record {
	return audit.NewRecord(context.Background(), o.CorrelationID, d.OwnerID,
		"draft", d.ID, audit.OpDraftSubmit, "", "")
}

func TestCommitSubmission(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := newDraft("user-1")
	require.NoError(t, s.Drafts().Create(ctx, d))

	o := newOrderFromDraft(d)
	require.NoError(t, s.CommitSubmission(ctx, d.ID, 0, o, submitRecord(d, o)))

	// Draft is consumed, order is queryable, audit row is appended.
	_, err := s.Drafts().Get(ctx, d.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)

	got, err := s.Orders().Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, got.DraftID)
	assert.Equal(t, order.StatusSubmitted, got.Status)
	assert.Equal(t, o.CorrelationID, got.CorrelationID)
	assert.Equal(t, d.Items, got.Items)

	trail, err := s.Audits().ListByEntity(ctx, "draft", d.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, audit.OpDraftSubmit, trail[0].Operation)
}

func TestCommitSubmissionStaleVersion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := newDraft("user-1")
	require.NoError(t, s.Drafts().Create(ctx, d))

	// An edit lands after the submitter read version 0.
	d.Version = 1
	d.UpdatedAt = time.Now().UTC()
	require.NoError(t, s.Drafts().Update(ctx, d, 0))

	o := newOrderFromDraft(d)
	err := s.CommitSubmission(ctx, d.ID, 0, o, submitRecord(d, o))
	assert.ErrorIs(t, err, order.ErrAlreadyProcessed)

	// Nothing persisted: the draft survives and no order or audit row exists.
	_, err = s.Drafts().Get(ctx, d.ID)
	require.NoError(t, err)
	_, err = s.Orders().Get(ctx, o.ID)
	assert.ErrorIs(t, err, order.ErrNotFound)
	trail, err := s.Audits().ListByEntity(ctx, "draft", d.ID)
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func TestCommitSubmissionSingleWinner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := newDraft("user-1")
	require.NoError(t, s.Drafts().Create(ctx, d))

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := newOrderFromDraft(d)
			errs[i] = s.CommitSubmission(ctx, d.ID, 0, o, submitRecord(d, o))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, order.ErrAlreadyProcessed)
		}
	}
	assert.Equal(t, 1, winners)

	orders, err := s.Orders().ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestCatalogUpsertAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []inventory.Record{
		{SKU: "SKU-A", ProductName: "Refurb Laptop A", Available: 5, UnitPriceCents: 59900, Active: true},
		{SKU: "SKU-B", ProductName: "Refurb Tablet B", Available: 0, UnitPriceCents: 19900, Active: true},
	}
	n, err := s.UpsertMany(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.LookupMany(ctx, []string{"SKU-A", "SKU-B", "SKU-X"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 5, got["SKU-A"].Available)
	assert.True(t, got["SKU-A"].Active)
	_, known := got["SKU-X"]
	assert.False(t, known)

	// Re-import overwrites in place.
	n, err = s.UpsertMany(ctx, []inventory.Record{
		{SKU: "SKU-A", ProductName: "Refurb Laptop A", Available: 1, UnitPriceCents: 54900, Active: false},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	got, err = s.LookupMany(ctx, []string{"SKU-A"})
	require.NoError(t, err)
	assert.Equal(t, 1, got["SKU-A"].Available)
	assert.False(t, got["SKU-A"].Active)
}

func TestAuditTrailOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	audits := s.Audits()

	for i := 0; i < 3; i++ {
		rec := audit.NewRecord(ctx, fmt.Sprintf("corr-%d", i), "user-1",
			"draft", "d-1", audit.OpDraftUpsert, "", "")
		require.NoError(t, audits.Save(ctx, rec))
	}

	trail, err := audits.ListByEntity(ctx, "draft", "d-1")
	require.NoError(t, err)
	require.Len(t, trail, 3)
	for i, rec := range trail {
		assert.Equal(t, fmt.Sprintf("corr-%d", i), rec.CorrelationID)
	}
}
