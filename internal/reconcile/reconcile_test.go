package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbctrade/ordercore/internal/inventory"
)

type stubLookup struct {
	records map[string]inventory.Record
	err     error
}

func (s *stubLookup) LookupMany(ctx context.Context, skus []string) (map[string]inventory.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]inventory.Record)
	for _, sku := range skus {
		if rec, ok := s.records[sku]; ok {
			out[sku] = rec
		}
	}
	return out, nil
}

func TestReconcileClassification(t *testing.T) {
	lookup := &stubLookup{records: map[string]inventory.Record{
		"SKU-A": {SKU: "SKU-A", Available: 5, Active: true},
		"SKU-B": {SKU: "SKU-B", Available: 0, Active: true},
		"SKU-C": {SKU: "SKU-C", Available: 10, Active: false},
	}}
	engine := NewEngine(lookup)

	verdict, err := engine.Reconcile(context.Background(), map[string]int{
		"SKU-A": 2,
		"SKU-B": 1,
		"SKU-C": 1,
		"SKU-X": 3,
	})
	require.NoError(t, err)

	assert.Equal(t, Sufficient, verdict["SKU-A"].Outcome)
	assert.Equal(t, Insufficient, verdict["SKU-B"].Outcome)
	assert.Equal(t, 1, verdict["SKU-B"].Requested)
	assert.Equal(t, 0, verdict["SKU-B"].Available)
	assert.Equal(t, Inactive, verdict["SKU-C"].Outcome)
	assert.Equal(t, Unknown, verdict["SKU-X"].Outcome)
	assert.False(t, verdict.AllSufficient())
}

// Inactive stock is unavailable even when the counted quantity covers the
// request.
func TestReconcileInactiveBeatsQuantity(t *testing.T) {
	lookup := &stubLookup{records: map[string]inventory.Record{
		"SKU-C": {SKU: "SKU-C", Available: 100, Active: false},
	}}
	verdict, err := NewEngine(lookup).Reconcile(context.Background(), map[string]int{"SKU-C": 1})
	require.NoError(t, err)
	assert.Equal(t, Inactive, verdict["SKU-C"].Outcome)
}

func TestReconcileAllSufficient(t *testing.T) {
	lookup := &stubLookup{records: map[string]inventory.Record{
		"SKU-A": {SKU: "SKU-A", Available: 5, Active: true},
		"SKU-B": {SKU: "SKU-B", Available: 3, Active: true},
	}}
	verdict, err := NewEngine(lookup).Reconcile(context.Background(), map[string]int{
		"SKU-A": 2,
		"SKU-B": 1,
	})
	require.NoError(t, err)
	assert.True(t, verdict.AllSufficient())
}

// Boundary: requested exactly equals available.
func TestReconcileExactStock(t *testing.T) {
	lookup := &stubLookup{records: map[string]inventory.Record{
		"SKU-A": {SKU: "SKU-A", Available: 2, Active: true},
	}}
	verdict, err := NewEngine(lookup).Reconcile(context.Background(), map[string]int{"SKU-A": 2})
	require.NoError(t, err)
	assert.Equal(t, Sufficient, verdict["SKU-A"].Outcome)
}

func TestReconcileCollaboratorTimeout(t *testing.T) {
	lookup := &stubLookup{err: context.DeadlineExceeded}
	_, err := NewEngine(lookup).Reconcile(context.Background(), map[string]int{"SKU-A": 1})
	assert.ErrorIs(t, err, inventory.ErrUnavailable)
}

func TestReconcileIsRepeatable(t *testing.T) {
	lookup := &stubLookup{records: map[string]inventory.Record{
		"SKU-A": {SKU: "SKU-A", Available: 1, Active: true},
	}}
	engine := NewEngine(lookup)
	items := map[string]int{"SKU-A": 1}

	first, err := engine.Reconcile(context.Background(), items)
	require.NoError(t, err)
	second, err := engine.Reconcile(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
