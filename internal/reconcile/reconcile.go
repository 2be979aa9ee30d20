// Package reconcile validates a draft's line items against live inventory.
//
// The engine mutates nothing and may be called any number of times: the
// same code path serves both the non-committing preview endpoint and the
// committing check inside submission.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/dbctrade/ordercore/internal/inventory"
)

// Outcome classifies one SKU of an attempted submission.
type Outcome string

const (
	Sufficient   Outcome = "SUFFICIENT"
	Insufficient Outcome = "INSUFFICIENT"
	Unknown      Outcome = "UNKNOWN_SKU"
	Inactive     Outcome = "INACTIVE"
)

// ItemVerdict is the per-SKU result. Requested and Available are only
// meaningful for Insufficient; Unknown means the SKU is absent from the
// catalog altogether, which points at stale client data rather than a
// stock shortfall and is surfaced differently to callers.
type ItemVerdict struct {
	Outcome   Outcome `json:"outcome"`
	Requested int     `json:"requested,omitempty"`
	Available int     `json:"available,omitempty"`
}

func (v ItemVerdict) String() string {
	if v.Outcome == Insufficient {
		return fmt.Sprintf("%s(%d,%d)", v.Outcome, v.Requested, v.Available)
	}
	return string(v.Outcome)
}

// Verdict maps each requested SKU to its classification.
type Verdict map[string]ItemVerdict

// AllSufficient reports whether every SKU may be committed.
func (v Verdict) AllSufficient() bool {
	for _, iv := range v {
		if iv.Outcome != Sufficient {
			return false
		}
	}
	return true
}

// Engine reconciles requested quantities against the inventory collaborator.
type Engine struct {
	lookup inventory.Lookup
}

func NewEngine(lookup inventory.Lookup) *Engine {
	return &Engine{lookup: lookup}
}

// Reconcile produces a fresh verdict for the given line items. A
// collaborator failure surfaces as inventory.ErrUnavailable so callers know
// the whole submission may be retried.
func (e *Engine) Reconcile(ctx context.Context, items map[string]int) (Verdict, error) {
	records, err := e.LookupRecords(ctx, items)
	if err != nil {
		return nil, err
	}
	return Classify(items, records), nil
}

// LookupRecords fetches the inventory records backing a verdict. Submission
// uses it directly so the same records that were judged also price the
// committed snapshot, without a second collaborator round trip.
func (e *Engine) LookupRecords(ctx context.Context, items map[string]int) (map[string]inventory.Record, error) {
	skus := make([]string, 0, len(items))
	for sku := range items {
		skus = append(skus, sku)
	}
	records, err := e.lookup.LookupMany(ctx, skus)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", inventory.ErrUnavailable, err)
		}
		return nil, err
	}
	return records, nil
}

// Classify judges requested quantities against fetched records. Inactive
// records are unavailable even when their counted stock would cover the
// request; SKUs absent from records are Unknown, not Insufficient.
func Classify(items map[string]int, records map[string]inventory.Record) Verdict {
	verdict := make(Verdict, len(items))
	for sku, requested := range items {
		rec, ok := records[sku]
		switch {
		case !ok:
			verdict[sku] = ItemVerdict{Outcome: Unknown, Requested: requested}
		case !rec.Active:
			verdict[sku] = ItemVerdict{Outcome: Inactive, Requested: requested}
		case rec.Available < requested:
			verdict[sku] = ItemVerdict{Outcome: Insufficient, Requested: requested, Available: rec.Available}
		default:
			verdict[sku] = ItemVerdict{Outcome: Sufficient}
		}
	}
	return verdict
}
