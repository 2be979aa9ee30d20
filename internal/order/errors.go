package order

import (
	"errors"
	"fmt"

	"github.com/dbctrade/ordercore/internal/reconcile"
)

var (
	// ErrNotFound covers unknown draft and order ids. Non-owners of an
	// existing draft get ErrForbidden instead, so the two are distinguishable.
	ErrNotFound = errors.New("order: not found")

	// ErrForbidden means the entity exists but the requester is neither its
	// owner nor on the admin-override path.
	ErrForbidden = errors.New("order: forbidden")

	// ErrVersionConflict is the optimistic-concurrency mismatch. The caller
	// must re-fetch and retry; the store never auto-merges.
	ErrVersionConflict = errors.New("order: version conflict")

	// ErrEmptyDraft rejects submission of a draft with no line items.
	ErrEmptyDraft = errors.New("order: draft has no line items")

	// ErrAlreadyProcessed is what the loser of a concurrent submission race
	// observes: the draft was submitted or modified between read and commit.
	ErrAlreadyProcessed = errors.New("order: draft already submitted or modified")

	// ErrInvalid rejects malformed input before it reaches the store.
	ErrInvalid = errors.New("order: invalid input")
)

// RejectionError carries the full per-SKU verdict of a rejected submission.
// The draft is left untouched; the caller corrects it and resubmits.
type RejectionError struct {
	Verdict reconcile.Verdict
}

func (e *RejectionError) Error() string {
	failing := 0
	for _, iv := range e.Verdict {
		if iv.Outcome != reconcile.Sufficient {
			failing++
		}
	}
	return fmt.Sprintf("order: submission rejected, %d of %d line item(s) unavailable", failing, len(e.Verdict))
}
