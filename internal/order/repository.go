package order

import (
	"context"

	"github.com/dbctrade/ordercore/internal/audit"
)

// DraftRepository is the persistence port for drafts. Update carries the
// version the caller read; implementations must refuse the write when the
// stored version moved (ErrVersionConflict) and report a vanished draft as
// ErrNotFound.
type DraftRepository interface {
	Create(ctx context.Context, d *DraftOrder) error
	Get(ctx context.Context, id string) (*DraftOrder, error)
	ListByOwner(ctx context.Context, ownerID string) ([]DraftOrder, error)
	Update(ctx context.Context, d *DraftOrder, expectedVersion int64) error

	// Delete removes the draft and reports whether a row existed. Deleting
	// an absent draft is not an error; discard is idempotent.
	Delete(ctx context.Context, id string) (bool, error)
}

// OrderRepository reads committed orders. Orders are written only through
// SubmissionStore; there is no update path at all.
type OrderRepository interface {
	Get(ctx context.Context, id string) (*Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Order, error)
}

// SubmissionStore is the single transactional boundary of the core: it
// inserts the committed order, deletes the draft guarded by the version read
// at the start of submission (compare-and-delete), and appends the audit
// record, all or nothing. When the draft is gone or its version moved, the
// whole commit fails with ErrAlreadyProcessed and nothing is persisted.
type SubmissionStore interface {
	CommitSubmission(ctx context.Context, draftID string, expectedVersion int64, o *Order, rec *audit.Record) error
}
