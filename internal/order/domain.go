// Package order holds the draft-order lifecycle: the user-owned mutable
// draft, the immutable committed order, and the submission state machine
// that turns one into the other.
package order

import "time"

// LineItems maps SKU to requested quantity. Quantities are strictly
// positive; an upsert with quantity <= 0 removes the entry instead.
type LineItems map[string]int

// Clone returns an independent copy so a snapshot never aliases the live draft.
func (li LineItems) Clone() LineItems {
	out := make(LineItems, len(li))
	for sku, qty := range li {
		out[sku] = qty
	}
	return out
}

// TotalUnits is the summed quantity across all SKUs.
func (li LineItems) TotalUnits() int {
	total := 0
	for _, qty := range li {
		total += qty
	}
	return total
}

// DraftOrder is a user's in-progress order. Mutable by its owner only;
// Version is the optimistic-concurrency counter incremented on every
// successful mutation.
type DraftOrder struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Items     LineItems `json:"items"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order is the durable, immutable result of a successful submission.
// Items is a snapshot taken at submission time, not a live reference.
type Order struct {
	ID            string    `json:"id"`
	DraftID       string    `json:"draft_id"`
	OwnerID       string    `json:"owner_id"`
	Name          string    `json:"name"`
	Items         LineItems `json:"items"`
	TotalCents    int       `json:"total_cents"`
	TotalUnits    int       `json:"total_units"`
	Status        Status    `json:"status"`
	CorrelationID string    `json:"correlation_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
