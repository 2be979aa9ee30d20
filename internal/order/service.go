package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dbctrade/ordercore/internal/audit"
	"github.com/dbctrade/ordercore/internal/identity"
	"github.com/dbctrade/ordercore/internal/rbac"
	"github.com/dbctrade/ordercore/internal/reconcile"
	"github.com/dbctrade/ordercore/internal/reqctx"
)

// Service drives the draft-order lifecycle. Every mutation enforces
// ownership before touching state and appends one audit record after.
type Service struct {
	drafts DraftRepository
	orders OrderRepository
	commit SubmissionStore
	engine *reconcile.Engine
	audits audit.Repository
}

func NewService(drafts DraftRepository, orders OrderRepository, commit SubmissionStore, engine *reconcile.Engine, audits audit.Repository) *Service {
	return &Service{
		drafts: drafts,
		orders: orders,
		commit: commit,
		engine: engine,
		audits: audits,
	}
}

// CreateDraft opens a new draft for the requester. Initial items are
// optional; entries with non-positive quantities are rejected, matching the
// boundary validation for every other write path.
func (s *Service) CreateDraft(ctx context.Context, requester *identity.User, name string, items LineItems) (*DraftOrder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: draft name required", ErrInvalid)
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	if items == nil {
		items = LineItems{}
	}

	now := time.Now().UTC()
	d := &DraftOrder{
		ID:        uuid.NewString(),
		OwnerID:   requester.ID,
		Name:      name,
		Items:     items.Clone(),
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.drafts.Create(ctx, d); err != nil {
		return nil, err
	}

	s.record(ctx, requester, audit.OpDraftCreate, d.ID, "", summarizeDraft(d))
	return d, nil
}

// GetDraft returns the draft to its owner; anyone else gets ErrForbidden
// regardless of role. Admin access goes through AdminGetDraft.
func (s *Service) GetDraft(ctx context.Context, requester *identity.User, draftID string) (*DraftOrder, error) {
	d, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != requester.ID {
		return nil, ErrForbidden
	}
	return d, nil
}

// AdminGetDraft is the explicit, separately-audited override path for
// cross-user reads. It requires the order:read:all capability; ownership is
// deliberately not consulted.
func (s *Service) AdminGetDraft(ctx context.Context, requester *identity.User, draftID string) (*DraftOrder, error) {
	if !rbac.PermissionsForRole(requester.Role).Has(rbac.OrderReadAll) {
		return nil, ErrForbidden
	}
	d, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, requester, audit.OpAdminOverride, d.ID, "", summarizeDraft(d))
	return d, nil
}

// ListDrafts returns the requester's own drafts.
func (s *Service) ListDrafts(ctx context.Context, requester *identity.User) ([]DraftOrder, error) {
	return s.drafts.ListByOwner(ctx, requester.ID)
}

// UpsertItem sets the quantity for one SKU. A non-positive quantity removes
// the entry. Each successful call increments the draft version; concurrent
// calls are last-write-wins per SKU but the version always advances.
func (s *Service) UpsertItem(ctx context.Context, requester *identity.User, draftID, sku string, quantity int) (*DraftOrder, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, fmt.Errorf("%w: sku required", ErrInvalid)
	}

	d, err := s.GetDraft(ctx, requester, draftID)
	if err != nil {
		return nil, err
	}

	before := summarizeDraft(d)
	if quantity <= 0 {
		delete(d.Items, sku)
	} else {
		d.Items[sku] = quantity
	}

	expected := d.Version
	d.Version++
	d.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Update(ctx, d, expected); err != nil {
		return nil, err
	}

	s.record(ctx, requester, audit.OpDraftUpsert, d.ID, before, summarizeDraft(d))
	return d, nil
}

// Replace is the full-document bulk update. It fails with ErrVersionConflict
// when expectedVersion is stale; the caller must re-fetch and retry, the
// store never auto-merges.
func (s *Service) Replace(ctx context.Context, requester *identity.User, draftID string, items LineItems, expectedVersion int64) (*DraftOrder, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	d, err := s.GetDraft(ctx, requester, draftID)
	if err != nil {
		return nil, err
	}
	if d.Version != expectedVersion {
		return nil, ErrVersionConflict
	}

	before := summarizeDraft(d)
	d.Items = items.Clone()
	d.Version = expectedVersion + 1
	d.UpdatedAt = time.Now().UTC()
	if err := s.drafts.Update(ctx, d, expectedVersion); err != nil {
		return nil, err
	}

	s.record(ctx, requester, audit.OpDraftReplace, d.ID, before, summarizeDraft(d))
	return d, nil
}

// Discard deletes the draft. Idempotent: discarding an absent draft
// succeeds, so retries and double-clicks are harmless. Ownership is still
// enforced when the draft exists.
func (s *Service) Discard(ctx context.Context, requester *identity.User, draftID string) error {
	d, err := s.drafts.Get(ctx, draftID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if d.OwnerID != requester.ID {
		return ErrForbidden
	}

	existed, err := s.drafts.Delete(ctx, draftID)
	if err != nil {
		return err
	}
	if existed {
		s.record(ctx, requester, audit.OpDraftDiscard, draftID, summarizeDraft(d), "")
	}
	return nil
}

// GetOrder returns a committed order through the own-or-all permission split.
func (s *Service) GetOrder(ctx context.Context, requester *identity.User, orderID string) (*Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	perms := rbac.PermissionsForRole(requester.Role)
	if !rbac.CanAccessOwnOrAll(perms, rbac.OrderReadAll, rbac.OrderReadOwn, o.OwnerID == requester.ID) {
		return nil, ErrForbidden
	}
	return o, nil
}

// ListOrders returns the requester's committed orders.
func (s *Service) ListOrders(ctx context.Context, requester *identity.User) ([]Order, error) {
	return s.orders.ListByOwner(ctx, requester.ID)
}

func validateItems(items LineItems) error {
	for sku, qty := range items {
		if strings.TrimSpace(sku) == "" {
			return fmt.Errorf("%w: empty sku", ErrInvalid)
		}
		if qty <= 0 {
			return fmt.Errorf("%w: non-positive quantity for %s", ErrInvalid, sku)
		}
	}
	return nil
}

// record appends one audit row. Audit failures must not roll back a
// committed mutation, so they are logged and swallowed here.
func (s *Service) record(ctx context.Context, actor *identity.User, op audit.Operation, draftID, before, after string) {
	rec := audit.NewRecord(ctx, reqctx.CorrelationID(ctx), actor.ID, "draft", draftID, op, before, after)
	if err := s.audits.Save(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "audit record write failed", "operation", op, "draft_id", draftID, "error", err)
	}
}

type draftSummary struct {
	Name    string `json:"name"`
	Items   int    `json:"items"`
	Units   int    `json:"units"`
	Version int64  `json:"version"`
}

func summarizeDraft(d *DraftOrder) string {
	return audit.Summary(draftSummary{
		Name:    d.Name,
		Items:   len(d.Items),
		Units:   d.Items.TotalUnits(),
		Version: d.Version,
	})
}
