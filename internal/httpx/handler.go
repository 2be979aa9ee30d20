package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dbctrade/ordercore/internal/audit"
	"github.com/dbctrade/ordercore/internal/inventory"
	"github.com/dbctrade/ordercore/internal/order"
	"github.com/dbctrade/ordercore/internal/reqctx"
)

// Invalidator drops cached inventory entries after a catalog import.
type Invalidator interface {
	Invalidate(ctx context.Context, skus []string)
}

// Handler serves the draft-order API.
type Handler struct {
	service    *order.Service
	catalog    inventory.Catalog
	audits     audit.Repository
	invalidate Invalidator

	// collaboratorTimeout bounds every persistence/inventory call so no
	// request can hang on a stuck collaborator.
	collaboratorTimeout time.Duration
}

func NewHandler(service *order.Service, catalog inventory.Catalog, audits audit.Repository, invalidate Invalidator, collaboratorTimeout time.Duration) *Handler {
	return &Handler{
		service:             service,
		catalog:             catalog,
		audits:              audits,
		invalidate:          invalidate,
		collaboratorTimeout: collaboratorTimeout,
	}
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.collaboratorTimeout)
}

func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	d, err := h.service.CreateDraft(ctx, currentUser(r), req.Name, req.Items)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapDraftToResponse(d))
}

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	drafts, err := h.service.ListDrafts(ctx, currentUser(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]DraftResponse, len(drafts))
	for i := range drafts {
		out[i] = mapDraftToResponse(&drafts[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	d, err := h.service.GetDraft(ctx, currentUser(r), chi.URLParam(r, "draftID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDraftToResponse(d))
}

func (h *Handler) UpsertItem(w http.ResponseWriter, r *http.Request) {
	var req UpsertItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	d, err := h.service.UpsertItem(ctx, currentUser(r), chi.URLParam(r, "draftID"), req.SKU, req.Quantity)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDraftToResponse(d))
}

func (h *Handler) ReplaceDraft(w http.ResponseWriter, r *http.Request) {
	var req ReplaceDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	d, err := h.service.Replace(ctx, currentUser(r), chi.URLParam(r, "draftID"), req.Items, req.ExpectedVersion)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDraftToResponse(d))
}

func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.service.Discard(ctx, currentUser(r), chi.URLParam(r, "draftID")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PreviewDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	draftID := chi.URLParam(r, "draftID")
	verdict, err := h.service.Preview(ctx, currentUser(r), draftID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerdictResponse{
		DraftID:       draftID,
		AllSufficient: verdict.AllSufficient(),
		Verdict:       verdict,
	})
}

func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	o, err := h.service.Submit(ctx, currentUser(r), chi.URLParam(r, "draftID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapOrderToResponse(o))
}

func (h *Handler) AdminGetDraft(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	d, err := h.service.AdminGetDraft(ctx, currentUser(r), chi.URLParam(r, "draftID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDraftToResponse(d))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	orders, err := h.service.ListOrders(ctx, currentUser(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = mapOrderToResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	o, err := h.service.GetOrder(ctx, currentUser(r), chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	records, err := h.catalog.List(ctx)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) ImportCatalog(w http.ResponseWriter, r *http.Request) {
	var req ImportCatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if len(req.Records) == 0 {
		writeError(w, r, http.StatusBadRequest, "invalid", "records are required")
		return
	}
	for _, rec := range req.Records {
		if rec.SKU == "" {
			writeError(w, r, http.StatusBadRequest, "invalid", "record without sku")
			return
		}
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()

	count, err := h.catalog.UpsertMany(ctx, mapImportRecords(req.Records))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if h.invalidate != nil {
		skus := make([]string, 0, len(req.Records))
		for _, rec := range req.Records {
			skus = append(skus, rec.SKU)
		}
		h.invalidate.Invalidate(ctx, skus)
	}

	user := currentUser(r)
	rec := audit.NewRecord(ctx, reqctx.CorrelationID(ctx), user.ID, "catalog", "products",
		audit.OpCatalogImport, "", audit.Summary(map[string]int{"records": count}))
	if err := h.audits.Save(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "audit record write failed", "operation", audit.OpCatalogImport, "error", err)
	}

	writeJSON(w, http.StatusOK, ImportCatalogResponse{Imported: count})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
