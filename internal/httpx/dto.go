package httpx

import (
	"time"

	"github.com/dbctrade/ordercore/internal/inventory"
	"github.com/dbctrade/ordercore/internal/order"
	"github.com/dbctrade/ordercore/internal/reconcile"
)

type CreateDraftRequest struct {
	Name  string         `json:"name"`
	Items map[string]int `json:"items,omitempty"`
}

type UpsertItemRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type ReplaceDraftRequest struct {
	Items           map[string]int `json:"items"`
	ExpectedVersion int64          `json:"expected_version"`
}

type DraftResponse struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"owner_id"`
	Name      string         `json:"name"`
	Items     map[string]int `json:"items"`
	Version   int64          `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type OrderResponse struct {
	ID            string         `json:"id"`
	DraftID       string         `json:"draft_id"`
	OwnerID       string         `json:"owner_id"`
	Name          string         `json:"name"`
	Items         map[string]int `json:"items"`
	TotalCents    int            `json:"total_cents"`
	TotalUnits    int            `json:"total_units"`
	Status        string         `json:"status"`
	CorrelationID string         `json:"correlation_id"`
	SubmittedAt   time.Time      `json:"submitted_at"`
}

type VerdictResponse struct {
	DraftID       string            `json:"draft_id"`
	AllSufficient bool              `json:"all_sufficient"`
	Verdict       reconcile.Verdict `json:"verdict"`
}

type ImportCatalogRequest struct {
	Records []ImportRecord `json:"records"`
}

type ImportRecord struct {
	SKU            string `json:"sku"`
	ProductName    string `json:"product_name"`
	Available      int    `json:"available"`
	UnitPriceCents int    `json:"unit_price_cents"`
	Active         bool   `json:"active"`
}

type ImportCatalogResponse struct {
	Imported int `json:"imported"`
}

type ErrorResponse struct {
	Error     string            `json:"error"`
	Message   string            `json:"message,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Verdict   reconcile.Verdict `json:"verdict,omitempty"`
}

func mapDraftToResponse(d *order.DraftOrder) DraftResponse {
	return DraftResponse{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Items:     d.Items,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func mapOrderToResponse(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		DraftID:       o.DraftID,
		OwnerID:       o.OwnerID,
		Name:          o.Name,
		Items:         o.Items,
		TotalCents:    o.TotalCents,
		TotalUnits:    o.TotalUnits,
		Status:        string(o.Status),
		CorrelationID: o.CorrelationID,
		SubmittedAt:   o.SubmittedAt,
	}
}

func mapImportRecords(records []ImportRecord) []inventory.Record {
	out := make([]inventory.Record, len(records))
	for i, r := range records {
		out[i] = inventory.Record{
			SKU:            r.SKU,
			ProductName:    r.ProductName,
			Available:      r.Available,
			UnitPriceCents: r.UnitPriceCents,
			Active:         r.Active,
		}
	}
	return out
}
