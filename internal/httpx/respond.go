package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dbctrade/ordercore/internal/identity"
	"github.com/dbctrade/ordercore/internal/inventory"
	"github.com/dbctrade/ordercore/internal/order"
	"github.com/dbctrade/ordercore/internal/reqctx"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     code,
		Message:   msg,
		RequestID: reqctx.CorrelationID(r.Context()),
	})
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Unclassified
// errors become an opaque 500: the caller gets the correlation id only,
// while the full detail goes to the server log.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *order.RejectionError

	switch {
	case errors.Is(err, identity.ErrNoCredential):
		writeError(w, r, http.StatusUnauthorized, "unauthenticated", "credentials required")
	case errors.Is(err, identity.ErrInvalidCredential), errors.Is(err, identity.ErrSuspended):
		writeError(w, r, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, order.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "forbidden", "not the owner of this resource")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", "")
	case errors.Is(err, order.ErrVersionConflict):
		writeError(w, r, http.StatusConflict, "version_conflict", "draft was modified, re-fetch and retry")
	case errors.Is(err, order.ErrAlreadyProcessed):
		writeError(w, r, http.StatusConflict, "already_processed", "draft already submitted or modified")
	case errors.Is(err, order.ErrEmptyDraft):
		writeError(w, r, http.StatusUnprocessableEntity, "empty_draft", "draft has no line items")
	case errors.As(err, &rejection):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "reconciliation_rejected",
			Message:   rejection.Error(),
			RequestID: reqctx.CorrelationID(r.Context()),
			Verdict:   rejection.Verdict,
		})
	case errors.Is(err, inventory.ErrUnavailable):
		writeError(w, r, http.StatusServiceUnavailable, "unavailable", "collaborator unavailable, retry the request")
	case errors.Is(err, order.ErrInvalid):
		writeError(w, r, http.StatusBadRequest, "invalid", err.Error())
	default:
		slog.ErrorContext(r.Context(), "unclassified error", "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal", "")
	}
}
