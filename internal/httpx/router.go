package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dbctrade/ordercore/internal/identity"
	"github.com/dbctrade/ordercore/internal/rbac"
)

// NewRouter assembles the full middleware chain and route table. Everything
// except the health check sits behind authentication; write routes are
// additionally gated on capability tokens.
func NewRouter(h *Handler, resolver identity.Resolver, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestContext)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(resolver))

		r.With(RequirePermission(rbac.CatalogRead)).Get("/products", h.ListProducts)
		r.With(RequirePermission(rbac.CatalogImport)).Post("/catalog/import", h.ImportCatalog)

		r.Route("/drafts", func(r chi.Router) {
			r.With(RequirePermission(rbac.OrderCreate)).Post("/", h.CreateDraft)
			r.With(RequirePermission(rbac.OrderReadOwn, rbac.OrderReadAll)).Get("/", h.ListDrafts)

			r.Route("/{draftID}", func(r chi.Router) {
				r.With(RequirePermission(rbac.OrderReadOwn, rbac.OrderReadAll)).Get("/", h.GetDraft)
				r.With(RequirePermission(rbac.OrderUpdateOwn, rbac.OrderUpdateAll)).Put("/", h.ReplaceDraft)
				r.With(RequirePermission(rbac.OrderUpdateOwn, rbac.OrderUpdateAll)).Post("/items", h.UpsertItem)
				r.With(RequirePermission(rbac.OrderDeleteOwn, rbac.OrderDeleteAll)).Delete("/", h.DiscardDraft)
				r.With(RequirePermission(rbac.OrderReadOwn, rbac.OrderReadAll)).Post("/reconcile", h.PreviewDraft)
				r.With(RequirePermission(rbac.OrderCreate)).Post("/submit", h.SubmitDraft)
			})
		})

		// Admin override: a distinct, separately-permissioned and
		// separately-audited path, never a silent bypass of ownership.
		r.With(RequirePermission(rbac.OrderReadAll)).Get("/admin/drafts/{draftID}", h.AdminGetDraft)

		r.Route("/orders", func(r chi.Router) {
			r.With(RequirePermission(rbac.OrderReadOwn, rbac.OrderReadAll)).Get("/", h.ListOrders)
			r.With(RequirePermission(rbac.OrderReadOwn, rbac.OrderReadAll)).Get("/{orderID}", h.GetOrder)
		})
	})

	return r
}
