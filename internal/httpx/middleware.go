package httpx

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dbctrade/ordercore/internal/identity"
	"github.com/dbctrade/ordercore/internal/rbac"
	"github.com/dbctrade/ordercore/internal/reqctx"
)

// RequestContext wraps every request with a reqctx.RequestContext: a fresh
// correlation id (or the one a trusted proxy pre-assigned), echoed in the
// response header, with a single structured completion log on every exit
// path including panics recovered further up the chain.
func RequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := reqctx.Begin(r.Header.Get(reqctx.Header))
		rc.Tags["method"] = r.Method
		rc.Tags["path"] = r.URL.Path

		ctx := reqctx.With(r.Context(), rc)
		w.Header().Set(reqctx.Header, rc.CorrelationID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			rc.Complete(ctx, ww.Status())
		}()
		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

// Authenticate resolves the bearer credential and attaches the user and
// permission set to the request context. Requests without a credential, or
// with an invalid one, are rejected here: every route behind this
// middleware is a protected path.
func Authenticate(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r.Context(), bearerToken(r))
			if err != nil {
				writeDomainError(w, r, err)
				return
			}
			if rc := reqctx.From(r.Context()); rc != nil {
				rc.Authenticate(user)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission gates a route on a capability token. It runs after
// Authenticate, so an absent permission set means a wiring bug and fails
// closed.
func RequirePermission(perms ...rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := reqctx.From(r.Context())
			if rc == nil || rc.User == nil || !rc.Permissions.HasAny(perms...) {
				writeError(w, r, http.StatusForbidden, "permission_denied", "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the credential from the Authorization header.
// An empty return is the explicit anonymous outcome. A header that is
// present but not a well-formed bearer scheme is passed through as-is so
// the resolver classifies it as invalid rather than absent.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return header
	}
	return parts[1]
}

// currentUser returns the authenticated user; nil only when a handler is
// reached outside the Authenticate middleware.
func currentUser(r *http.Request) *identity.User {
	if rc := reqctx.From(r.Context()); rc != nil {
		return rc.User
	}
	return nil
}
