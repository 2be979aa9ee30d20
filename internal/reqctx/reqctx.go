// Package reqctx builds and propagates the per-request context: a fresh
// correlation id, the resolved identity and its permission set, and the
// structured completion log that every request emits exactly once.
package reqctx

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dbctrade/ordercore/internal/identity"
	"github.com/dbctrade/ordercore/internal/rbac"
)

// Header is the HTTP header carrying the correlation id on requests
// and responses.
const Header = "X-Request-ID"

// ctxKey is an unexported type for context keys in this package.
// A custom type prevents collisions with keys from other packages.
type ctxKey struct{}

// RequestContext is the ephemeral envelope around one inbound operation.
// It is created when the request enters the pipeline, discarded when the
// response is written, and never persisted.
type RequestContext struct {
	// CorrelationID joins this request's logs, audit rows and response.
	// Generated fresh per request, never reused.
	CorrelationID string

	// User is the resolved identity, or nil for anonymous requests.
	User *identity.User

	// Permissions is the capability set derived from User's role.
	Permissions rbac.PermissionSet

	// StartedAt is when the pipeline accepted the request.
	StartedAt time.Time

	// Tags are free-form key/values attached to the completion log record.
	Tags map[string]string
}

// Begin creates a RequestContext. correlationID may be empty, in which case
// a fresh uuid is generated; a caller-supplied id is kept so upstream
// proxies can pre-assign one.
func Begin(correlationID string) *RequestContext {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return &RequestContext{
		CorrelationID: correlationID,
		Permissions:   rbac.PermissionSet{},
		StartedAt:     time.Now().UTC(),
		Tags:          map[string]string{},
	}
}

// Authenticate attaches the resolved user and derives the permission set.
func (rc *RequestContext) Authenticate(user *identity.User) {
	rc.User = user
	rc.Permissions = rbac.PermissionsForRole(user.Role)
}

// UserID returns the resolved user id or "anonymous".
func (rc *RequestContext) UserID() string {
	if rc.User == nil {
		return "anonymous"
	}
	return rc.User.ID
}

// Complete emits the single structured completion record for the request.
// It must run on every exit path, success or failure.
func (rc *RequestContext) Complete(ctx context.Context, status int) {
	attrs := []any{
		slog.String("request_id", rc.CorrelationID),
		slog.String("user_id", rc.UserID()),
		slog.Int("status", status),
		slog.Duration("duration", time.Since(rc.StartedAt)),
	}
	for k, v := range rc.Tags {
		attrs = append(attrs, slog.String(k, v))
	}
	slog.InfoContext(ctx, "request completed", attrs...)
}

// With stores the RequestContext in ctx for downstream components.
func With(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// From retrieves the RequestContext, or nil when called outside the pipeline.
func From(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(ctxKey{}).(*RequestContext)
	return rc
}

// CorrelationID is a shortcut for audit and log call sites; it returns ""
// outside the pipeline.
func CorrelationID(ctx context.Context) string {
	if rc := From(ctx); rc != nil {
		return rc.CorrelationID
	}
	return ""
}
