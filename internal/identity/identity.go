// Package identity resolves request credential material into an
// authenticated user and their effective permission set.
package identity

import (
	"context"
	"errors"

	"github.com/dbctrade/ordercore/internal/rbac"
)

// Status is the account lifecycle state carried by the identity store.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
)

// User is the resolved identity of a request. Immutable for the duration
// of the request that resolved it.
type User struct {
	ID          string
	Email       string
	CompanyName string
	Role        rbac.Role
	Status      Status
}

// Active reports whether the account may act at all.
func (u *User) Active() bool {
	return u != nil && u.Status == StatusActive
}

var (
	// ErrNoCredential is the explicit "anonymous request" outcome: no
	// credential material was presented. Distinct from an invalid one.
	ErrNoCredential = errors.New("identity: no credential presented")

	// ErrInvalidCredential covers malformed, forged and expired credentials.
	ErrInvalidCredential = errors.New("identity: invalid or expired credential")

	// ErrSuspended is returned for a valid credential whose account is
	// no longer allowed to act.
	ErrSuspended = errors.New("identity: account suspended")
)

// Resolver turns raw credential material (the value of a bearer token) into
// a User. Implementations must be side-effect free and idempotent: resolving
// the same credential twice within a request is safe and yields the same result.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*User, error)
}
