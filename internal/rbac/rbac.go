// Package rbac maps user roles onto fixed capability sets.
//
// Permissions are derived, never persisted: a role resolves to the same
// permission set on every call, which makes every (role, permission) pair
// testable in isolation instead of relying on scattered conditional checks.
package rbac

// Role is the closed set of roles known to the storefront.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient:
		return true
	}
	return false
}

// Permission is a capability token of the form "resource:action" or
// "resource:action:scope". The :own / :all suffix distinguishes access to a
// user's own resources from access to everyone's.
type Permission string

const (
	// Catalog
	CatalogRead   Permission = "catalog:read"
	CatalogWrite  Permission = "catalog:write"
	CatalogImport Permission = "catalog:import"

	// Orders and drafts
	OrderReadOwn   Permission = "order:read:own"
	OrderReadAll   Permission = "order:read:all"
	OrderCreate    Permission = "order:create"
	OrderUpdateOwn Permission = "order:update:own"
	OrderUpdateAll Permission = "order:update:all"
	OrderDeleteOwn Permission = "order:delete:own"
	OrderDeleteAll Permission = "order:delete:all"
	OrderExport    Permission = "order:export"

	// Users
	UserReadAll Permission = "user:read:all"
	UserCreate  Permission = "user:create"
	UserUpdate  Permission = "user:update"
	UserDelete  Permission = "user:delete"

	// System
	MetricsRead  Permission = "metrics:read"
	SystemHealth Permission = "system:health"
	SystemLogs   Permission = "system:logs"
)

// rolePermissions is the single source of truth for the role → capability
// mapping. Admins hold every permission; clients are limited to the catalog
// and their own orders.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		CatalogRead, CatalogWrite, CatalogImport,
		OrderReadAll, OrderCreate, OrderUpdateAll, OrderDeleteAll, OrderExport,
		UserReadAll, UserCreate, UserUpdate, UserDelete,
		MetricsRead, SystemHealth, SystemLogs,
	},
	RoleClient: {
		CatalogRead,
		OrderReadOwn, OrderCreate, OrderUpdateOwn, OrderDeleteOwn,
	},
}

// PermissionSet is the effective capability set resolved for a request.
type PermissionSet map[Permission]struct{}

// Has reports whether the set contains p.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether the set contains at least one of the given permissions.
func (s PermissionSet) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// PermissionsForRole returns the capability set for a role. Unknown roles
// resolve to an empty set, never an error: a request with a bogus role is
// simply allowed to do nothing.
func PermissionsForRole(role Role) PermissionSet {
	perms := rolePermissions[role]
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// CanAccessOwnOrAll resolves the own/all split for a resource action:
// the :all scope grants access unconditionally, the :own scope only when
// the caller owns the resource.
func CanAccessOwnOrAll(set PermissionSet, all, own Permission, isOwner bool) bool {
	if set.Has(all) {
		return true
	}
	return isOwner && set.Has(own)
}
