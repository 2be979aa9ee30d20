package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRolePermissionMatrix pins down every (role, permission) pair so a
// change to the mapping is always a deliberate, reviewed diff.
func TestRolePermissionMatrix(t *testing.T) {
	all := []Permission{
		CatalogRead, CatalogWrite, CatalogImport,
		OrderReadOwn, OrderReadAll, OrderCreate,
		OrderUpdateOwn, OrderUpdateAll, OrderDeleteOwn, OrderDeleteAll, OrderExport,
		UserReadAll, UserCreate, UserUpdate, UserDelete,
		MetricsRead, SystemHealth, SystemLogs,
	}

	clientAllowed := map[Permission]bool{
		CatalogRead:    true,
		OrderReadOwn:   true,
		OrderCreate:    true,
		OrderUpdateOwn: true,
		OrderDeleteOwn: true,
	}

	adminDenied := map[Permission]bool{
		// Admins act through the :all scope; they do not hold the :own tokens.
		OrderReadOwn:   true,
		OrderUpdateOwn: true,
		OrderDeleteOwn: true,
	}

	adminSet := PermissionsForRole(RoleAdmin)
	clientSet := PermissionsForRole(RoleClient)

	for _, p := range all {
		assert.Equalf(t, !adminDenied[p], adminSet.Has(p), "admin / %s", p)
		assert.Equalf(t, clientAllowed[p], clientSet.Has(p), "client / %s", p)
	}
}

func TestPermissionsForRoleUnknown(t *testing.T) {
	set := PermissionsForRole(Role("superuser"))
	require.Empty(t, set)
	assert.False(t, set.Has(OrderCreate))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleClient.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("root").Valid())
}

func TestHasAny(t *testing.T) {
	set := PermissionsForRole(RoleClient)
	assert.True(t, set.HasAny(OrderReadAll, OrderReadOwn))
	assert.False(t, set.HasAny(OrderReadAll, OrderUpdateAll))
	assert.False(t, set.HasAny())
}

func TestCanAccessOwnOrAll(t *testing.T) {
	admin := PermissionsForRole(RoleAdmin)
	client := PermissionsForRole(RoleClient)

	// Admin reaches any resource through the :all token.
	assert.True(t, CanAccessOwnOrAll(admin, OrderReadAll, OrderReadOwn, false))
	assert.True(t, CanAccessOwnOrAll(admin, OrderReadAll, OrderReadOwn, true))

	// Client only reaches resources it owns.
	assert.False(t, CanAccessOwnOrAll(client, OrderReadAll, OrderReadOwn, false))
	assert.True(t, CanAccessOwnOrAll(client, OrderReadAll, OrderReadOwn, true))

	// No matching token at all.
	assert.False(t, CanAccessOwnOrAll(client, OrderUpdateAll, OrderUpdateAll, true))
}
