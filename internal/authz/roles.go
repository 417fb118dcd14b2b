// Package authz holds the shop role bitmask shared by every shop-scoped
// service. Roles live on the shop membership row, not on the account.
package authz

// Role is a bitmask of per-shop permissions.
type Role int

const (
	RoleOwner       Role = 1 << 0
	RoleManageItems Role = 1 << 1
	RoleReadTabs    Role = 1 << 4

	// Managing tabs or orders implies reading tabs.
	RoleManageTabs   Role = 1<<2 | RoleReadTabs
	RoleManageOrders Role = 1<<3 | RoleReadTabs

	RoleManageLocations Role = 1 << 5
)

// HasRoles reports whether roles grants every bit in want.
// The owner bit grants everything.
func HasRoles(roles, want Role) bool {
	if roles&RoleOwner == RoleOwner {
		return true
	}
	return roles&want == want
}
