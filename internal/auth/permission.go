// Package auth holds role-based authorization, token issuing and password
// hashing for the Ruta Control API.
package auth

import "github.com/rutacontrol/backend/internal/domain"

// Permission is an action a role may be allowed to perform.
type Permission string

const (
	ResourcesRead  Permission = "resources:read"
	ResourcesWrite Permission = "resources:write"
	TripsRead      Permission = "trips:read"
	TripsWrite     Permission = "trips:write"
	TripsDelete    Permission = "trips:delete"
	StopsWrite     Permission = "stops:write"
	UsersManage    Permission = "users:manage"
	StatsRead      Permission = "stats:read"
)

var rolePermissions = map[int]map[Permission]bool{
	domain.RoleAdmin: {
		ResourcesRead: true, ResourcesWrite: true,
		TripsRead: true, TripsWrite: true, TripsDelete: true,
		StopsWrite: true, UsersManage: true, StatsRead: true,
	},
	domain.RoleDispatcher: {
		ResourcesRead: true, ResourcesWrite: true,
		TripsRead: true, TripsWrite: true,
		StopsWrite: true, StatsRead: true,
	},
	domain.RoleViewer: {
		ResourcesRead: true, TripsRead: true, StatsRead: true,
	},
}

// HasPermission reports whether roleID grants p. Unknown roles have no permissions.
func HasPermission(roleID int, p Permission) bool {
	return rolePermissions[roleID][p]
}

// ValidRole reports whether roleID is a known role.
func ValidRole(roleID int) bool {
	_, ok := rolePermissions[roleID]
	return ok
}
