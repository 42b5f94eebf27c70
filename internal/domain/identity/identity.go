// Package identity describes the actors of the system and what they may do.
package identity

import (
	"context"
	"strings"
)

// Role is the closed set of roles a user can hold.
type Role int

const (
	// RoleUnknown is any role name the system does not recognize. It is
	// treated as base level access without the right to place orders.
	RoleUnknown Role = iota
	// RoleRegistered is a customer account.
	RoleRegistered
	// RoleManager is agency staff.
	RoleManager
	// RoleAdministrator is agency staff with full rights.
	RoleAdministrator
)

var roleNames = map[Role]string{
	RoleUnknown:       "Unknown",
	RoleRegistered:    "Registered",
	RoleManager:       "Manager",
	RoleAdministrator: "Administrator",
}

// ParseRole maps a stored role name onto a Role. Matching ignores case and
// surrounding whitespace; unrecognized names yield RoleUnknown.
func ParseRole(name string) Role {
	name = strings.TrimSpace(name)
	for r, n := range roleNames {
		if r != RoleUnknown && strings.EqualFold(n, name) {
			return r
		}
	}
	return RoleUnknown
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return roleNames[RoleUnknown]
}

// CanPlaceOrders reports whether the role may create full orders. Only
// customers place orders; staff accounts cannot.
func (r Role) CanPlaceOrders() bool {
	return r == RoleRegistered
}

// CanAccessAnyOrder reports whether the role may read and change orders it
// does not own.
func (r Role) CanAccessAnyOrder() bool {
	return r == RoleManager || r == RoleAdministrator
}

// CanManageCatalog reports whether the role may change services and discounts.
func (r Role) CanManageCatalog() bool {
	return r == RoleManager || r == RoleAdministrator
}

// User is the part of an account the domain needs.
type User struct {
	ID    int64
	Email string
	Role  Role
}

// CanAccessOrderOf reports whether u may act on an order owned by ownerID.
func (u *User) CanAccessOrderOf(ownerID int64) bool {
	return u.ID == ownerID || u.Role.CanAccessAnyOrder()
}

// Repository resolves users together with their role. GetUser returns an
// *apperr.NotFoundError when the user does not exist.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*User, error)
}
