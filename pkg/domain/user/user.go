// Package user contains the user aggregate and the role-based access
// policy: each user holds exactly one role, and each role carries a static
// set of capabilities checked through a single predicate.
package user

import (
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned when a user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserUnauthorized is returned on failed authentication.
	ErrUserUnauthorized = errors.New("user unauthorized")
	// ErrPermissionDenied is returned when a user lacks a capability.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUsernameExists is returned when registering a taken username.
	ErrUsernameExists = errors.New("username already exists")
	// ErrEmailExists is returned when registering a taken email.
	ErrEmailExists = errors.New("email already exists")
	// ErrInvalidRole is returned for an unrecognized role name.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
)

// Permission is one capability a role can hold.
type Permission string

const (
	PermAccountViewOwn Permission = "account:view_own"
	PermAccountViewAll Permission = "account:view_all"
	PermAccountCreate  Permission = "account:create"
	PermAccountUpdate  Permission = "account:update"
	PermAccountDelete  Permission = "account:delete"

	PermTransactionViewOwn Permission = "transaction:view_own"
	PermTransactionViewAll Permission = "transaction:view_all"
	PermTransactionCreate  Permission = "transaction:create"
	PermTransactionApprove Permission = "transaction:approve"

	PermUserViewOwn Permission = "user:view_own"
	PermUserViewAll Permission = "user:view_all"
	PermUserCreate  Permission = "user:create"
	PermUserUpdate  Permission = "user:update"
	PermUserDelete  Permission = "user:delete"
)

// Role names a permission set. Unlike per-user permission lists, the set is
// fixed per role and lives in code.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleTeller   Role = "teller"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleCustomer, RoleTeller, RoleAdmin:
		return r, nil
	default:
		return "", ErrInvalidRole
	}
}

var rolePermissions = map[Role]map[Permission]struct{}{
	RoleCustomer: permSet(
		PermAccountViewOwn,
		PermAccountCreate,
		PermTransactionViewOwn,
		PermTransactionCreate,
		PermUserViewOwn,
		PermUserUpdate,
	),
	RoleTeller: permSet(
		PermAccountViewAll,
		PermAccountCreate,
		PermTransactionViewAll,
		PermTransactionCreate,
		PermTransactionApprove,
	),
	RoleAdmin: permSet(
		PermAccountViewAll,
		PermAccountCreate,
		PermAccountUpdate,
		PermAccountDelete,
		PermTransactionViewAll,
		PermTransactionApprove,
		PermUserViewAll,
		PermUserCreate,
		PermUserUpdate,
		PermUserDelete,
	),
}

func permSet(perms ...Permission) map[Permission]struct{} {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role holds the capability. This is the
// single predicate the engine consults before gated operations.
func (r Role) HasPermission(p Permission) bool {
	_, ok := rolePermissions[r][p]
	return ok
}

// User is an authenticated identity. Credential and session mechanics live
// in the auth service; the core only consults role and ownership.
type User struct {
	ID             uint
	Username       string
	Email          string
	Name           string
	HashedPassword string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasPermission reports whether the user's role holds the capability.
func (u *User) HasPermission(p Permission) bool {
	return u.Role.HasPermission(p)
}
