package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the operational role of a fleet user.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDepotManager Role = "depot_manager"
	RoleDriver       Role = "driver"
	RoleConductor    Role = "conductor"
	RoleMechanic     Role = "mechanic"
	RoleSupervisor   Role = "supervisor"
)

// Roles lists every known role in declaration order.
var Roles = []Role{RoleAdmin, RoleDepotManager, RoleDriver, RoleConductor, RoleMechanic, RoleSupervisor}

// ParseRole converts a raw value into a Role. Matching is case-insensitive.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", Invalid(fmt.Sprintf("unknown role %q", s))
	}
	return r, nil
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDepotManager, RoleDriver, RoleConductor, RoleMechanic, RoleSupervisor:
		return true
	}
	return false
}

// UserStatus is the lifecycle state of an account. Transitions are driven by
// administrative flows outside this service.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

// ParseUserStatus converts a raw value into a UserStatus.
func ParseUserStatus(s string) (UserStatus, error) {
	st := UserStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusInactive, StatusSuspended:
		return st, nil
	}
	return "", Invalid(fmt.Sprintf("unknown status %q", s))
}

// CanAuthenticate reports whether an account in this state may log in or use
// its tokens. Only active accounts can.
func (s UserStatus) CanAuthenticate() bool {
	switch s {
	case StatusActive:
		return true
	case StatusInactive, StatusSuspended:
		return false
	}
	return false
}

// User is an identity record. PasswordHash never leaves the service boundary.
type User struct {
	ID            string     `json:"user_id"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	PasswordHash  string     `json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Role          Role       `json:"role"`
	Status        UserStatus `json:"status"`
	ProfileImage  *string    `json:"profile_image"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	EmailVerified bool       `json:"email_verified"`
	PhoneVerified bool       `json:"phone_verified"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Sanitized returns a copy of u without credential material.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone
}

// NewUser carries the fields required to create an identity. PasswordHash
// must already be hashed.
type NewUser struct {
	Email        string
	Phone        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
}
