package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role identifies what a user is allowed to do on the platform.
type Role string

const (
	RoleResident Role = "resident"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a raw string into a Role, rejecting anything outside
// the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleResident:
		return RoleResident, nil
	case RoleManager:
		return RoleManager, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleResident, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// UserStatus represents the account status of a user
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User represents a platform account: a resident, a hostel manager, or an admin.
// Passwords are stored and compared as plain text; this mirrors the source
// system and is a documented insecurity, not an oversight.
type User struct {
	ID       uint64     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Role     Role       `json:"role"`
	Password string     `json:"-"`
	Status   UserStatus `json:"status"`

	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Avatar  string `json:"avatar,omitempty"`

	// IsManaged marks accounts created by a manager for off-platform
	// residents, as opposed to self-registered ones.
	IsManaged bool `json:"is_managed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SignupRequest represents the request to register a resident account
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Validate checks the signup request fields
func (r *SignupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("a valid email is required")
	}
	if len(r.Password) < 4 {
		return errors.New("password must be at least 4 characters")
	}
	return nil
}

// LoginRequest represents the request to authenticate
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents the request to change a password.
// The current password is checked by plain equality.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// Validate checks the change-password request fields
func (r *ChangePasswordRequest) Validate() error {
	if len(r.NewPassword) < 4 {
		return errors.New("new password must be at least 4 characters")
	}
	if r.NewPassword != r.ConfirmPassword {
		return errors.New("new password and confirmation do not match")
	}
	return nil
}

// CreateManagedUserRequest represents a manager creating an account for an
// off-platform resident
type CreateManagedUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Validate checks the managed-user request fields
func (r *CreateManagedUserRequest) Validate() error {
	s := SignupRequest{Name: r.Name, Email: r.Email, Password: r.Password}
	return s.Validate()
}
