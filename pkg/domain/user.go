package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the capability granted to a user by the identity provider.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
	RoleDonor   Role = "DONOR"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleStudent, RoleDonor:
		return r, nil
	}
	return "", ErrInvalidRole
}

// User is the local mirror of an identity issued by the session provider.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      Role      `json:"role,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is what a verified session token asserts about its bearer.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}
