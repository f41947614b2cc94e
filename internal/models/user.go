package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles form a closed set; the same names exist as realm roles in the
// identity provider.
const (
	RoleManager = "Manager"
	RoleMember  = "Member"
	RoleAdmin   = "Admin"
)

func ValidRole(role string) bool {
	return role == RoleManager || role == RoleMember || role == RoleAdmin
}

// User is the local mirror of an identity-provider account. Credentials never
// live here; KeycloakID points back at the provider's record.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       string    `json:"role"`
	KeycloakID *string   `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
