package middleware

import (
	"context"
	"strings"

	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

const UserKey = "current_user"

// UserLoader resolves a token identity to the local user mirror.
type UserLoader interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Auth validates the bearer token and loads the matching mirror user into
// the request context. A token that verifies but has no mirror row yet is
// rejected; registration creates the mirror before any token is usable.
func Auth(jwtService *services.JWTService, users UserLoader) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := jwtService.ValidateAccessToken(parts[1])
		if err != nil {
			c.Unauthorized("invalid or expired token")
			return
		}

		user, err := users.GetByEmail(context.Background(), claims.Identity())
		if err != nil {
			c.Unauthorized("unknown user")
			return
		}

		c.Set(UserKey, user)

		c.Next()
	}
}

// RequireRole gates a route on the mirror user's application role. Admins
// pass every gate.
func RequireRole(role string) drift.HandlerFunc {
	return func(c *drift.Context) {
		user := GetCurrentUser(c)
		if user == nil {
			c.Unauthorized("missing authentication")
			return
		}
		if user.Role != role && user.Role != models.RoleAdmin {
			c.Forbidden("insufficient role")
			return
		}
		c.Next()
	}
}

func GetCurrentUser(c *drift.Context) *models.User {
	if v, ok := c.Get(UserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
