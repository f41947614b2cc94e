package services

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService validates access tokens issued by the identity provider and
// exposes the claims the rest of the service cares about. The realm is
// configured for HS256 with a shared secret; the provider owns issuance.
type JWTService struct {
	secret []byte
}

type RealmAccess struct {
	Roles []string `json:"roles"`
}

type Claims struct {
	Email             string      `json:"email"`
	PreferredUsername string      `json:"preferred_username"`
	RealmAccess       RealmAccess `json:"realm_access"`
	jwt.RegisteredClaims
}

func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// Identity returns the best available handle for looking up the local user
// mirror: email claim, then preferred_username, then the token subject.
func (c *Claims) Identity() string {
	if c.Email != "" {
		return c.Email
	}
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}

// Role picks the application role out of the realm roles. Admin wins over
// Manager; anything else falls back to Member.
func (c *Claims) Role() string {
	role := ""
	for _, r := range c.RealmAccess.Roles {
		switch r {
		case "Admin":
			return "Admin"
		case "Manager":
			role = "Manager"
		}
	}
	if role == "" {
		return "Member"
	}
	return role
}
