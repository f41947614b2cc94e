package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenGenerator produces the opaque handles that identify invitations.
type TokenGenerator interface {
	Generate() (string, error)
}

// cryptoTokenGenerator draws 32 bytes (256 bits) from crypto/rand, encoded
// URL-safe so the token can ride in a registration link.
type cryptoTokenGenerator struct{}

func NewTokenGenerator() TokenGenerator {
	return cryptoTokenGenerator{}
}

func (cryptoTokenGenerator) Generate() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
