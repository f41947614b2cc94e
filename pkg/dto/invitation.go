package dto

import (
	"time"

	"github.com/google/uuid"
)

type InvitationResponse struct {
	Token     string    `json:"token"`
	TeamID    uuid.UUID `json:"team_id"`
	TeamName  string    `json:"team_name,omitempty"`
	Email     string    `json:"email"`
	Accepted  bool      `json:"accepted"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ValidateInvitationResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
}
