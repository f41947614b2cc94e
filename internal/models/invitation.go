package models

import (
	"time"

	"github.com/google/uuid"
)

// TeamInvitation invites one email address into one team. The token is the
// external-facing handle; expiry is derived from ExpiresAt at read time and
// never stored as a separate state.
type TeamInvitation struct {
	ID        uuid.UUID `json:"id"`
	Token     string    `json:"token"`
	TeamID    uuid.UUID `json:"team_id"`
	Email     string    `json:"email"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (i *TeamInvitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// Valid reports whether the invitation can still be accepted: not yet
// accepted and not past its expiry.
func (i *TeamInvitation) Valid(now time.Time) bool {
	return !i.Accepted && !i.Expired(now)
}
