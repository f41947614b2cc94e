package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTeamRequest struct {
	Name          string   `json:"name"`
	InvitedEmails []string `json:"invited_emails"`
}

type InviteRequest struct {
	Emails []string `json:"emails"`
}

type AddMembersRequest struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

type TeamResponse struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	ManagerID uuid.UUID      `json:"manager_id"`
	CreatedAt time.Time      `json:"created_at"`
	Members   []UserResponse `json:"members,omitempty"`
}
