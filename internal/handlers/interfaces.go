package handlers

import (
	"context"

	"github.com/bojanm/teamster-api/internal/identity"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Create(ctx context.Context, email, firstName, lastName, role, keycloakID string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, email, firstName, lastName, role string) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	GetManagerTeams(ctx context.Context, managerID uuid.UUID) ([]models.Team, error)
	GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	AddMembers(ctx context.Context, teamID uuid.UUID, userIDs []uuid.UUID) error
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
}

// InvitationServiceInterface defines the methods used by handlers from InvitationService
type InvitationServiceInterface interface {
	CreateTeamWithInvitations(ctx context.Context, manager *models.User, teamName string, emails []string) (*models.Team, []models.TeamInvitation, error)
	InviteToTeam(ctx context.Context, team *models.Team, emails []string) ([]models.TeamInvitation, error)
	ValidateToken(ctx context.Context, token string) (*models.TeamInvitation, error)
	GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error)
	Accept(ctx context.Context, token string, user *models.User) error
	ProcessAccepted(ctx context.Context) error
}

// IdentityClientInterface defines the methods used by handlers from the
// identity provider client
type IdentityClientInterface interface {
	Register(ctx context.Context, email, firstName, lastName, password, role string) (string, error)
	Login(ctx context.Context, username, password string) (*identity.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Tokens, error)
	UpdateUser(ctx context.Context, userID, email, firstName, lastName string) error
	DeleteUser(ctx context.Context, userID string) error
}
