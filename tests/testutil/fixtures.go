package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bojanm/teamster-api/internal/database"
	"github.com/bojanm/teamster-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:     fmt.Sprintf("user%d@example.com", f.counter),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", f.counter),
		Role:      models.RoleMember,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, first_name, last_name, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, first_name, last_name, role, keycloak_id, created_at, updated_at
	`, user.Email, user.FirstName, user.LastName, user.Role).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName,
		&user.Role, &user.KeycloakID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithRole sets the user's role
func WithRole(role string) UserOption {
	return func(u *models.User) {
		u.Role = role
	}
}

// CreateTeam creates a test team managed by the given user
func (f *Fixtures) CreateTeam(t *testing.T, manager *models.User, opts ...TeamOption) *models.Team {
	t.Helper()
	f.counter++

	team := &models.Team{
		Name:      fmt.Sprintf("Test Team %d", f.counter),
		ManagerID: manager.ID,
	}

	for _, opt := range opts {
		opt(team)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO teams (name, manager_id)
		VALUES ($1, $2)
		RETURNING id, name, manager_id, created_at, updated_at
	`, team.Name, team.ManagerID).Scan(&team.ID, &team.Name, &team.ManagerID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	return team
}

// TeamOption configures a test team
type TeamOption func(*models.Team)

// WithTeamName sets the team's name
func WithTeamName(name string) TeamOption {
	return func(t *models.Team) {
		t.Name = name
	}
}

// AddTeamMember adds a member to a team
func (f *Fixtures) AddTeamMember(t *testing.T, team *models.Team, user *models.User) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO team_members (team_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, team.ID, user.ID)
	if err != nil {
		t.Fatalf("failed to add team member: %v", err)
	}
}

// CreateInvitation creates a test invitation for a team
func (f *Fixtures) CreateInvitation(t *testing.T, team *models.Team, email string, opts ...InvitationOption) *models.TeamInvitation {
	t.Helper()
	f.counter++

	invitation := &models.TeamInvitation{
		Token:     fmt.Sprintf("test-token-%d", f.counter),
		TeamID:    team.ID,
		Email:     email,
		ExpiresAt: time.Now().UTC().Add(168 * time.Hour),
	}

	for _, opt := range opts {
		opt(invitation)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO team_invitations (token, team_id, email, accepted, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, token, team_id, email, accepted, created_at, expires_at
	`, invitation.Token, invitation.TeamID, invitation.Email, invitation.Accepted, invitation.ExpiresAt).Scan(
		&invitation.ID, &invitation.Token, &invitation.TeamID, &invitation.Email,
		&invitation.Accepted, &invitation.CreatedAt, &invitation.ExpiresAt,
	)
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	return invitation
}

// InvitationOption configures a test invitation
type InvitationOption func(*models.TeamInvitation)

// Accepted marks the invitation as already redeemed
func Accepted() InvitationOption {
	return func(i *models.TeamInvitation) {
		i.Accepted = true
	}
}

// ExpiredAt sets the invitation's expiry
func ExpiredAt(at time.Time) InvitationOption {
	return func(i *models.TeamInvitation) {
		i.ExpiresAt = at
	}
}
