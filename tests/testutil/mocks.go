package testutil

import (
	"context"

	"github.com/bojanm/teamster-api/internal/identity"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, email, firstName, lastName, role, keycloakID string) (*models.User, error) {
	args := m.Called(ctx, email, firstName, lastName, role, keycloakID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, email, firstName, lastName, role string) (*models.User, error) {
	args := m.Called(ctx, id, email, firstName, lastName, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) GetManagerTeams(ctx context.Context, managerID uuid.UUID) ([]models.Team, error) {
	args := m.Called(ctx, managerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *MockTeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *MockTeamService) AddMembers(ctx context.Context, teamID uuid.UUID, userIDs []uuid.UUID) error {
	args := m.Called(ctx, teamID, userIDs)
	return args.Error(0)
}

func (m *MockTeamService) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	args := m.Called(ctx, teamID, userID)
	return args.Error(0)
}

// MockInvitationService mocks the InvitationService
type MockInvitationService struct {
	mock.Mock
}

func (m *MockInvitationService) CreateTeamWithInvitations(ctx context.Context, manager *models.User, teamName string, emails []string) (*models.Team, []models.TeamInvitation, error) {
	args := m.Called(ctx, manager, teamName, emails)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Team), args.Get(1).([]models.TeamInvitation), args.Error(2)
}

func (m *MockInvitationService) InviteToTeam(ctx context.Context, team *models.Team, emails []string) ([]models.TeamInvitation, error) {
	args := m.Called(ctx, team, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TeamInvitation), args.Error(1)
}

func (m *MockInvitationService) ValidateToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamInvitation), args.Error(1)
}

func (m *MockInvitationService) GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TeamInvitation), args.Error(1)
}

func (m *MockInvitationService) Accept(ctx context.Context, token string, user *models.User) error {
	args := m.Called(ctx, token, user)
	return args.Error(0)
}

func (m *MockInvitationService) ProcessAccepted(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockIdentityClient mocks the identity provider client
type MockIdentityClient struct {
	mock.Mock
}

func (m *MockIdentityClient) Register(ctx context.Context, email, firstName, lastName, password, role string) (string, error) {
	args := m.Called(ctx, email, firstName, lastName, password, role)
	return args.String(0), args.Error(1)
}

func (m *MockIdentityClient) Login(ctx context.Context, username, password string) (*identity.Tokens, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tokens), args.Error(1)
}

func (m *MockIdentityClient) Refresh(ctx context.Context, refreshToken string) (*identity.Tokens, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tokens), args.Error(1)
}

func (m *MockIdentityClient) UpdateUser(ctx context.Context, userID, email, firstName, lastName string) error {
	args := m.Called(ctx, userID, email, firstName, lastName)
	return args.Error(0)
}

func (m *MockIdentityClient) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEmailSender mocks invitation email delivery
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendTeamInvitation(to, teamName, registrationURL string) error {
	args := m.Called(to, teamName, registrationURL)
	return args.Error(0)
}
