package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bojanm/teamster-api/internal/middleware"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/pkg/dto"
	"github.com/bojanm/teamster-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupInvitationTest(t *testing.T) (*testutil.MockInvitationService, *testutil.MockTeamService, http.Handler) {
	t.Helper()
	mockInvitations := new(testutil.MockInvitationService)
	mockTeamService := new(testutil.MockTeamService)
	handler := NewInvitationHandler(mockInvitations, mockTeamService)

	app := drift.New()
	app.Get("/invitations/validate", handler.Validate)
	app.Get("/invitations/details", handler.Details)

	return mockInvitations, mockTeamService, app
}

func TestInvitationHandler_Validate_Success(t *testing.T) {
	mockInvitations, _, app := setupInvitationTest(t)

	invitation := &models.TeamInvitation{
		Token:     "tok-1",
		TeamID:    uuid.New(),
		Email:     "a@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	mockInvitations.On("ValidateToken", mock.Anything, "tok-1").Return(invitation, nil)

	req := httptest.NewRequest(http.MethodGet, "/invitations/validate?token=tok-1", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.ValidateInvitationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Valid)
	assert.Equal(t, "a@example.com", response.Email)
}

func TestInvitationHandler_Validate_MissingToken(t *testing.T) {
	_, _, app := setupInvitationTest(t)

	req := httptest.NewRequest(http.MethodGet, "/invitations/validate", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvitationHandler_Validate_Expired(t *testing.T) {
	mockInvitations, _, app := setupInvitationTest(t)

	mockInvitations.On("ValidateToken", mock.Anything, "tok-1").Return(nil, services.ErrInvitationExpired)

	req := httptest.NewRequest(http.MethodGet, "/invitations/validate?token=tok-1", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestInvitationHandler_Validate_Used(t *testing.T) {
	mockInvitations, _, app := setupInvitationTest(t)

	mockInvitations.On("ValidateToken", mock.Anything, "tok-1").Return(nil, services.ErrInvitationUsed)

	req := httptest.NewRequest(http.MethodGet, "/invitations/validate?token=tok-1", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvitationHandler_Validate_NotFound(t *testing.T) {
	mockInvitations, _, app := setupInvitationTest(t)

	mockInvitations.On("ValidateToken", mock.Anything, "missing").Return(nil, services.ErrInvitationNotFound)

	req := httptest.NewRequest(http.MethodGet, "/invitations/validate?token=missing", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func setupAcceptTest(t *testing.T) (*testutil.MockInvitationService, *testutil.MockUserService, http.Handler) {
	t.Helper()
	mockInvitations := new(testutil.MockInvitationService)
	mockTeamService := new(testutil.MockTeamService)
	mockUserService := new(testutil.MockUserService)
	handler := NewInvitationHandler(mockInvitations, mockTeamService)

	app := drift.New()
	app.Use(middleware.Auth(testutil.TestJWTService(), mockUserService))
	app.Post("/invitations/accept", handler.Accept)

	return mockInvitations, mockUserService, app
}

func TestInvitationHandler_Accept_Success(t *testing.T) {
	mockInvitations, mockUserService, app := setupAcceptTest(t)

	user := &models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleMember}
	invitation := &models.TeamInvitation{
		Token:     "tok-1",
		TeamID:    uuid.New(),
		Email:     "a@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	mockUserService.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	mockInvitations.On("GetByToken", mock.Anything, "tok-1").Return(invitation, nil)
	mockInvitations.On("Accept", mock.Anything, "tok-1", user).Return(nil)

	req := authedRequest(t, http.MethodPost, "/invitations/accept?token=tok-1", nil, user.Email)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockInvitations.AssertExpectations(t)
}

func TestInvitationHandler_Accept_EmailMismatch(t *testing.T) {
	mockInvitations, mockUserService, app := setupAcceptTest(t)

	user := &models.User{ID: uuid.New(), Email: "b@example.com", Role: models.RoleMember}
	invitation := &models.TeamInvitation{
		Token:     "tok-1",
		TeamID:    uuid.New(),
		Email:     "a@example.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	mockUserService.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	mockInvitations.On("GetByToken", mock.Anything, "tok-1").Return(invitation, nil)

	req := authedRequest(t, http.MethodPost, "/invitations/accept?token=tok-1", nil, user.Email)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockInvitations.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvitationHandler_Accept_Expired(t *testing.T) {
	mockInvitations, mockUserService, app := setupAcceptTest(t)

	user := &models.User{ID: uuid.New(), Email: "a@example.com", Role: models.RoleMember}
	mockUserService.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	mockInvitations.On("GetByToken", mock.Anything, "tok-1").Return(nil, services.ErrInvitationExpired)

	req := authedRequest(t, http.MethodPost, "/invitations/accept?token=tok-1", nil, user.Email)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestInvitationHandler_Details_IncludesTeamName(t *testing.T) {
	mockInvitations, mockTeamService, app := setupInvitationTest(t)

	teamID := uuid.New()
	invitation := &models.TeamInvitation{
		Token:     "tok-1",
		TeamID:    teamID,
		Email:     "a@example.com",
		Accepted:  true,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	team := &models.Team{ID: teamID, Name: "Platform", ManagerID: uuid.New()}

	mockInvitations.On("GetByToken", mock.Anything, "tok-1").Return(invitation, nil)
	mockTeamService.On("GetByID", mock.Anything, teamID).Return(team, nil)

	client := testutil.NewHTTPTestClient(t, app)
	rec := client.GET("/invitations/details?token=tok-1", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var response dto.InvitationResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, "Platform", response.TeamName)
	assert.True(t, response.Accepted)
}
