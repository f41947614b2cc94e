package handlers

import (
	"context"
	"errors"

	"github.com/bojanm/teamster-api/internal/middleware"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TeamHandler struct {
	teamService TeamServiceInterface
	invitations InvitationServiceInterface
}

func NewTeamHandler(teamService TeamServiceInterface, invitations InvitationServiceInterface) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		invitations: invitations,
	}
}

// Create makes a team together with invitations for every listed email, in
// one shot. One bad email fails the whole request and nothing is created.
func (h *TeamHandler) Create(c *drift.Context) {
	user := middleware.GetCurrentUser(c)

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.Name == "" {
		c.BadRequest("team name is required")
		return
	}

	team, invitations, err := h.invitations.CreateTeamWithInvitations(context.Background(), user, req.Name, req.InvitedEmails)
	if err != nil {
		if errors.Is(err, services.ErrNotManager) {
			c.Forbidden("only managers can create teams")
			return
		}
		if errors.Is(err, services.ErrEmailTaken) {
			_ = c.JSON(409, map[string]string{"error": err.Error()})
			return
		}
		c.InternalServerError("failed to create team")
		return
	}

	_ = c.JSON(201, map[string]any{
		"team": dto.TeamResponse{
			ID:        team.ID,
			Name:      team.Name,
			ManagerID: team.ManagerID,
			CreatedAt: team.CreatedAt,
		},
		"invitations": invitationResponses(invitations, team.Name),
	})
}

// List returns the caller's teams with their member rosters.
func (h *TeamHandler) List(c *drift.Context) {
	user := middleware.GetCurrentUser(c)

	teams, err := h.teamService.GetManagerTeams(context.Background(), user.ID)
	if err != nil {
		c.InternalServerError("failed to list teams")
		return
	}

	response := make([]dto.TeamResponse, 0, len(teams))
	for _, team := range teams {
		members, err := h.teamService.GetMembers(context.Background(), team.ID)
		if err != nil {
			c.InternalServerError("failed to load team members")
			return
		}
		response = append(response, teamResponse(&team, members))
	}

	_ = c.JSON(200, response)
}

func (h *TeamHandler) Get(c *drift.Context) {
	user := middleware.GetCurrentUser(c)

	teamID, err := uuid.Parse(c.Param("teamId"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	team := h.requireManagedTeam(c, teamID, user)
	if team == nil {
		return
	}

	members, err := h.teamService.GetMembers(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to load team members")
		return
	}

	_ = c.JSON(200, teamResponse(team, members))
}

// Invite issues invitations for an existing team.
func (h *TeamHandler) Invite(c *drift.Context) {
	user := middleware.GetCurrentUser(c)

	teamID, err := uuid.Parse(c.Param("teamId"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.InviteRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if len(req.Emails) == 0 {
		c.BadRequest("at least one email is required")
		return
	}

	team := h.requireManagedTeam(c, teamID, user)
	if team == nil {
		return
	}

	invitations, err := h.invitations.InviteToTeam(context.Background(), team, req.Emails)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			_ = c.JSON(409, map[string]string{"error": err.Error()})
			return
		}
		c.InternalServerError("failed to create invitations")
		return
	}

	_ = c.JSON(201, invitationResponses(invitations, team.Name))
}

func (h *TeamHandler) AddMembers(c *drift.Context) {
	user := middleware.GetCurrentUser(c)

	teamID, err := uuid.Parse(c.Param("teamId"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}

	var req dto.AddMembersRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	team := h.requireManagedTeam(c, teamID, user)
	if team == nil {
		return
	}

	if err := h.teamService.AddMembers(context.Background(), teamID, req.UserIDs); err != nil {
		c.InternalServerError("failed to add members")
		return
	}

	members, err := h.teamService.GetMembers(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to load team members")
		return
	}

	_ = c.JSON(200, teamResponse(team, members))
}

func (h *TeamHandler) RemoveMember(c *drift.Context) {
	user := middleware.GetCurrentUser(c)

	teamID, err := uuid.Parse(c.Param("teamId"))
	if err != nil {
		c.BadRequest("invalid team id")
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	team := h.requireManagedTeam(c, teamID, user)
	if team == nil {
		return
	}

	if err := h.teamService.RemoveMember(context.Background(), teamID, userID); err != nil {
		switch {
		case errors.Is(err, services.ErrTeamNotFound), errors.Is(err, services.ErrUserNotFound):
			c.NotFound(err.Error())
		case errors.Is(err, services.ErrNotMember):
			c.BadRequest("user is not a member of this team")
		default:
			c.InternalServerError("failed to remove member")
		}
		return
	}

	_ = c.JSON(200, map[string]string{"message": "member removed"})
}

// ProcessInvitations reconciles accepted invitations into memberships.
func (h *TeamHandler) ProcessInvitations(c *drift.Context) {
	if err := h.invitations.ProcessAccepted(context.Background()); err != nil {
		c.InternalServerError("failed to process invitations")
		return
	}
	_ = c.JSON(200, map[string]string{"message": "accepted invitations processed"})
}

// requireManagedTeam loads the team and ensures the caller manages it.
// Admins pass. On failure the response is already written and nil is
// returned.
func (h *TeamHandler) requireManagedTeam(c *drift.Context, teamID uuid.UUID, user *models.User) *models.Team {
	team, err := h.teamService.GetByID(context.Background(), teamID)
	if err != nil {
		if errors.Is(err, services.ErrTeamNotFound) {
			c.NotFound("team not found")
			return nil
		}
		c.InternalServerError("failed to load team")
		return nil
	}

	if team.ManagerID != user.ID && user.Role != models.RoleAdmin {
		c.Forbidden("you do not manage this team")
		return nil
	}
	return team
}

func teamResponse(team *models.Team, members []models.TeamMember) dto.TeamResponse {
	resp := dto.TeamResponse{
		ID:        team.ID,
		Name:      team.Name,
		ManagerID: team.ManagerID,
		CreatedAt: team.CreatedAt,
	}
	for _, member := range members {
		if member.User == nil {
			continue
		}
		resp.Members = append(resp.Members, dto.UserResponse{
			ID:        member.User.ID,
			Email:     member.User.Email,
			FirstName: member.User.FirstName,
			LastName:  member.User.LastName,
			Role:      member.User.Role,
			CreatedAt: member.User.CreatedAt,
		})
	}
	return resp
}

func invitationResponses(invitations []models.TeamInvitation, teamName string) []dto.InvitationResponse {
	response := make([]dto.InvitationResponse, 0, len(invitations))
	for _, invitation := range invitations {
		response = append(response, dto.InvitationResponse{
			Token:     invitation.Token,
			TeamID:    invitation.TeamID,
			TeamName:  teamName,
			Email:     invitation.Email,
			Accepted:  invitation.Accepted,
			ExpiresAt: invitation.ExpiresAt,
		})
	}
	return response
}
