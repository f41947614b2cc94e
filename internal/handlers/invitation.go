package handlers

import (
	"context"
	"errors"

	"github.com/bojanm/teamster-api/internal/middleware"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

// InvitationHandler serves the token endpoints the registration page drives,
// plus in-app acceptance for users who already have an account.
type InvitationHandler struct {
	invitations InvitationServiceInterface
	teamService TeamServiceInterface
}

func NewInvitationHandler(invitations InvitationServiceInterface, teamService TeamServiceInterface) *InvitationHandler {
	return &InvitationHandler{
		invitations: invitations,
		teamService: teamService,
	}
}

// Validate checks whether a token can still be redeemed.
func (h *InvitationHandler) Validate(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	invitation, err := h.invitations.ValidateToken(context.Background(), token)
	if err != nil {
		h.invitationError(c, err)
		return
	}

	_ = c.JSON(200, dto.ValidateInvitationResponse{
		Valid: true,
		Email: invitation.Email,
	})
}

// Details returns the invitation for display on the registration page,
// including the inviting team's name. Already accepted invitations are still
// shown; expired ones are not.
func (h *InvitationHandler) Details(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	invitation, err := h.invitations.GetByToken(context.Background(), token)
	if err != nil {
		h.invitationError(c, err)
		return
	}

	teamName := ""
	if team, err := h.teamService.GetByID(context.Background(), invitation.TeamID); err == nil {
		teamName = team.Name
	}

	_ = c.JSON(200, dto.InvitationResponse{
		Token:     invitation.Token,
		TeamID:    invitation.TeamID,
		TeamName:  teamName,
		Email:     invitation.Email,
		Accepted:  invitation.Accepted,
		ExpiresAt: invitation.ExpiresAt,
	})
}

// Accept redeems an invitation on behalf of the authenticated caller. The
// invitation must have been issued to the caller's email.
func (h *InvitationHandler) Accept(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}

	invitation, err := h.invitations.GetByToken(context.Background(), token)
	if err != nil {
		h.invitationError(c, err)
		return
	}
	if invitation.Email != user.Email {
		c.Forbidden("invitation was issued for a different email")
		return
	}

	if err := h.invitations.Accept(context.Background(), token, user); err != nil {
		h.invitationError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "invitation accepted"})
}

func (h *InvitationHandler) invitationError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvitationNotFound):
		c.NotFound("invitation not found")
	case errors.Is(err, services.ErrInvitationUsed):
		c.BadRequest("invitation already used")
	case errors.Is(err, services.ErrInvitationExpired):
		_ = c.JSON(410, map[string]string{"error": "invitation expired"})
	default:
		c.InternalServerError("failed to load invitation")
	}
}
