package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/bojanm/teamster-api/internal/identity"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	identity    IdentityClientInterface
	userService UserServiceInterface
	invitations InvitationServiceInterface
}

func NewAuthHandler(identityClient IdentityClientInterface, userService UserServiceInterface, invitations InvitationServiceInterface) *AuthHandler {
	return &AuthHandler{
		identity:    identityClient,
		userService: userService,
		invitations: invitations,
	}
}

// Register creates the account in the identity provider, mirrors it locally,
// and, when an invitation token rides along, joins the inviting team. The
// token must belong to the registering email.
func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if !models.ValidRole(req.Role) {
		c.BadRequest("invalid role")
		return
	}

	if req.InvitationToken != "" {
		invitation, err := h.invitations.ValidateToken(context.Background(), req.InvitationToken)
		if err != nil {
			h.invitationError(c, err)
			return
		}
		if invitation.Email != req.Email {
			c.Forbidden("invitation was issued for a different email")
			return
		}
	}

	keycloakID, err := h.identity.Register(context.Background(), req.Email, req.FirstName, req.LastName, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, identity.ErrUserExists) {
			_ = c.JSON(409, map[string]string{"error": "email already registered"})
			return
		}
		_ = c.JSON(502, map[string]string{"error": "identity provider unavailable"})
		return
	}

	user, err := h.userService.Create(context.Background(), req.Email, req.FirstName, req.LastName, req.Role, keycloakID)
	if err != nil {
		c.InternalServerError("failed to create user")
		return
	}

	if req.InvitationToken != "" {
		// The account exists either way; a failed accept is picked up by the
		// reconciliation pass.
		if err := h.invitations.Accept(context.Background(), req.InvitationToken, user); err != nil {
			log.Printf("failed to accept invitation during registration for %s: %v", req.Email, err)
		}
	}

	tokens, err := h.identity.Login(context.Background(), req.Email, req.Password)
	if err != nil {
		_ = c.JSON(502, map[string]string{"error": "identity provider unavailable"})
		return
	}

	_ = c.JSON(201, dto.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	tokens, err := h.identity.Login(context.Background(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.Unauthorized("invalid credentials")
			return
		}
		_ = c.JSON(502, map[string]string{"error": "identity provider unavailable"})
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Refresh(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	tokens, err := h.identity.Refresh(context.Background(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.Unauthorized("invalid refresh token")
			return
		}
		_ = c.JSON(502, map[string]string{"error": "identity provider unavailable"})
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	})
}

func (h *AuthHandler) invitationError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvitationNotFound):
		c.NotFound("invitation not found")
	case errors.Is(err, services.ErrInvitationUsed):
		c.BadRequest("invitation already used")
	case errors.Is(err, services.ErrInvitationExpired):
		_ = c.JSON(410, map[string]string{"error": "invitation expired"})
	default:
		c.InternalServerError("failed to validate invitation")
	}
}
