package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/bojanm/teamster-api/internal/middleware"
	"github.com/bojanm/teamster-api/internal/models"
	"github.com/bojanm/teamster-api/internal/services"
	"github.com/bojanm/teamster-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// UserHandler exposes the admin user directory. Profile changes are pushed to
// the identity provider so the mirror and the account stay in step.
type UserHandler struct {
	userService UserServiceInterface
	identity    IdentityClientInterface
}

func NewUserHandler(userService UserServiceInterface, identityClient IdentityClientInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		identity:    identityClient,
	}
}

// Me returns the caller's own mirror record.
func (h *UserHandler) Me(c *drift.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		c.Unauthorized("not authenticated")
		return
	}
	_ = c.JSON(200, userResponse(user))
}

func (h *UserHandler) List(c *drift.Context) {
	users, err := h.userService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to list users")
		return
	}

	response := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		response = append(response, userResponse(&user))
	}
	_ = c.JSON(200, response)
}

func (h *UserHandler) Get(c *drift.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.NotFound("user not found")
			return
		}
		c.InternalServerError("failed to load user")
		return
	}

	_ = c.JSON(200, userResponse(user))
}

func (h *UserHandler) Update(c *drift.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if !models.ValidRole(req.Role) {
		c.BadRequest("invalid role")
		return
	}

	user, err := h.userService.Update(context.Background(), userID, req.Email, req.FirstName, req.LastName, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.NotFound("user not found")
		case errors.Is(err, services.ErrEmailInUse):
			_ = c.JSON(409, map[string]string{"error": "email already in use"})
		default:
			c.InternalServerError("failed to update user")
		}
		return
	}

	if user.KeycloakID != nil {
		if err := h.identity.UpdateUser(context.Background(), *user.KeycloakID, user.Email, user.FirstName, user.LastName); err != nil {
			log.Printf("failed to sync user %s to identity provider: %v", user.ID, err)
		}
	}

	_ = c.JSON(200, userResponse(user))
}

func (h *UserHandler) Delete(c *drift.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.NotFound("user not found")
			return
		}
		c.InternalServerError("failed to load user")
		return
	}

	if user.KeycloakID != nil {
		if err := h.identity.DeleteUser(context.Background(), *user.KeycloakID); err != nil {
			log.Printf("failed to delete user %s from identity provider: %v", user.ID, err)
		}
	}

	if err := h.userService.Delete(context.Background(), userID); err != nil {
		c.InternalServerError("failed to delete user")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "user deleted"})
}

func userResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
