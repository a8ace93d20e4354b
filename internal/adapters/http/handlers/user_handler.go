package handlers

import (
	"errors"
	"strings"

	"salescore-backend/internal/core/domain"
	"salescore-backend/internal/core/services"
	"salescore-backend/internal/pkg/pagination"
	"salescore-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user administration endpoints
type UserHandler struct {
	identityService *services.IdentityService
}

// NewUserHandler creates a new user handler
func NewUserHandler(identityService *services.IdentityService) *UserHandler {
	return &UserHandler{identityService: identityService}
}

// UpdateUserRequest represents admin user update request body
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	RoleIDs  []uint `json:"roles_ids"`
}

// UpdateUserRolesRequest represents role replacement request body
type UpdateUserRolesRequest struct {
	RoleIDs []uint `json:"roles_ids"`
}

// GetAll lists users
// @Summary List users
// @Description List users with pagination, optional filter and sorting
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param filter query string false "Username/email filter"
// @Param orderBy query string false "Comma-separated sort columns, e.g. username,created_at desc"
// @Success 200 {object} pagination.Response
// @Failure 401 {object} response.Response
// @Router /users [get]
func (h *UserHandler) GetAll(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	var orderBy []string
	if raw := c.Query("orderBy"); raw != "" {
		orderBy = strings.Split(raw, ",")
	}

	output, err := h.identityService.GetUsers(c.Context(), &services.ListUsersInput{
		Page:    params.Page,
		Limit:   params.Limit,
		Filter:  c.Query("filter"),
		OrderBy: orderBy,
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}

	return c.JSON(pagination.NewResponse(output.Users, params, output.Total))
}

// GetByID gets a user by id
// @Summary Get user
// @Description Get a user by id including role assignments
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.identityService.GetUserByID(c.Context(), uint(id), true)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get user")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// Update overwrites a user's username, email and role set
// @Summary Update user
// @Description Update username, email and replace the role assignment set
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateUserRequest true "User data"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if len(req.RoleIDs) == 0 {
		return response.BadRequest(c, "At least one role is required")
	}

	result, err := h.identityService.UpdateUser(c.Context(), uint(id),
		strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.RoleIDs)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update user")
	}
	if !result.Succeeded {
		return response.ErrorList(c, fiber.StatusBadRequest, result.Errors)
	}

	return response.NoContent(c)
}

// UpdateRoles replaces a user's role assignment set
// @Summary Update user roles
// @Description Replace the full role assignment set for a user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateUserRolesRequest true "Role ids"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/roles [put]
func (h *UserHandler) UpdateRoles(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req UpdateUserRolesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if len(req.RoleIDs) == 0 {
		return response.BadRequest(c, "At least one role is required")
	}

	result, err := h.identityService.UpdateUserRoles(c.Context(), uint(id), req.RoleIDs)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update user roles")
	}
	if !result.Succeeded {
		return response.ErrorList(c, fiber.StatusBadRequest, result.Errors)
	}

	return response.NoContent(c)
}

// Delete soft-deletes a user
// @Summary Delete user
// @Description Soft-delete a user; role assignments and refresh tokens are kept
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return response.BadRequest(c, "Invalid user id")
	}

	exists, err := h.identityService.UserExists(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}
	if !exists {
		return response.NotFound(c, "User not found")
	}

	if _, err := h.identityService.DeleteUser(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete user")
	}

	return response.NoContent(c)
}
