package handlers

import (
	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/core/services"
	"salescore-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RoleHandler handles role catalog endpoints
type RoleHandler struct {
	identityService *services.IdentityService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(identityService *services.IdentityService) *RoleHandler {
	return &RoleHandler{identityService: identityService}
}

// GetAll lists the role catalog
// @Summary List roles
// @Description List the fixed role catalog
// @Tags Roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /roles [get]
func (h *RoleHandler) GetAll(c *fiber.Ctx) error {
	roles, err := h.identityService.GetRoles(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list roles")
	}

	responses := make([]*models.RoleResponse, len(roles))
	for i := range roles {
		responses[i] = roles[i].ToResponse()
	}

	return response.Success(c, "Roles retrieved successfully", fiber.Map{
		"roles": responses,
	})
}
