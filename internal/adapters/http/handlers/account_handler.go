package handlers

import (
	"errors"
	"strings"

	"salescore-backend/internal/adapters/http/middleware"
	"salescore-backend/internal/core/domain"
	"salescore-backend/internal/core/services"
	"salescore-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles self-service account endpoints. Every route takes
// the target account id from the path and requires it to match the
// authenticated caller.
type AccountHandler struct {
	identityService *services.IdentityService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(identityService *services.IdentityService) *AccountHandler {
	return &AccountHandler{identityService: identityService}
}

// UpdateAccountInfoRequest represents account info update request body
type UpdateAccountInfoRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ChangePasswordRequest represents change password request body
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ResetPasswordRequest represents reset password request body
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// currentUserMatches enforces that the authenticated caller addresses its
// own account
func currentUserMatches(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return 0, false
	}

	currentID, ok := middleware.CurrentUserID(c)
	if !ok || currentID != uint(id) {
		return 0, false
	}

	return uint(id), true
}

// UpdateAccountInfo handles username/email updates for the caller's account
// @Summary Update account info
// @Description Update the authenticated user's username and email
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param body body UpdateAccountInfoRequest true "Account data"
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /account/{id} [put]
func (h *AccountHandler) UpdateAccountInfo(c *fiber.Ctx) error {
	userID, ok := currentUserMatches(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req UpdateAccountInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	result, err := h.identityService.UpdateAccountInfo(c.Context(),
		userID, strings.TrimSpace(req.Username), strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to update account")
	}
	if !result.Succeeded {
		return response.ErrorList(c, fiber.StatusBadRequest, result.Errors)
	}

	return response.NoContent(c)
}

// ChangePassword handles password changes for the caller's account
// @Summary Change password
// @Description Change the authenticated user's password and re-issue tokens
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param body body ChangePasswordRequest true "Password data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /account/{id}/changepassword [post]
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := currentUserMatches(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.CurrentPassword == "" {
		return response.BadRequest(c, "Current password is required")
	}
	if req.NewPassword == "" {
		return response.BadRequest(c, "New password is required")
	}

	result, err := h.identityService.ChangePassword(c.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to change password")
	}
	if !result.Succeeded {
		return response.ErrorList(c, fiber.StatusBadRequest, result.Errors)
	}

	return response.Success(c, "Password changed successfully", fiber.Map{
		"token":         result.Token,
		"refresh_token": result.RefreshToken,
	})
}

// ResetPassword handles one-time reset token redemption
// @Summary Reset password
// @Description Reset the password using a one-time reset token
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param body body ResetPasswordRequest true "Reset data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /account/{id}/resetpassword [post]
func (h *AccountHandler) ResetPassword(c *fiber.Ctx) error {
	userID, ok := currentUserMatches(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Token == "" {
		return response.BadRequest(c, "Reset token is required")
	}
	if req.NewPassword == "" {
		return response.BadRequest(c, "New password is required")
	}

	result, err := h.identityService.ResetPassword(c.Context(), userID, req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to reset password")
	}
	if !result.Succeeded {
		return response.ErrorList(c, fiber.StatusBadRequest, result.Errors)
	}

	return response.Success(c, "Password reset successfully", fiber.Map{
		"token":         result.Token,
		"refresh_token": result.RefreshToken,
	})
}

// GenerateResetPasswordToken mints a one-time password reset token
// @Summary Generate password reset token
// @Description Generate a one-time reset token for the authenticated user
// @Tags Account
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /account/{id}/resetpasswordtoken [get]
func (h *AccountHandler) GenerateResetPasswordToken(c *fiber.Ctx) error {
	userID, ok := currentUserMatches(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	token, err := h.identityService.GeneratePasswordResetToken(c.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to generate reset token")
	}

	// TODO: send the token to the account owner's email once a mail
	// integration exists; returning it in the response mirrors the current
	// client flow
	return response.Success(c, "Reset token generated", fiber.Map{
		"reset_token": token,
	})
}
