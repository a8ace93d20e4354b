package handlers

import (
	"fmt"
	"strings"
	"time"

	"salescore-backend/internal/config"
	"salescore-backend/internal/core/services"
	"salescore-backend/internal/pkg/password"
	"salescore-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	identityService *services.IdentityService
	cfg             *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(identityService *services.IdentityService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		identityService: identityService,
		cfg:             cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleIDs  []uint `json:"roles_ids"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest represents token refresh request body
type RefreshTokenRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Register handles user registration
// @Summary Register new user
// @Description Register a new user with role assignments
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}
	if !password.ValidateLength(req.Password) {
		return response.BadRequest(c, fmt.Sprintf("Password must be at least %d characters", password.MinLength))
	}
	if len(req.RoleIDs) == 0 {
		return response.BadRequest(c, "At least one role is required")
	}

	input := &services.RegisterInput{
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
		RoleIDs:  req.RoleIDs,
	}

	result, err := h.identityService.RegisterUser(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to register user")
	}
	if !result.Succeeded {
		return response.ErrorList(c, fiber.StatusBadRequest, result.Errors)
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)

	user, err := h.identityService.GetUserByUsername(c.Context(), input.Username)
	if err != nil {
		return response.InternalServerError(c, "Failed to register user")
	}

	return response.Created(c, "User registered successfully", fiber.Map{
		"user":          user.ToResponse(),
		"token":         result.Token,
		"refresh_token": result.RefreshToken,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate by username or email and return a token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}

	result, err := h.identityService.Login(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to login")
	}
	if !result.Succeeded {
		if len(result.Errors) > 0 {
			return response.ErrorList(c, fiber.StatusUnauthorized, result.Errors)
		}
		return response.Unauthorized(c, "Invalid username or password")
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)

	user, err := h.identityService.GetUserByUsername(c.Context(), input.Username)
	if err != nil {
		return response.InternalServerError(c, "Failed to login")
	}

	return response.Success(c, "Login successful", fiber.Map{
		"user":          user.ToResponse(),
		"token":         result.Token,
		"refresh_token": result.RefreshToken,
	})
}

// RefreshToken handles token refresh
// @Summary Refresh access token
// @Description Exchange an access/refresh token pair for a fresh pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RefreshTokenRequest true "Token pair"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/refreshtoken [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Fall back to cookies so browser clients refresh without a body
	if req.Token == "" {
		req.Token = c.Cookies("access_token")
	}
	if req.RefreshToken == "" {
		req.RefreshToken = c.Cookies("refresh_token")
	}

	if req.Token == "" {
		return response.BadRequest(c, "Token is required")
	}
	if req.RefreshToken == "" {
		return response.BadRequest(c, "Refresh token is required")
	}

	result, err := h.identityService.RefreshToken(c.Context(), req.Token, req.RefreshToken)
	if err != nil {
		return response.InternalServerError(c, "Failed to refresh token")
	}
	if !result.Succeeded {
		h.clearAuthCookies(c)
		return response.ErrorList(c, fiber.StatusBadRequest, result.Errors)
	}

	h.setAuthCookies(c, result.Token, result.RefreshToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"token":         result.Token,
		"refresh_token": result.RefreshToken,
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.cfg.JWT.AccessTokenHours * 3600),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.cfg.JWT.RefreshTokenHours * 3600),
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
