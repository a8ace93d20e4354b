package services

import (
	"context"
	"errors"
	"fmt"

	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/adapters/persistence/repositories"
	"salescore-backend/internal/core/domain"
	"salescore-backend/internal/pkg/password"

	"salescore-backend/internal/pkg/jwt"

	"gorm.io/gorm"
)

// IdentityService orchestrates registration, login, the password lifecycle
// and refresh token rotation. Expected business failures are reported through
// ServiceResult/AuthResult error lists; a non-nil error means the target
// account does not exist or the persistence layer failed.
type IdentityService struct {
	userRepo         repositories.UserRepository
	roleRepo         repositories.RoleRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokenService     *TokenService
}

// NewIdentityService creates a new identity service
func NewIdentityService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokenService *TokenService,
) *IdentityService {
	return &IdentityService{
		userRepo:         userRepo,
		roleRepo:         roleRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokenService:     tokenService,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	RoleIDs  []uint `json:"roles_ids"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page    int
	Limit   int
	Filter  string
	OrderBy []string
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// RegisterUser registers a new account. Availability and role validation run
// independently; a failing registration reports the union of both error
// lists, never just the first failing category.
func (s *IdentityService) RegisterUser(ctx context.Context, input *RegisterInput) (*AuthResult, error) {
	availability, err := s.validateUserAvailability(ctx, input.Username, input.Email, 0)
	if err != nil {
		return nil, err
	}

	rolesValidation, err := s.validateRoles(ctx, input.RoleIDs)
	if err != nil {
		return nil, err
	}

	if !availability.Succeeded || !rolesValidation.Succeeded {
		return authFailure(append(availability.Errors, rolesValidation.Errors...)...), nil
	}

	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.userRepo.ReplaceRoles(ctx, user.ID, input.RoleIDs); err != nil {
		return nil, err
	}
	user.Roles = assignments(user.ID, input.RoleIDs)

	return s.tokenService.IssueTokens(ctx, user)
}

// Login authenticates a username or email plus password.
// A missing account is reported by name; a wrong password yields a bare
// failure with no detail beyond the flag.
func (s *IdentityService) Login(ctx context.Context, input *LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authFailure(fmt.Sprintf("User %s does not exist", input.Username)), nil
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.PasswordHash) {
		return &AuthResult{}, nil
	}

	return s.tokenService.IssueTokens(ctx, user)
}

// RefreshToken exchanges an access/refresh token pair for a fresh one.
// The stored record is marked used before new tokens are issued, and the
// transition is atomic at the store: concurrent calls on the same token
// produce at most one winner.
func (s *IdentityService) RefreshToken(ctx context.Context, accessToken, refreshToken string) (*AuthResult, error) {
	claims, err := jwt.ParseIgnoringExpiry(accessToken, s.tokenService.cfg.JWT.Secret)
	if err != nil {
		return authFailure("Token is not valid"), nil
	}

	record, err := s.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authFailure("Refresh token does not exist"), nil
		}
		return nil, err
	}

	if record.IsExpired() {
		return authFailure("Refresh token has expired, user needs to relogin"), nil
	}

	if record.IsUsed || record.IsRevoked {
		return authFailure("Token has been used or revoked"), nil
	}

	if record.JwtID != claims.ID {
		return authFailure("The token does not match the saved token"), nil
	}

	if err := s.refreshTokenRepo.MarkUsed(ctx, record.ID); err != nil {
		if errors.Is(err, domain.ErrTokenConsumed) {
			// Lost the race against a concurrent refresh; no retry
			return authFailure("Token has been used or revoked"), nil
		}
		return nil, err
	}

	user, err := s.getUser(ctx, record.UserID, true)
	if err != nil {
		return nil, err
	}

	return s.tokenService.IssueTokens(ctx, user)
}

// ChangePassword re-authenticates with the current password and sets a new
// one. Success issues a fresh token pair.
func (s *IdentityService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (*AuthResult, error) {
	user, err := s.getUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	if !password.Verify(currentPassword, user.PasswordHash) {
		return authFailure("Current password is not valid"), nil
	}

	if newPassword == currentPassword {
		return authFailure("The new password must be different to current password"), nil
	}

	if result := s.setPassword(ctx, user, newPassword); result != nil {
		return &AuthResult{ServiceResult: *result}, nil
	}

	return s.tokenService.IssueTokens(ctx, user)
}

// ResetPassword redeems a one-time reset token and sets a new password.
// Success issues a fresh token pair.
func (s *IdentityService) ResetPassword(ctx context.Context, userID uint, resetToken, newPassword string) (*AuthResult, error) {
	user, err := s.getUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.VerifyPasswordResetToken(ctx, userID, resetToken); err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			return authFailure("Invalid or expired reset token"), nil
		}
		return nil, err
	}

	if result := s.setPassword(ctx, user, newPassword); result != nil {
		return &AuthResult{ServiceResult: *result}, nil
	}

	return s.tokenService.IssueTokens(ctx, user)
}

// GeneratePasswordResetToken mints a reset token for the account.
// Delivering it to the account owner is the caller's concern.
func (s *IdentityService) GeneratePasswordResetToken(ctx context.Context, userID uint) (string, error) {
	return s.userRepo.GeneratePasswordResetToken(ctx, userID)
}

// UpdateAccountInfo overwrites username and email after re-running the
// availability validation, excluding the account itself.
func (s *IdentityService) UpdateAccountInfo(ctx context.Context, userID uint, username, email string) (*ServiceResult, error) {
	availability, err := s.validateUserAvailability(ctx, username, email, userID)
	if err != nil {
		return nil, err
	}
	if !availability.Succeeded {
		return availability, nil
	}

	user, err := s.getUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return &ServiceResult{Succeeded: true}, nil
}

// UpdateUser overwrites username/email and replaces the full role assignment
// set. Availability and role validation failures are reported together.
func (s *IdentityService) UpdateUser(ctx context.Context, userID uint, username, email string, roleIDs []uint) (*ServiceResult, error) {
	availability, err := s.validateUserAvailability(ctx, username, email, userID)
	if err != nil {
		return nil, err
	}

	rolesValidation, err := s.validateRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}

	if !availability.Succeeded || !rolesValidation.Succeeded {
		return failure(append(availability.Errors, rolesValidation.Errors...)...), nil
	}

	user, err := s.getUser(ctx, userID, false)
	if err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.userRepo.ReplaceRoles(ctx, userID, roleIDs); err != nil {
		return nil, err
	}

	return &ServiceResult{Succeeded: true}, nil
}

// UpdateUserRoles replaces the full role assignment set for an account
func (s *IdentityService) UpdateUserRoles(ctx context.Context, userID uint, roleIDs []uint) (*ServiceResult, error) {
	rolesValidation, err := s.validateRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	if !rolesValidation.Succeeded {
		return rolesValidation, nil
	}

	if _, err := s.getUser(ctx, userID, false); err != nil {
		return nil, err
	}

	if err := s.userRepo.ReplaceRoles(ctx, userID, roleIDs); err != nil {
		return nil, err
	}

	return &ServiceResult{Succeeded: true}, nil
}

// DeleteUser soft-deletes an account. Role assignments and refresh token
// records are kept.
func (s *IdentityService) DeleteUser(ctx context.Context, userID uint) (bool, error) {
	user, err := s.getUser(ctx, userID, false)
	if err != nil {
		return false, err
	}

	user.IsDeleted = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return false, err
	}

	return true, nil
}

// UserExists reports whether a non-deleted account with the id exists
func (s *IdentityService) UserExists(ctx context.Context, userID uint) (bool, error) {
	return s.userRepo.ExistsByID(ctx, userID)
}

// GetUserByID gets a non-deleted user by id
func (s *IdentityService) GetUserByID(ctx context.Context, userID uint, includeRoles bool) (*models.User, error) {
	return s.getUser(ctx, userID, includeRoles)
}

// GetUserByUsername gets a non-deleted user by normalized username or email
func (s *IdentityService) GetUserByUsername(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	user, err := s.userRepo.GetByUsernameOrEmail(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUsers lists non-deleted users with pagination, filter and sort
func (s *IdentityService) GetUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit

	users, total, err := s.userRepo.List(ctx, offset, input.Limit, input.Filter, input.OrderBy)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListUsersOutput{
		Users:      responses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetRoles enumerates the role catalog
func (s *IdentityService) GetRoles(ctx context.Context) ([]models.Role, error) {
	return s.roleRepo.GetAll(ctx)
}

// getUser loads a non-deleted user, mapping a miss to ErrUserNotFound
func (s *IdentityService) getUser(ctx context.Context, userID uint, includeRoles bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID, includeRoles)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// setPassword validates and persists a new password hash.
// Returns a failure result when the password is rejected, nil on success.
func (s *IdentityService) setPassword(ctx context.Context, user *models.User, newPassword string) *ServiceResult {
	if !password.ValidateLength(newPassword) {
		return failure(fmt.Sprintf("Password must be at least %d characters", password.MinLength))
	}

	hashed, err := password.Hash(newPassword)
	if err != nil {
		return failure(err.Error())
	}

	user.PasswordHash = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return failure(err.Error())
	}

	return nil
}

// validateRoles checks every role id against the registry, accumulating one
// error per missing id
func (s *IdentityService) validateRoles(ctx context.Context, roleIDs []uint) (*ServiceResult, error) {
	result := &ServiceResult{Succeeded: true}

	for _, roleID := range roleIDs {
		exists, err := s.roleRepo.Exists(ctx, roleID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		result.Succeeded = false
		result.Errors = append(result.Errors, fmt.Sprintf("Role with Id %d does not exist", roleID))
	}

	return result, nil
}

// validateUserAvailability checks normalized username/email collisions among
// non-deleted accounts. Both errors may fire together. excludeID skips the
// account currently being edited.
func (s *IdentityService) validateUserAvailability(ctx context.Context, username, email string, excludeID uint) (*ServiceResult, error) {
	result := &ServiceResult{Succeeded: true}

	emailTaken, err := s.userRepo.EmailTaken(ctx, email, excludeID)
	if err != nil {
		return nil, err
	}

	usernameTaken, err := s.userRepo.UsernameTaken(ctx, username, excludeID)
	if err != nil {
		return nil, err
	}

	if emailTaken {
		result.Succeeded = false
		result.Errors = append(result.Errors, "User with this email already exists")
	}

	if usernameTaken {
		result.Succeeded = false
		result.Errors = append(result.Errors, "User with this username already exists")
	}

	return result, nil
}

// assignments builds the in-memory role assignment set for a freshly
// registered user so token issuance sees the role claims
func assignments(userID uint, roleIDs []uint) []models.UserRole {
	out := make([]models.UserRole, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		out = append(out, models.UserRole{UserID: userID, RoleID: roleID})
	}
	return out
}
