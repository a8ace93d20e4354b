package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/core/domain"
	"salescore-backend/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// resetTokenTTL bounds how long a password reset token stays redeemable.
const resetTokenTTL = 2 * time.Hour

// sortableColumns whitelists user list order-by fields
var sortableColumns = map[string]string{
	"id":            "id",
	"username":      "username",
	"email":         "email",
	"created_at":    "created_at",
	"last_modified": "last_modified",
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// active scopes queries to non-deleted accounts
func (r *userRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("is_deleted = ?", false)
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Normalize()
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a non-deleted user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint, includeRoles bool) (*models.User, error) {
	var user models.User

	query := r.db.WithContext(ctx).Where("is_deleted = ?", false)
	if includeRoles {
		query = query.Preload("Roles").Preload("Roles.Role")
	}

	if err := query.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsernameOrEmail gets a non-deleted user whose normalized username or
// normalized email matches the given value
func (r *userRepository) GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	key := models.NormalizeKey(usernameOrEmail)

	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Roles").Preload("Roles.Role").
		Where("is_deleted = ?", false).
		Where("normalized_username = ? OR normalized_email = ?", key, key).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	user.Normalize()
	return r.db.WithContext(ctx).Save(user).Error
}

// List lists non-deleted users with pagination, an optional username/email
// filter and whitelisted order-by columns
func (r *userRepository) List(ctx context.Context, offset, limit int, filter string, orderBy []string) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := r.active(ctx)

	if filter = strings.TrimSpace(filter); filter != "" {
		like := "%" + models.NormalizeKey(filter) + "%"
		query = query.Where("normalized_username LIKE ? OR normalized_email LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	for _, clause := range buildOrder(orderBy) {
		query = query.Order(clause)
	}

	err := query.Preload("Roles").Preload("Roles.Role").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// buildOrder maps "column" / "column desc" entries onto whitelisted columns,
// dropping anything it does not recognize
func buildOrder(orderBy []string) []string {
	var clauses []string
	for _, entry := range orderBy {
		fields := strings.Fields(strings.ToLower(strings.TrimSpace(entry)))
		if len(fields) == 0 {
			continue
		}
		column, ok := sortableColumns[fields[0]]
		if !ok {
			continue
		}
		if len(fields) > 1 && fields[1] == "desc" {
			column += " DESC"
		}
		clauses = append(clauses, column)
	}
	return clauses
}

// ExistsByID checks if a non-deleted user with the id exists
func (r *userRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.active(ctx).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UsernameTaken checks for a normalized username collision among non-deleted
// accounts, excluding the account being edited when excludeID is non-zero
func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	var count int64
	query := r.active(ctx).Where("normalized_username = ?", models.NormalizeKey(username))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// EmailTaken checks for a normalized email collision among non-deleted
// accounts, excluding the account being edited when excludeID is non-zero
func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	query := r.active(ctx).Where("normalized_email = ?", models.NormalizeKey(email))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// ReplaceRoles replaces the full role assignment set for a user
func (r *userRepository) ReplaceRoles(ctx context.Context, userID uint, roleIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}

		if len(roleIDs) == 0 {
			return nil
		}

		assignments := make([]models.UserRole, 0, len(roleIDs))
		for _, roleID := range roleIDs {
			assignments = append(assignments, models.UserRole{UserID: userID, RoleID: roleID})
		}
		return tx.Create(&assignments).Error
	})
}

// GeneratePasswordResetToken mints a one-time reset token for the user and
// stores only its hash, with a bounded expiry
func (r *userRepository) GeneratePasswordResetToken(ctx context.Context, userID uint) (string, error) {
	exists, err := r.ExistsByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", domain.ErrUserNotFound
	}

	token := fmt.Sprintf("%s.%s", uuid.NewString(), uuid.NewString())
	tokenHash := password.HashToken(token)
	expiresAt := time.Now().UTC().Add(resetTokenTTL)

	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token_hash":       tokenHash,
			"reset_token_expires_at": expiresAt,
		}).Error
	if err != nil {
		return "", err
	}

	return token, nil
}

// VerifyPasswordResetToken checks the token against the stored hash and
// consumes it so it cannot be redeemed twice
func (r *userRepository) VerifyPasswordResetToken(ctx context.Context, userID uint, token string) error {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if user.ResetTokenHash == nil || user.ResetTokenExpiresAt == nil {
		return domain.ErrResetTokenInvalid
	}
	if time.Now().UTC().After(*user.ResetTokenExpiresAt) {
		return domain.ErrResetTokenInvalid
	}
	if *user.ResetTokenHash != password.HashToken(token) {
		return domain.ErrResetTokenInvalid
	}

	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
		}).Error
}
