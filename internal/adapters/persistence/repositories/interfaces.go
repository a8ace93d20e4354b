package repositories

import (
	"context"
	"time"

	"salescore-backend/internal/adapters/persistence/models"
)

// UserRepository defines the credential store interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint, includeRoles bool) (*models.User, error)
	GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int, filter string, orderBy []string) ([]*models.User, int64, error)
	ExistsByID(ctx context.Context, id uint) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	ReplaceRoles(ctx context.Context, userID uint, roleIDs []uint) error
	GeneratePasswordResetToken(ctx context.Context, userID uint) (string, error)
	VerifyPasswordResetToken(ctx context.Context, userID uint, token string) error
}

// RoleRepository defines the role registry interface.
// The catalog is seeded at startup and read-only afterwards.
type RoleRepository interface {
	GetAll(ctx context.Context) ([]models.Role, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

// RefreshTokenRepository defines the refresh token ledger interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	MarkUsed(ctx context.Context, id uint) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
