package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents the users table. Username/email uniqueness is enforced by
// the service-level availability validation over non-deleted rows, not by DB
// unique indexes: a soft-deleted account must not block reuse of its
// username or email.
type User struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Username            string     `gorm:"size:50;not null" json:"username"`
	NormalizedUsername  string     `gorm:"size:50;not null;index" json:"-"`
	Email               string     `gorm:"size:100;not null" json:"email"`
	NormalizedEmail     string     `gorm:"size:100;not null;index" json:"-"`
	PasswordHash        string     `gorm:"size:255;not null" json:"-"`
	PhotoURL            string     `gorm:"size:255" json:"photo_url"`
	IsDeleted           bool       `gorm:"default:false;index" json:"-"`
	ResetTokenHash      *string    `gorm:"size:64" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastModified        time.Time  `gorm:"autoUpdateTime" json:"last_modified"`

	Roles []UserRole `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Normalize recomputes the normalized username/email columns.
// Lookups and uniqueness checks compare these, never the display values.
func (u *User) Normalize() {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	u.NormalizedUsername = strings.ToUpper(u.Username)
	u.NormalizedEmail = strings.ToUpper(u.Email)
}

// NormalizeKey converts a username or email into its lookup form.
func NormalizeKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Role represents the fixed role catalog. Seeded once, read-only afterwards.
type Role struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;not null" json:"name"`
}

func (Role) TableName() string {
	return "roles"
}

// Seeded role ids
const (
	RoleAdministrador uint = 1
	RoleVendedor      uint = 2
	RoleCobrador      uint = 3
)

// UserRole joins users and roles. Role updates replace the whole set for a
// user rather than diffing it.
type UserRole struct {
	UserID uint `gorm:"primaryKey" json:"user_id"`
	RoleID uint `gorm:"primaryKey" json:"role_id"`

	Role Role `gorm:"foreignKey:RoleID" json:"-"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// RefreshToken represents the refresh_tokens ledger. A row transitions
// is_used false->true exactly once and is never deleted by the refresh flow;
// only the retention job removes rows long past expiry.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"size:100;not null;uniqueIndex" json:"-"`
	JwtID     string    `gorm:"size:64;not null" json:"jwt_id"`
	IsUsed    bool      `gorm:"default:false" json:"is_used"`
	IsRevoked bool      `gorm:"default:false" json:"is_revoked"`
	AddedDate time.Time `gorm:"autoCreateTime" json:"added_date"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().UTC().After(rt.ExpiresAt)
}

// RoleResponse DTO
type RoleResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (r *Role) ToResponse() *RoleResponse {
	return &RoleResponse{ID: r.ID, Name: r.Name}
}

// UserResponse DTO
type UserResponse struct {
	ID           uint            `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PhotoURL     string          `json:"photo_url,omitempty"`
	Roles        []*RoleResponse `json:"roles,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	LastModified time.Time       `json:"last_modified"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PhotoURL:     u.PhotoURL,
		CreatedAt:    u.CreatedAt,
		LastModified: u.LastModified,
	}

	for _, ur := range u.Roles {
		if ur.Role.ID != 0 {
			resp.Roles = append(resp.Roles, ur.Role.ToResponse())
		}
	}

	return resp
}

// RoleIDs returns the ids of the user's current role assignments.
func (u *User) RoleIDs() []uint {
	ids := make([]uint, 0, len(u.Roles))
	for _, ur := range u.Roles {
		ids = append(ids, ur.RoleID)
	}
	return ids
}

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Role{},
		&UserRole{},
		&RefreshToken{},
	)
}
