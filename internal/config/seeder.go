package config

import (
	"log"

	"salescore-backend/internal/adapters/persistence/models"
	"salescore-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedRoles(); err != nil {
		return err
	}

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedRoles seeds the fixed role catalog. Idempotent: existing ids are left
// untouched.
func (s *Seeder) seedRoles() error {
	roles := []models.Role{
		{ID: models.RoleAdministrador, Name: "Administrador"},
		{ID: models.RoleVendedor, Name: "Vendedor"},
		{ID: models.RoleCobrador, Name: "Cobrador"},
	}

	for _, role := range roles {
		var count int64
		if err := s.db.Model(&models.Role{}).Where("id = ?", role.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.db.Create(&role).Error; err != nil {
			return err
		}
		log.Printf("✅ Role seeded: %d %s", role.ID, role.Name)
	}

	return nil
}

// seedAdminUser seeds a bootstrap administrator account
// This is for development/testing only
// In production, create the administrator through a secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.UserRole{}).Where("role_id = ?", models.RoleAdministrador).Count(&count)
	if count > 0 {
		return nil // An administrator already exists
	}

	hashedPassword, err := password.Hash(getEnv("SEED_ADMIN_PASSWORD", "admin123456"))
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     getEnv("SEED_ADMIN_USERNAME", "admin"),
		Email:        getEnv("SEED_ADMIN_EMAIL", "admin@salescore.io"),
		PasswordHash: hashedPassword,
	}
	admin.Normalize()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		assignment := &models.UserRole{UserID: admin.ID, RoleID: models.RoleAdministrador}
		return tx.Create(assignment).Error
	})
	if err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}
