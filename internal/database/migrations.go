package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/models"
	"github.com/sitecms/sitecms/pkg/crypto"
)

// BootstrapAdmin describes the administrator created on first start.
type BootstrapAdmin struct {
	Name     string
	Email    string
	Password string
}

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Admin{},
		&models.OneTimeCode{},
		&models.Blog{},
		&models.Comment{},
		&models.Testimonial{},
		&models.TeamMember{},
		&models.Company{},
		&models.Offering{},
		&models.Course{},
		&models.GalleryImage{},
		&models.Consult{},
		&models.Contact{},
		&models.CacheEntry{},
	)
}

// SeedBootstrapAdmin inserts the configured administrator unless an admin with
// the same email already exists. An empty email disables seeding.
func SeedBootstrapAdmin(db *gorm.DB, admin BootstrapAdmin) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		return nil
	}
	if strings.TrimSpace(admin.Password) == "" {
		return errors.New("bootstrap admin password must be provided")
	}

	var count int64
	if err := db.Model(&models.Admin{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := crypto.HashPassword(admin.Password)
	if err != nil {
		return err
	}

	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Administrator"
	}

	return db.Create(&models.Admin{
		Name:     name,
		Email:    email,
		Password: hashed,
	}).Error
}
