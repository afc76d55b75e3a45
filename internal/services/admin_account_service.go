package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/models"
	"github.com/sitecms/sitecms/pkg/crypto"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/metrics"
)

// AdminAccountService manages administrator accounts.
type AdminAccountService struct {
	db *gorm.DB
}

// NewAdminAccountService constructs an AdminAccountService.
func NewAdminAccountService(db *gorm.DB) (*AdminAccountService, error) {
	if db == nil {
		return nil, errors.New("admin account service: db is required")
	}
	return &AdminAccountService{db: db}, nil
}

// Register creates another administrator.
func (s *AdminAccountService) Register(ctx context.Context, input RegisterInput) (*models.Admin, error) {
	ctx = ensureContext(ctx)

	account, err := newAccount(input)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{Name: account.Name, Email: account.Email, Password: account.Password}
	if err := s.db.WithContext(ctx).Create(admin).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken.WithMessage("Admin already exists")
		}
		return nil, fmt.Errorf("admin account service: create admin: %w", err)
	}
	return admin, nil
}

// Login authenticates an administrator.
func (s *AdminAccountService) Login(ctx context.Context, email, password string) (*models.Admin, error) {
	ctx = ensureContext(ctx)

	var admin models.Admin
	err := s.db.WithContext(ctx).Where("email = ?", normaliseEmail(email)).First(&admin).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("admin account service: load admin: %w", err)
	}
	if err != nil || !crypto.VerifyPassword(admin.Password, password) {
		metrics.AuthAttempts.WithLabelValues(auth.RealmAdmin, "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.AuthAttempts.WithLabelValues(auth.RealmAdmin, "success").Inc()
	return &admin, nil
}

// GetByID loads an administrator by id.
func (s *AdminAccountService) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	return findByID[models.Admin](ensureContext(ctx), s.db, id, ErrAdminNotFound)
}
