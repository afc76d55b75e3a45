package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/auth"
	"github.com/sitecms/sitecms/internal/models"
	"github.com/sitecms/sitecms/pkg/crypto"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/metrics"
	"github.com/sitecms/sitecms/pkg/validator"
)

// RegisterInput describes a self-service sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// UserAccountService manages end-user sign-up, login and profile lookups.
type UserAccountService struct {
	db  *gorm.DB
	otp *OTPService
	log *zap.Logger
}

// NewUserAccountService constructs a UserAccountService.
func NewUserAccountService(db *gorm.DB, otp *OTPService) (*UserAccountService, error) {
	if db == nil {
		return nil, errors.New("user account service: db is required")
	}
	if otp == nil {
		return nil, errors.New("user account service: otp service is required")
	}
	return &UserAccountService{db: db, otp: otp, log: logger.WithModule("accounts")}, nil
}

// Register creates an unverified user and emails a verification code. When
// the code cannot be delivered the user is removed again so the email stays
// available for a retry.
func (s *UserAccountService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := newAccount(input)
	if err != nil {
		return nil, err
	}

	record := &models.User{Name: user.Name, Email: user.Email, Password: user.Password}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("user account service: create user: %w", err)
	}

	if err := s.otp.IssueCode(ctx, record.ID, record.Email); err != nil {
		if delErr := s.discard(context.WithoutCancel(ctx), record.ID); delErr != nil {
			s.log.Error("failed to roll back user after otp failure", zap.String("user_id", record.ID), zap.Error(delErr))
		}
		return nil, err
	}

	return record, nil
}

// Login authenticates a user. Unverified users get a fresh code and
// ErrVerificationRequired before their password is checked.
func (s *UserAccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normaliseEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		metrics.AuthAttempts.WithLabelValues(auth.RealmUser, "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("user account service: load user: %w", err)
	}

	if !user.Verified {
		metrics.AuthAttempts.WithLabelValues(auth.RealmUser, "unverified").Inc()
		if err := s.otp.IssueCode(ctx, user.ID, user.Email); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrVerificationRequired
	}

	if !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues(auth.RealmUser, "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.AuthAttempts.WithLabelValues(auth.RealmUser, "success").Inc()
	return &user, nil
}

// GetByID loads a user by id.
func (s *UserAccountService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return findByID[models.User](ensureContext(ctx), s.db, id, ErrUserNotFound)
}

func (s *UserAccountService) discard(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.OneTimeCode{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", userID).Error
	})
}

// newAccount validates sign-up input and hashes the password.
func newAccount(input RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	email := normaliseEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, apperrors.NewBadRequest("Name, email and password are required")
	}
	if !accountEmailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if !validator.IsStrongPassword(input.Password) {
		return nil, ErrWeakPassword
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &models.User{Name: name, Email: email, Password: hashed}, nil
}
