package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sitecms/sitecms/internal/models"
	"github.com/sitecms/sitecms/pkg/crypto"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/mail"
	"github.com/sitecms/sitecms/pkg/metrics"
)

const (
	defaultOTPTTL    = 5 * time.Minute
	otpDigits        = 6
	otpEmailSubject  = "Email Verification OTP"
	otpEventIssued   = "issued"
	otpEventVerified = "verified"
	otpEventRejected = "rejected"
	otpEventExpired  = "expired"
)

// OTPOption customises the OTPService.
type OTPOption func(*OTPService)

// WithOTPTTL overrides the code lifetime.
func WithOTPTTL(d time.Duration) OTPOption {
	return func(s *OTPService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithOTPClock injects a custom time source.
func WithOTPClock(clock func() time.Time) OTPOption {
	return func(s *OTPService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithOTPGenerator replaces the random code source.
func WithOTPGenerator(generate func() (string, error)) OTPOption {
	return func(s *OTPService) {
		if generate != nil {
			s.generate = generate
		}
	}
}

// OTPService issues and redeems the one-time codes that verify a user's email.
type OTPService struct {
	db       *gorm.DB
	mailer   mail.Mailer
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
	log      *zap.Logger
}

// NewOTPService constructs an OTPService.
func NewOTPService(db *gorm.DB, mailer mail.Mailer, opts ...OTPOption) (*OTPService, error) {
	if db == nil {
		return nil, errors.New("otp service: db is required")
	}
	if mailer == nil {
		return nil, errors.New("otp service: mailer is required")
	}

	svc := &OTPService{
		db:       db,
		mailer:   mailer,
		ttl:      defaultOTPTTL,
		now:      time.Now,
		generate: func() (string, error) { return crypto.GenerateNumericCode(otpDigits) },
		log:      logger.WithModule("otp"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// TTL reports how long issued codes stay valid.
func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// IssueCode replaces any pending code of the user with a fresh one and emails
// it. A delivery failure is returned as a dependency failure.
func (s *OTPService) IssueCode(ctx context.Context, userID, email string) error {
	ctx = ensureContext(ctx)

	userID = strings.TrimSpace(userID)
	email = normaliseEmail(email)
	if userID == "" || email == "" {
		return errors.New("otp service: user id and email are required")
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("otp service: generate code: %w", err)
	}

	now := s.now()
	record := models.OneTimeCode{
		BaseModel: models.BaseModel{CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
		CodeHash:  crypto.HashToken(code),
		ExpiresAt: now.Add(s.ttl),
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code_hash", "expires_at", "created_at", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("otp service: store code: %w", err)
	}
	metrics.OTPEvents.WithLabelValues(otpEventIssued).Inc()

	minutes := int(s.ttl.Round(time.Minute) / time.Minute)
	message := mail.Message{
		To:      []string{email},
		Subject: otpEmailSubject,
		Text:    fmt.Sprintf("Your OTP for email verification is %s. It is valid for %d minutes.", code, minutes),
		HTML:    otpHTML(code, minutes),
	}

	if err := s.mailer.Send(ctx, message); err != nil {
		if errors.Is(err, mail.ErrDisabled) {
			s.log.Warn("email delivery disabled; verification code not sent", zap.String("user_id", userID))
			return nil
		}
		return apperrors.Dependency(fmt.Errorf("otp service: send code: %w", err))
	}
	return nil
}

// VerifyCode redeems code for the user registered under email. On success the
// user is marked verified and all of their codes are removed in one transaction.
func (s *OTPService) VerifyCode(ctx context.Context, email, code string) (*models.User, error) {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	code = strings.TrimSpace(code)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("otp service: load user: %w", err)
	}
	if code == "" {
		metrics.OTPEvents.WithLabelValues(otpEventRejected).Inc()
		return nil, ErrInvalidOrExpiredCode
	}

	now := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pending models.OneTimeCode
		err := tx.Where("user_id = ?", user.ID).First(&pending).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.OTPEvents.WithLabelValues(otpEventRejected).Inc()
			return ErrInvalidOrExpiredCode
		}
		if err != nil {
			return fmt.Errorf("otp service: load code: %w", err)
		}
		if !crypto.EqualHash(pending.CodeHash, crypto.HashToken(code)) {
			metrics.OTPEvents.WithLabelValues(otpEventRejected).Inc()
			return ErrInvalidOrExpiredCode
		}
		if pending.Expired(now) {
			metrics.OTPEvents.WithLabelValues(otpEventExpired).Inc()
			return ErrInvalidOrExpiredCode
		}

		// Consume by hash so a concurrent redemption of the same code loses.
		consumed := tx.Where("user_id = ? AND code_hash = ?", user.ID, pending.CodeHash).Delete(&models.OneTimeCode{})
		if consumed.Error != nil {
			return fmt.Errorf("otp service: consume code: %w", consumed.Error)
		}
		if consumed.RowsAffected == 0 {
			return ErrInvalidOrExpiredCode
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.OneTimeCode{}).Error; err != nil {
			return fmt.Errorf("otp service: clear codes: %w", err)
		}
		if err := tx.Model(&user).Update("verified", true).Error; err != nil {
			return fmt.Errorf("otp service: mark verified: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	user.Verified = true
	metrics.OTPEvents.WithLabelValues(otpEventVerified).Inc()
	return &user, nil
}

// ResendCode issues a new code for the user registered under email.
func (s *OTPService) ResendCode(ctx context.Context, email string) error {
	ctx = ensureContext(ctx)

	email = normaliseEmail(email)
	if !accountEmailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("otp service: load user: %w", err)
	}

	return s.IssueCode(ctx, user.ID, user.Email)
}

// PurgeExpired removes codes whose deadline passed before now.
func (s *OTPService) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ensureContext(ctx)).
		Where("expires_at < ?", now).
		Delete(&models.OneTimeCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("otp service: purge expired: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func otpHTML(code string, minutes int) string {
	return fmt.Sprintf(`<div style="font-family:Arial,sans-serif;max-width:480px;margin:0 auto">
<h2>Verify your email</h2>
<p>Use the code below to finish signing up.</p>
<p style="font-size:28px;font-weight:bold;letter-spacing:6px">%s</p>
<p>The code is valid for %d minutes. If you did not request it, you can ignore this email.</p>
</div>`, html.EscapeString(code), minutes)
}
