package services

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

var (
	// ErrUserNotFound indicates no user matches the lookup.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrAdminNotFound indicates no admin matches the lookup.
	ErrAdminNotFound = apperrors.New("ADMIN_NOT_FOUND", "Admin not found", http.StatusNotFound)
	// ErrEmailTaken signals an account already exists for the email.
	ErrEmailTaken = apperrors.New("USER_EXISTS", "User already exists", http.StatusConflict)
	// ErrInvalidEmail is returned for malformed email addresses.
	ErrInvalidEmail = apperrors.New("validation.email", "Invalid email format", http.StatusBadRequest)
	// ErrInvalidOrExpiredCode covers unknown, mismatched and expired one-time codes.
	ErrInvalidOrExpiredCode = apperrors.New("otp.invalid_or_expired", "Invalid or expired OTP", http.StatusBadRequest)
	// ErrWeakPassword rejects passwords outside the password policy.
	ErrWeakPassword = apperrors.New("validation.password", "Password must be at least 8 characters and contain uppercase, lowercase and a number", http.StatusBadRequest)
	// ErrInvalidOrder rejects malformed reorder requests.
	ErrInvalidOrder = apperrors.New("validation.order", "Ordered ids must list every record exactly once", http.StatusBadRequest)
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate")
}
