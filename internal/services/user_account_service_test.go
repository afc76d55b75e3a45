package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitecms/sitecms/internal/models"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

func newAccountServices(t *testing.T, mailer *recordingMailer, codes ...string) (*UserAccountService, *OTPService) {
	t.Helper()
	db := openServiceTestDB(t)
	if len(codes) == 0 {
		codes = []string{"424242"}
	}
	otp, err := NewOTPService(db, mailer, WithOTPGenerator(sequenceGenerator(codes...)))
	require.NoError(t, err)
	accounts, err := NewUserAccountService(db, otp)
	require.NoError(t, err)
	return accounts, otp
}

func TestRegisterVerifyLoginFlow(t *testing.T) {
	mailer := &recordingMailer{}
	accounts, otp := newAccountServices(t, mailer, "424242")
	ctx := context.Background()

	user, err := accounts.Register(ctx, RegisterInput{Name: "Ada", Email: "Ada@Example.com", Password: "Str0ngPass"})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", user.Email)
	require.False(t, user.Verified)
	require.Len(t, mailer.sent(), 1)

	_, err = accounts.Login(ctx, "ada@example.com", "Str0ngPass")
	require.ErrorIs(t, err, apperrors.ErrVerificationRequired)
	require.Len(t, mailer.sent(), 2)

	_, err = otp.VerifyCode(ctx, "ada@example.com", "000000")
	require.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	reloaded, err := accounts.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, reloaded.Verified)

	verified, err := otp.VerifyCode(ctx, "ada@example.com", "424242")
	require.NoError(t, err)
	require.True(t, verified.Verified)

	_, err = accounts.Login(ctx, "ada@example.com", "wrong-Pass1")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	loggedIn, err := accounts.Login(ctx, "ADA@example.com", "Str0ngPass")
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
}

func TestRegisterValidation(t *testing.T) {
	accounts, _ := newAccountServices(t, &recordingMailer{})
	ctx := context.Background()

	_, err := accounts.Register(ctx, RegisterInput{Email: "a@b.co", Password: "Str0ngPass"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = accounts.Register(ctx, RegisterInput{Name: "A", Email: "not an email", Password: "Str0ngPass"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = accounts.Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "weakpass"})
	require.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	accounts, _ := newAccountServices(t, &recordingMailer{})
	ctx := context.Background()

	_, err := accounts.Register(ctx, RegisterInput{Name: "A", Email: "dup@example.com", Password: "Str0ngPass"})
	require.NoError(t, err)

	_, err = accounts.Register(ctx, RegisterInput{Name: "B", Email: "DUP@example.com", Password: "Str0ngPass"})
	require.ErrorIs(t, err, ErrEmailTaken)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, 409, appErr.StatusCode)
}

func TestRegisterRollsBackWhenMailFails(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	accounts, _ := newAccountServices(t, mailer)
	ctx := context.Background()

	_, err := accounts.Register(ctx, RegisterInput{Name: "A", Email: "rollback@example.com", Password: "Str0ngPass"})
	require.ErrorIs(t, err, apperrors.ErrDependencyFailure)

	var users, codes int64
	require.NoError(t, accounts.db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, accounts.db.Model(&models.OneTimeCode{}).Count(&codes).Error)
	require.Zero(t, users)
	require.Zero(t, codes)

	mailer.err = nil
	_, err = accounts.Register(ctx, RegisterInput{Name: "A", Email: "rollback@example.com", Password: "Str0ngPass"})
	require.NoError(t, err)
}

func TestLoginUnknownUser(t *testing.T) {
	accounts, _ := newAccountServices(t, &recordingMailer{})
	_, err := accounts.Login(context.Background(), "ghost@example.com", "Str0ngPass")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAdminAccountService(t *testing.T) {
	db := openServiceTestDB(t)
	admins, err := NewAdminAccountService(db)
	require.NoError(t, err)
	ctx := context.Background()

	admin, err := admins.Register(ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "Adm1nPass"})
	require.NoError(t, err)

	_, err = admins.Register(ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "Adm1nPass"})
	require.ErrorIs(t, err, ErrEmailTaken)

	_, err = admins.Login(ctx, "root@example.com", "nope")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	_, err = admins.Login(ctx, "nobody@example.com", "Adm1nPass")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	loggedIn, err := admins.Login(ctx, "root@example.com", "Adm1nPass")
	require.NoError(t, err)
	require.Equal(t, admin.ID, loggedIn.ID)

	_, err = admins.GetByID(ctx, "missing")
	require.ErrorIs(t, err, ErrAdminNotFound)

	// Users and admins never share a table.
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.Zero(t, users)
}
