package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

func TestConsultCreateSendsAcknowledgement(t *testing.T) {
	db := openServiceTestDB(t)
	mailer := &recordingMailer{}
	svc, err := NewLeadService(db, mailer)
	require.NoError(t, err)
	ctx := context.Background()

	consult, err := svc.CreateConsult(ctx, ConsultInput{
		Name:     "Lee",
		Email:    "lee@example.com",
		Phone:    "+14155550123",
		Interest: "Cloud migration",
		Message:  "Let's talk",
	})
	require.NoError(t, err)
	require.NotEmpty(t, consult.ID)

	sent := mailer.sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"lee@example.com"}, sent[0].To)
	require.Contains(t, sent[0].Text, "Cloud migration")

	consults, err := svc.ListConsults(ctx)
	require.NoError(t, err)
	require.Len(t, consults, 1)

	require.NoError(t, svc.DeleteConsult(ctx, consult.ID))
	require.ErrorIs(t, svc.DeleteConsult(ctx, consult.ID), ErrConsultNotFound)
}

func TestConsultValidation(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewLeadService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	valid := ConsultInput{Name: "Lee", Email: "lee@example.com", Interest: "x", Message: "y"}

	missing := valid
	missing.Interest = ""
	_, err = svc.CreateConsult(ctx, missing)
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	badEmail := valid
	badEmail.Email = "lee@example"
	_, err = svc.CreateConsult(ctx, badEmail)
	require.ErrorIs(t, err, ErrInvalidEmail)

	badPhone := valid
	badPhone.Phone = "0123"
	_, err = svc.CreateConsult(ctx, badPhone)
	require.ErrorIs(t, err, ErrInvalidPhone)
}

func TestConsultSurvivesMailerFailure(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewLeadService(db, &recordingMailer{err: errors.New("smtp down")})
	require.NoError(t, err)

	_, err = svc.CreateConsult(context.Background(), ConsultInput{Name: "Lee", Email: "lee@example.com", Interest: "x", Message: "y"})
	require.NoError(t, err)
}

func TestContactLifecycle(t *testing.T) {
	db := openServiceTestDB(t)
	svc, err := NewLeadService(db, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.CreateContact(ctx, ContactInput{Name: "Kim", Email: "kim@example.com"})
	require.ErrorIs(t, err, apperrors.ErrBadRequest)

	contact, err := svc.CreateContact(ctx, ContactInput{Name: "Kim", Email: "Kim@Example.com", Subject: "Hi", Message: "Hello"})
	require.NoError(t, err)
	require.Equal(t, "kim@example.com", contact.Email)

	contacts, err := svc.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)

	require.NoError(t, svc.DeleteContact(ctx, contact.ID))
	require.ErrorIs(t, svc.DeleteContact(ctx, "missing"), ErrContactNotFound)
}
