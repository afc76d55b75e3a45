package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/models"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/mail"
	"github.com/sitecms/sitecms/pkg/validator"
)

const consultAckSubject = "We received your consultation request"

var (
	// ErrConsultNotFound indicates the requested consultation does not exist.
	ErrConsultNotFound = apperrors.New("CONSULT_NOT_FOUND", "Consultation not found", http.StatusNotFound)
	// ErrContactNotFound indicates the requested contact message does not exist.
	ErrContactNotFound = apperrors.New("CONTACT_NOT_FOUND", "Contact message not found", http.StatusNotFound)
	// ErrInvalidPhone is returned for phone numbers outside E.164.
	ErrInvalidPhone = apperrors.New("validation.phone", "Invalid phone number", http.StatusBadRequest)
)

// ConsultInput is a consultation request from the public site.
type ConsultInput struct {
	Name     string
	Email    string
	Company  string
	Phone    string
	Interest string
	Message  string
}

// ContactInput is a contact form submission.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// LeadService stores consultation requests and contact messages.
type LeadService struct {
	db     *gorm.DB
	mailer mail.Mailer
	log    *zap.Logger
}

// NewLeadService constructs a LeadService. mailer may be nil, in which case
// no acknowledgements are sent.
func NewLeadService(db *gorm.DB, mailer mail.Mailer) (*LeadService, error) {
	if db == nil {
		return nil, errors.New("lead service: db is required")
	}
	return &LeadService{db: db, mailer: mailer, log: logger.WithModule("leads")}, nil
}

// CreateConsult stores a consultation request and acknowledges it by email.
// The acknowledgement is best effort.
func (s *LeadService) CreateConsult(ctx context.Context, input ConsultInput) (*models.Consult, error) {
	ctx = ensureContext(ctx)

	consult := &models.Consult{
		Name:     strings.TrimSpace(input.Name),
		Email:    normaliseEmail(input.Email),
		Company:  strings.TrimSpace(input.Company),
		Phone:    strings.TrimSpace(input.Phone),
		Interest: strings.TrimSpace(input.Interest),
		Message:  strings.TrimSpace(input.Message),
	}
	if consult.Name == "" || consult.Email == "" || consult.Interest == "" || consult.Message == "" {
		return nil, apperrors.NewBadRequest("Name, email, interest and message are required")
	}
	if err := validateLeadContact(consult.Email, consult.Phone); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(consult).Error; err != nil {
		return nil, fmt.Errorf("lead service: create consult: %w", err)
	}

	s.acknowledge(ctx, consult)
	return consult, nil
}

// ListConsults returns consultation requests, newest first.
func (s *LeadService) ListConsults(ctx context.Context) ([]models.Consult, error) {
	var consults []models.Consult
	if err := s.db.WithContext(ensureContext(ctx)).Order("created_at DESC").Find(&consults).Error; err != nil {
		return nil, fmt.Errorf("lead service: list consults: %w", err)
	}
	return consults, nil
}

// DeleteConsult removes a consultation request.
func (s *LeadService) DeleteConsult(ctx context.Context, id string) error {
	return deleteLead[models.Consult](ensureContext(ctx), s.db, id, ErrConsultNotFound)
}

// CreateContact stores a contact form submission.
func (s *LeadService) CreateContact(ctx context.Context, input ContactInput) (*models.Contact, error) {
	ctx = ensureContext(ctx)

	contact := &models.Contact{
		Name:    strings.TrimSpace(input.Name),
		Email:   normaliseEmail(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Subject: strings.TrimSpace(input.Subject),
		Message: strings.TrimSpace(input.Message),
	}
	if contact.Name == "" || contact.Email == "" || contact.Message == "" {
		return nil, apperrors.NewBadRequest("Name, email and message are required")
	}
	if err := validateLeadContact(contact.Email, contact.Phone); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(contact).Error; err != nil {
		return nil, fmt.Errorf("lead service: create contact: %w", err)
	}
	return contact, nil
}

// ListContacts returns contact messages, newest first.
func (s *LeadService) ListContacts(ctx context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	if err := s.db.WithContext(ensureContext(ctx)).Order("created_at DESC").Find(&contacts).Error; err != nil {
		return nil, fmt.Errorf("lead service: list contacts: %w", err)
	}
	return contacts, nil
}

// DeleteContact removes a contact message.
func (s *LeadService) DeleteContact(ctx context.Context, id string) error {
	return deleteLead[models.Contact](ensureContext(ctx), s.db, id, ErrContactNotFound)
}

func (s *LeadService) acknowledge(ctx context.Context, consult *models.Consult) {
	if s.mailer == nil {
		return
	}

	name := html.EscapeString(consult.Name)
	interest := html.EscapeString(consult.Interest)
	message := mail.Message{
		To:      []string{consult.Email},
		Subject: consultAckSubject,
		Text: fmt.Sprintf("Hi %s,\n\nThank you for your interest in %s. Our team will get back to you shortly.\n",
			consult.Name, consult.Interest),
		HTML: fmt.Sprintf("<p>Hi %s,</p><p>Thank you for your interest in <strong>%s</strong>. Our team will get back to you shortly.</p>",
			name, interest),
	}

	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrDisabled) {
		s.log.Warn("consult acknowledgement failed", zap.String("consult_id", consult.ID), zap.Error(err))
	}
}

func validateLeadContact(email, phone string) error {
	if !leadEmailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if phone != "" && !validator.IsPhone(phone) {
		return ErrInvalidPhone
	}
	return nil
}

func deleteLead[T any](ctx context.Context, db *gorm.DB, id string, notFound *apperrors.AppError) error {
	record, err := findByID[T](ctx, db, id, notFound)
	if err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(record).Error; err != nil {
		return fmt.Errorf("lead service: delete: %w", err)
	}
	return nil
}
