package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/models"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

var (
	// ErrOfferingNotFound indicates the requested service does not exist.
	ErrOfferingNotFound = apperrors.New("SERVICE_NOT_FOUND", "Service not found", http.StatusNotFound)
	// ErrOfferingExists signals a service with the same name is already listed.
	ErrOfferingExists = apperrors.New("SERVICE_EXISTS", "Service already exists", http.StatusConflict)
)

// OfferingInput carries the fields of a sellable service. On update, nil
// lists and an empty name keep their stored value.
type OfferingInput struct {
	Name        string
	Description []string
	Process     []string
	Benefits    []string
}

// OfferingService manages the ordered list of services.
type OfferingService struct {
	db       *gorm.DB
	ordering *OrderingService
}

// NewOfferingService constructs an OfferingService.
func NewOfferingService(db *gorm.DB, ordering *OrderingService) (*OfferingService, error) {
	if db == nil {
		return nil, errors.New("offering service: db is required")
	}
	if ordering == nil {
		return nil, errors.New("offering service: ordering service is required")
	}
	return &OfferingService{db: db, ordering: ordering}, nil
}

// Create appends a service to the top of the list.
func (s *OfferingService) Create(ctx context.Context, adminID string, input OfferingInput) (*models.Offering, error) {
	ctx = ensureContext(ctx)

	offering := &models.Offering{
		Name:        strings.TrimSpace(input.Name),
		Description: trimStrings(input.Description),
		Process:     trimStrings(input.Process),
		Benefits:    trimStrings(input.Benefits),
		AdminID:     adminID,
	}
	if offering.Name == "" {
		return nil, apperrors.NewBadRequest("Service name is required")
	}

	if err := s.ordering.Create(ctx, offering.TableName(), offering); err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrOfferingExists
		}
		return nil, fmt.Errorf("offering service: create: %w", err)
	}
	return offering, nil
}

// List returns every service, highest order first.
func (s *OfferingService) List(ctx context.Context) ([]models.Offering, error) {
	var offerings []models.Offering
	if err := s.db.WithContext(ensureContext(ctx)).Order(orderColumn + " DESC").Find(&offerings).Error; err != nil {
		return nil, fmt.Errorf("offering service: list: %w", err)
	}
	return offerings, nil
}

// Update edits a service. Its position is left untouched.
func (s *OfferingService) Update(ctx context.Context, id string, input OfferingInput) (*models.Offering, error) {
	ctx = ensureContext(ctx)

	offering, err := findByID[models.Offering](ctx, s.db, id, ErrOfferingNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setIfPresent(updates, "name", input.Name)
	if input.Description != nil {
		updates["description"] = datatypes.JSONSlice[string](trimStrings(input.Description))
	}
	if input.Process != nil {
		updates["process"] = datatypes.JSONSlice[string](trimStrings(input.Process))
	}
	if input.Benefits != nil {
		updates["benefits"] = datatypes.JSONSlice[string](trimStrings(input.Benefits))
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(offering).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrOfferingExists
			}
			return nil, fmt.Errorf("offering service: update: %w", err)
		}
	}
	return findByID[models.Offering](ctx, s.db, offering.ID, ErrOfferingNotFound)
}

// Delete removes a service. Remaining positions keep their relative order.
func (s *OfferingService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	offering, err := findByID[models.Offering](ctx, s.db, id, ErrOfferingNotFound)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Offering{}, "id = ?", offering.ID).Error; err != nil {
		return fmt.Errorf("offering service: delete: %w", err)
	}
	return nil
}

// Reorder applies a drag-and-drop ordering; ids[0] becomes the first listed.
func (s *OfferingService) Reorder(ctx context.Context, ids []string) error {
	return s.ordering.Reorder(ctx, models.Offering{}.TableName(), ids)
}
