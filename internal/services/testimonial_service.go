package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/models"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

const testimonialImageKind = "testimonials"

// ErrTestimonialNotFound indicates the requested testimonial does not exist.
var ErrTestimonialNotFound = apperrors.New("TESTIMONIAL_NOT_FOUND", "Testimonial not found", http.StatusNotFound)

// TestimonialInput carries testimonial fields. On update, empty fields keep
// their stored value.
type TestimonialInput struct {
	Name        string
	Designation string
	Content     string
}

// TestimonialService manages customer testimonials.
type TestimonialService struct {
	db     *gorm.DB
	assets *AssetService
}

// NewTestimonialService constructs a TestimonialService.
func NewTestimonialService(db *gorm.DB, assets *AssetService) (*TestimonialService, error) {
	if db == nil {
		return nil, errors.New("testimonial service: db is required")
	}
	if assets == nil {
		return nil, errors.New("testimonial service: asset service is required")
	}
	return &TestimonialService{db: db, assets: assets}, nil
}

// Create stores a testimonial with an optional portrait.
func (s *TestimonialService) Create(ctx context.Context, input TestimonialInput, image *Upload) (*models.Testimonial, error) {
	ctx = ensureContext(ctx)

	testimonial := &models.Testimonial{
		Name:        strings.TrimSpace(input.Name),
		Designation: strings.TrimSpace(input.Designation),
		Content:     strings.TrimSpace(input.Content),
	}
	if testimonial.Name == "" || testimonial.Content == "" {
		return nil, apperrors.NewBadRequest("Name and content are required")
	}

	if image != nil {
		url, err := s.assets.Save(ctx, testimonialImageKind, *image)
		if err != nil {
			return nil, err
		}
		testimonial.Image = url
	}

	if err := s.db.WithContext(ctx).Create(testimonial).Error; err != nil {
		s.assets.Remove(ctx, testimonial.Image)
		return nil, fmt.Errorf("testimonial service: create: %w", err)
	}
	return testimonial, nil
}

// List returns all testimonials, newest first.
func (s *TestimonialService) List(ctx context.Context) ([]models.Testimonial, error) {
	var testimonials []models.Testimonial
	if err := s.db.WithContext(ensureContext(ctx)).Order("created_at DESC").Find(&testimonials).Error; err != nil {
		return nil, fmt.Errorf("testimonial service: list: %w", err)
	}
	return testimonials, nil
}

// Update edits a testimonial. A new image replaces the stored one.
func (s *TestimonialService) Update(ctx context.Context, id string, input TestimonialInput, image *Upload) (*models.Testimonial, error) {
	ctx = ensureContext(ctx)

	testimonial, err := findByID[models.Testimonial](ctx, s.db, id, ErrTestimonialNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setIfPresent(updates, "name", input.Name)
	setIfPresent(updates, "designation", input.Designation)
	setIfPresent(updates, "content", input.Content)

	err = replaceImage(ctx, s.assets, testimonialImageKind, image, testimonial.Image, func(url string) error {
		if url != "" {
			updates["image"] = url
		}
		if len(updates) == 0 {
			return nil
		}
		return s.db.WithContext(ctx).Model(testimonial).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("testimonial service: update: %w", err)
	}
	return findByID[models.Testimonial](ctx, s.db, testimonial.ID, ErrTestimonialNotFound)
}

// Delete removes a testimonial and its image.
func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	testimonial, err := findByID[models.Testimonial](ctx, s.db, id, ErrTestimonialNotFound)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Testimonial{}, "id = ?", testimonial.ID).Error; err != nil {
		return fmt.Errorf("testimonial service: delete: %w", err)
	}
	s.assets.Remove(ctx, testimonial.Image)
	return nil
}

func setIfPresent(updates map[string]any, column, value string) {
	if value = strings.TrimSpace(value); value != "" {
		updates[column] = value
	}
}

// replaceImage uploads image when present and runs persist with its URL
// (empty when no image was given). The previous image is removed after a
// successful persist; the new one is removed when persist fails.
func replaceImage(ctx context.Context, assets *AssetService, kind string, image *Upload, previous string, persist func(url string) error) error {
	if image == nil {
		return persist("")
	}

	url, err := assets.Save(ctx, kind, *image)
	if err != nil {
		return err
	}
	if err := persist(url); err != nil {
		assets.Remove(ctx, url)
		return err
	}
	assets.Remove(ctx, previous)
	return nil
}
