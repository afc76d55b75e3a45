package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/models"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

const galleryImageKind = "gallery"

// ErrGalleryImageNotFound indicates the requested gallery image does not exist.
var ErrGalleryImageNotFound = apperrors.New("IMAGE_NOT_FOUND", "Image not found", http.StatusNotFound)

// GalleryItem is one image of a batch upload with its caption.
type GalleryItem struct {
	Upload      Upload
	Title       string
	Description string
	Date        *time.Time
}

// GalleryUpdate carries caption changes. Empty strings and a nil date keep
// their stored value.
type GalleryUpdate struct {
	Title       string
	Description string
	Date        *time.Time
}

// GalleryService manages the public photo gallery.
type GalleryService struct {
	db     *gorm.DB
	assets *AssetService
	now    func() time.Time
}

// NewGalleryService constructs a GalleryService.
func NewGalleryService(db *gorm.DB, assets *AssetService) (*GalleryService, error) {
	if db == nil {
		return nil, errors.New("gallery service: db is required")
	}
	if assets == nil {
		return nil, errors.New("gallery service: asset service is required")
	}
	return &GalleryService{db: db, assets: assets, now: time.Now}, nil
}

// CreateBatch uploads and stores a batch of images. Either every image is
// stored or none is.
func (s *GalleryService) CreateBatch(ctx context.Context, adminID string, items []GalleryItem) ([]models.GalleryImage, error) {
	ctx = ensureContext(ctx)

	if len(items) == 0 {
		return nil, apperrors.NewBadRequest("At least one image is required")
	}

	uploads := make([]Upload, 0, len(items))
	for _, item := range items {
		uploads = append(uploads, item.Upload)
	}
	urls, err := s.assets.SaveAll(ctx, galleryImageKind, uploads)
	if err != nil {
		return nil, err
	}

	now := s.now()
	images := make([]models.GalleryImage, 0, len(items))
	for i, item := range items {
		date := now
		if item.Date != nil && !item.Date.IsZero() {
			date = *item.Date
		}
		images = append(images, models.GalleryImage{
			Image:       urls[i],
			Title:       strings.TrimSpace(item.Title),
			Description: strings.TrimSpace(item.Description),
			Date:        date,
			AdminID:     adminID,
		})
	}

	if err := s.db.WithContext(ctx).Create(&images).Error; err != nil {
		s.assets.Remove(ctx, urls...)
		return nil, fmt.Errorf("gallery service: create: %w", err)
	}
	return images, nil
}

// List returns the gallery, most recent date first.
func (s *GalleryService) List(ctx context.Context) ([]models.GalleryImage, error) {
	var images []models.GalleryImage
	if err := s.db.WithContext(ensureContext(ctx)).Order("date DESC").Order("created_at DESC").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("gallery service: list: %w", err)
	}
	return images, nil
}

// Update edits the caption of an image and optionally replaces the file.
func (s *GalleryService) Update(ctx context.Context, id string, input GalleryUpdate, image *Upload) (*models.GalleryImage, error) {
	ctx = ensureContext(ctx)

	record, err := findByID[models.GalleryImage](ctx, s.db, id, ErrGalleryImageNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setIfPresent(updates, "title", input.Title)
	setIfPresent(updates, "description", input.Description)
	if input.Date != nil && !input.Date.IsZero() {
		updates["date"] = *input.Date
	}

	err = replaceImage(ctx, s.assets, galleryImageKind, image, record.Image, func(url string) error {
		if url != "" {
			updates["image"] = url
		}
		if len(updates) == 0 {
			return nil
		}
		return s.db.WithContext(ctx).Model(record).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("gallery service: update: %w", err)
	}
	return findByID[models.GalleryImage](ctx, s.db, record.ID, ErrGalleryImageNotFound)
}

// Delete removes an image from the gallery and from storage.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	record, err := findByID[models.GalleryImage](ctx, s.db, id, ErrGalleryImageNotFound)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.GalleryImage{}, "id = ?", record.ID).Error; err != nil {
		return fmt.Errorf("gallery service: delete: %w", err)
	}
	s.assets.Remove(ctx, record.Image)
	return nil
}
