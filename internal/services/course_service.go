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

const (
	courseCoverKind = "courses"
	coursesTable    = "courses"
)

// ErrCourseNotFound indicates the requested course does not exist.
var ErrCourseNotFound = apperrors.New("COURSE_NOT_FOUND", "Course not found", http.StatusNotFound)

// CourseInput carries course fields. On update, empty strings and nil lists
// keep their stored value.
type CourseInput struct {
	Title       string
	Heading     string
	Description string
	Tools       []string
	Modules     []models.CourseModule
}

// CourseService manages the ordered course catalogue.
type CourseService struct {
	db       *gorm.DB
	ordering *OrderingService
	assets   *AssetService
}

// NewCourseService constructs a CourseService.
func NewCourseService(db *gorm.DB, ordering *OrderingService, assets *AssetService) (*CourseService, error) {
	if db == nil {
		return nil, errors.New("course service: db is required")
	}
	if ordering == nil {
		return nil, errors.New("course service: ordering service is required")
	}
	if assets == nil {
		return nil, errors.New("course service: asset service is required")
	}
	return &CourseService{db: db, ordering: ordering, assets: assets}, nil
}

// Create appends a course to the top of the catalogue.
func (s *CourseService) Create(ctx context.Context, adminID string, input CourseInput, cover *Upload) (*models.Course, error) {
	ctx = ensureContext(ctx)

	modules, err := normaliseModules(input.Modules)
	if err != nil {
		return nil, err
	}
	course := &models.Course{
		Title:       strings.TrimSpace(input.Title),
		Heading:     strings.TrimSpace(input.Heading),
		Description: strings.TrimSpace(input.Description),
		Tools:       trimStrings(input.Tools),
		Modules:     modules,
		AdminID:     adminID,
	}
	if course.Title == "" {
		return nil, apperrors.NewBadRequest("Course title is required")
	}

	if cover != nil {
		url, err := s.assets.Save(ctx, courseCoverKind, *cover)
		if err != nil {
			return nil, err
		}
		course.CoverImage = url
	}

	if err := s.ordering.Create(ctx, coursesTable, course); err != nil {
		s.assets.Remove(ctx, course.CoverImage)
		return nil, fmt.Errorf("course service: create: %w", err)
	}
	return course, nil
}

// List returns every course, highest order first.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.WithContext(ensureContext(ctx)).Order(orderColumn + " DESC").Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("course service: list: %w", err)
	}
	return courses, nil
}

// Update edits a course. A new cover replaces the stored one; the position is
// left untouched.
func (s *CourseService) Update(ctx context.Context, id string, input CourseInput, cover *Upload) (*models.Course, error) {
	ctx = ensureContext(ctx)

	course, err := findByID[models.Course](ctx, s.db, id, ErrCourseNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setIfPresent(updates, "title", input.Title)
	setIfPresent(updates, "heading", input.Heading)
	setIfPresent(updates, "description", input.Description)
	if input.Tools != nil {
		updates["tools"] = datatypes.JSONSlice[string](trimStrings(input.Tools))
	}
	if input.Modules != nil {
		modules, err := normaliseModules(input.Modules)
		if err != nil {
			return nil, err
		}
		updates["modules"] = modules
	}

	err = replaceImage(ctx, s.assets, courseCoverKind, cover, course.CoverImage, func(url string) error {
		if url != "" {
			updates["cover_image"] = url
		}
		if len(updates) == 0 {
			return nil
		}
		return s.db.WithContext(ctx).Model(course).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("course service: update: %w", err)
	}
	return findByID[models.Course](ctx, s.db, course.ID, ErrCourseNotFound)
}

// Delete removes a course and its cover image.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	course, err := findByID[models.Course](ctx, s.db, id, ErrCourseNotFound)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Course{}, "id = ?", course.ID).Error; err != nil {
		return fmt.Errorf("course service: delete: %w", err)
	}
	s.assets.Remove(ctx, course.CoverImage)
	return nil
}

// Reorder applies a drag-and-drop ordering; ids[0] becomes the first listed.
func (s *CourseService) Reorder(ctx context.Context, ids []string) error {
	return s.ordering.Reorder(ctx, coursesTable, ids)
}

func normaliseModules(modules []models.CourseModule) (datatypes.JSONSlice[models.CourseModule], error) {
	out := make(datatypes.JSONSlice[models.CourseModule], 0, len(modules))
	for _, module := range modules {
		module.Title = strings.TrimSpace(module.Title)
		if module.Title == "" {
			return nil, apperrors.NewBadRequest("Every module needs a title")
		}
		if module.DurationHours < 0 {
			return nil, apperrors.NewBadRequest("Module duration cannot be negative")
		}
		module.Topics = trimStrings(module.Topics)
		out = append(out, module)
	}
	return out, nil
}
