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

const teamPhotoKind = "team"

// ErrTeamMemberNotFound indicates the requested team member does not exist.
var ErrTeamMemberNotFound = apperrors.New("TEAM_MEMBER_NOT_FOUND", "Team member not found", http.StatusNotFound)

// TeamMemberInput carries team member fields. On update, empty fields keep
// their stored value.
type TeamMemberInput struct {
	Name     string
	Role     string
	Bio      string
	LinkedIn string
}

// TeamMemberService manages the people shown on the about page.
type TeamMemberService struct {
	db     *gorm.DB
	assets *AssetService
}

// NewTeamMemberService constructs a TeamMemberService.
func NewTeamMemberService(db *gorm.DB, assets *AssetService) (*TeamMemberService, error) {
	if db == nil {
		return nil, errors.New("team member service: db is required")
	}
	if assets == nil {
		return nil, errors.New("team member service: asset service is required")
	}
	return &TeamMemberService{db: db, assets: assets}, nil
}

// Create stores a team member with an optional photo.
func (s *TeamMemberService) Create(ctx context.Context, input TeamMemberInput, photo *Upload) (*models.TeamMember, error) {
	ctx = ensureContext(ctx)

	member := &models.TeamMember{
		Name:     strings.TrimSpace(input.Name),
		Role:     strings.TrimSpace(input.Role),
		Bio:      strings.TrimSpace(input.Bio),
		LinkedIn: strings.TrimSpace(input.LinkedIn),
	}
	if member.Name == "" {
		return nil, apperrors.NewBadRequest("Name is required")
	}

	if photo != nil {
		url, err := s.assets.Save(ctx, teamPhotoKind, *photo)
		if err != nil {
			return nil, err
		}
		member.Photo = url
	}

	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		s.assets.Remove(ctx, member.Photo)
		return nil, fmt.Errorf("team member service: create: %w", err)
	}
	return member, nil
}

// List returns the team in insertion order.
func (s *TeamMemberService) List(ctx context.Context) ([]models.TeamMember, error) {
	var members []models.TeamMember
	if err := s.db.WithContext(ensureContext(ctx)).Order("created_at ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("team member service: list: %w", err)
	}
	return members, nil
}

// Update edits a team member. A new photo replaces the stored one.
func (s *TeamMemberService) Update(ctx context.Context, id string, input TeamMemberInput, photo *Upload) (*models.TeamMember, error) {
	ctx = ensureContext(ctx)

	member, err := findByID[models.TeamMember](ctx, s.db, id, ErrTeamMemberNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setIfPresent(updates, "name", input.Name)
	setIfPresent(updates, "role", input.Role)
	setIfPresent(updates, "bio", input.Bio)
	setIfPresent(updates, "linkedin", input.LinkedIn)

	err = replaceImage(ctx, s.assets, teamPhotoKind, photo, member.Photo, func(url string) error {
		if url != "" {
			updates["photo"] = url
		}
		if len(updates) == 0 {
			return nil
		}
		return s.db.WithContext(ctx).Model(member).Updates(updates).Error
	})
	if err != nil {
		return nil, fmt.Errorf("team member service: update: %w", err)
	}
	return findByID[models.TeamMember](ctx, s.db, member.ID, ErrTeamMemberNotFound)
}

// Delete removes a team member and their photo.
func (s *TeamMemberService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	member, err := findByID[models.TeamMember](ctx, s.db, id, ErrTeamMemberNotFound)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.TeamMember{}, "id = ?", member.ID).Error; err != nil {
		return fmt.Errorf("team member service: delete: %w", err)
	}
	s.assets.Remove(ctx, member.Photo)
	return nil
}
