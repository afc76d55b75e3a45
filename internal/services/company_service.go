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

const companyLogoKind = "companies"

var (
	// ErrCompanyNotFound indicates the requested company does not exist.
	ErrCompanyNotFound = apperrors.New("COMPANY_NOT_FOUND", "Company not found", http.StatusNotFound)
	// ErrCompanyExists signals a company with the same name is already listed.
	ErrCompanyExists = apperrors.New("COMPANY_EXISTS", "Company already exists", http.StatusConflict)
)

// CompanyInput carries company fields. On update, empty fields keep their
// stored value.
type CompanyInput struct {
	Name        string
	Description string
}

// CompanyService manages partner and client companies.
type CompanyService struct {
	db     *gorm.DB
	assets *AssetService
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(db *gorm.DB, assets *AssetService) (*CompanyService, error) {
	if db == nil {
		return nil, errors.New("company service: db is required")
	}
	if assets == nil {
		return nil, errors.New("company service: asset service is required")
	}
	return &CompanyService{db: db, assets: assets}, nil
}

// Create stores a company with an optional logo.
func (s *CompanyService) Create(ctx context.Context, input CompanyInput, logo *Upload) (*models.Company, error) {
	ctx = ensureContext(ctx)

	company := &models.Company{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
	}
	if company.Name == "" {
		return nil, apperrors.NewBadRequest("Company name is required")
	}

	if logo != nil {
		url, err := s.assets.Save(ctx, companyLogoKind, *logo)
		if err != nil {
			return nil, err
		}
		company.Logo = url
	}

	if err := s.db.WithContext(ctx).Create(company).Error; err != nil {
		s.assets.Remove(ctx, company.Logo)
		if isUniqueConstraintError(err) {
			return nil, ErrCompanyExists
		}
		return nil, fmt.Errorf("company service: create: %w", err)
	}
	return company, nil
}

// List returns all companies ordered by name.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	if err := s.db.WithContext(ensureContext(ctx)).Order("name ASC").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("company service: list: %w", err)
	}
	return companies, nil
}

// Update edits a company. A new logo replaces the stored one.
func (s *CompanyService) Update(ctx context.Context, id string, input CompanyInput, logo *Upload) (*models.Company, error) {
	ctx = ensureContext(ctx)

	company, err := findByID[models.Company](ctx, s.db, id, ErrCompanyNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setIfPresent(updates, "name", input.Name)
	setIfPresent(updates, "description", input.Description)

	err = replaceImage(ctx, s.assets, companyLogoKind, logo, company.Logo, func(url string) error {
		if url != "" {
			updates["logo"] = url
		}
		if len(updates) == 0 {
			return nil
		}
		return s.db.WithContext(ctx).Model(company).Updates(updates).Error
	})
	if isUniqueConstraintError(err) {
		return nil, ErrCompanyExists
	}
	if err != nil {
		return nil, fmt.Errorf("company service: update: %w", err)
	}
	return findByID[models.Company](ctx, s.db, company.ID, ErrCompanyNotFound)
}

// Delete removes a company and its logo.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	company, err := findByID[models.Company](ctx, s.db, id, ErrCompanyNotFound)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Company{}, "id = ?", company.ID).Error; err != nil {
		return fmt.Errorf("company service: delete: %w", err)
	}
	s.assets.Remove(ctx, company.Logo)
	return nil
}
