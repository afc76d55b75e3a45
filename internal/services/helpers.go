package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	accountEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	leadEmailPattern    = regexp.MustCompile(`^[\w-]+(\.[\w-]+)*@([\w-]+\.)+[a-zA-Z]{2,7}$`)
)

// PageQuery carries list pagination and sorting parameters.
type PageQuery struct {
	Page     int
	Limit    int
	SortBy   string
	SortType string
}

// Window returns the clamped page number and page size.
func (q PageQuery) Window() (page, limit int) {
	page = q.Page
	if page < 1 {
		page = 1
	}
	limit = q.Limit
	switch {
	case limit < 1:
		limit = defaultPageSize
	case limit > maxPageSize:
		limit = maxPageSize
	}
	return page, limit
}

// normalise clamps paging values and resolves the ORDER BY clause. sortable
// maps public field names to columns; unknown fields fall back to fallback.
func (q PageQuery) normalise(sortable map[string]string, fallback string) (page, limit int, order string) {
	page, limit = q.Window()

	column, ok := sortable[strings.TrimSpace(q.SortBy)]
	if !ok {
		column = fallback
	}
	direction := "DESC"
	if strings.EqualFold(strings.TrimSpace(q.SortType), "asc") {
		direction = "ASC"
	}
	return page, limit, column + " " + direction
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// findByID loads a record by primary key, mapping a missing row to notFound.
func findByID[T any](ctx context.Context, db *gorm.DB, id string, notFound *apperrors.AppError) (*T, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, notFound
	}

	var record T
	err := db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %T: %w", record, err)
	}
	return &record, nil
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
