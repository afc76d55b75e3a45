package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const orderColumn = "display_order"

// defaultOrderAttempts bounds retries when two inserts race for the same position.
const defaultOrderAttempts = 3

// Orderable is a record positioned by the drag-and-drop ordering.
type Orderable interface {
	SetOrder(order int)
}

// OrderingService assigns and rewrites display positions of ordered collections.
// Larger orders are listed first.
type OrderingService struct {
	db       *gorm.DB
	attempts int
	now      func() time.Time
}

// NewOrderingService constructs an OrderingService.
func NewOrderingService(db *gorm.DB) (*OrderingService, error) {
	if db == nil {
		return nil, errors.New("ordering service: db is required")
	}
	return &OrderingService{db: db, attempts: defaultOrderAttempts, now: time.Now}, nil
}

// Create inserts record into table with order = max(order)+1. The position is
// computed inside the insert transaction; a unique collision with a concurrent
// insert is retried.
func (s *OrderingService) Create(ctx context.Context, table string, record Orderable) error {
	ctx = ensureContext(ctx)

	var err error
	for attempt := 0; attempt < s.attempts; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current int64
			if err := tx.Table(table).Select("COALESCE(MAX(" + orderColumn + "), 0)").Scan(&current).Error; err != nil {
				return fmt.Errorf("read max order: %w", err)
			}
			record.SetOrder(int(current) + 1)
			return tx.Create(record).Error
		})
		if err == nil || !isUniqueConstraintError(err) {
			return err
		}
	}
	return err
}

// Reorder rewrites the positions of every record in table so that ids[0] is
// listed first. ids must be a permutation of all ids in table.
func (s *OrderingService) Reorder(ctx context.Context, table string, ids []string) error {
	ctx = ensureContext(ctx)

	if len(ids) == 0 {
		return ErrInvalidOrder.WithMessage("Ordered ids are required")
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			return ErrInvalidOrder.WithMessage("Ordered ids must not be empty")
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidOrder.WithMessage("Ordered ids must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total, matched int64
		if err := tx.Table(table).Count(&total).Error; err != nil {
			return fmt.Errorf("ordering service: count %s: %w", table, err)
		}
		if err := tx.Table(table).Where("id IN ?", ids).Count(&matched).Error; err != nil {
			return fmt.Errorf("ordering service: match %s: %w", table, err)
		}
		if total != int64(len(ids)) || matched != total {
			return ErrInvalidOrder
		}

		// Park every row on a negative position first so the unique index
		// never sees two rows sharing a value mid-update.
		if err := tx.Table(table).
			Where(orderColumn+" > ?", 0).
			Update(orderColumn, gorm.Expr("-"+orderColumn)).Error; err != nil {
			return fmt.Errorf("ordering service: park %s: %w", table, err)
		}

		now := s.now()
		for index, id := range ids {
			if err := tx.Table(table).
				Where("id = ?", strings.TrimSpace(id)).
				Updates(map[string]any{orderColumn: len(ids) - index, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("ordering service: position %s: %w", id, err)
			}
		}
		return nil
	})
}
