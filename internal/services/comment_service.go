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

// ErrCommentNotFound indicates the requested comment does not exist.
var ErrCommentNotFound = apperrors.New("COMMENT_NOT_FOUND", "Comment not found", http.StatusNotFound)

// CommentView is a comment together with its author's name.
type CommentView struct {
	models.Comment
	Writer string `json:"writer"`
}

// CommentService manages comments on posts and their moderation.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService constructs a CommentService.
func NewCommentService(db *gorm.DB) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	return &CommentService{db: db}, nil
}

// Create adds a pending comment by userID to an existing post.
func (s *CommentService) Create(ctx context.Context, userID, blogID, content string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewBadRequest("Comment content is required")
	}
	if _, err := findByID[models.Blog](ctx, s.db, blogID, ErrBlogNotFound); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: content,
		BlogID:  strings.TrimSpace(blogID),
		UserID:  userID,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create: %w", err)
	}
	return comment, nil
}

// ListApproved returns the approved comments of a post, oldest first.
func (s *CommentService) ListApproved(ctx context.Context, blogID string) ([]CommentView, error) {
	return s.list(ctx, s.db.Where("blog_id = ? AND approved = ?", strings.TrimSpace(blogID), true), "created_at ASC")
}

// ListPending returns comments awaiting moderation, oldest first.
func (s *CommentService) ListPending(ctx context.Context) ([]CommentView, error) {
	return s.list(ctx, s.db.Where("approved = ?", false), "created_at ASC")
}

// Approve publishes a comment.
func (s *CommentService) Approve(ctx context.Context, adminID, id string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	comment, err := findByID[models.Comment](ctx, s.db, id, ErrCommentNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(comment).Updates(map[string]any{
		"approved":    true,
		"approved_by": adminID,
	}).Error; err != nil {
		return nil, fmt.Errorf("comment service: approve: %w", err)
	}
	return findByID[models.Comment](ctx, s.db, comment.ID, ErrCommentNotFound)
}

// Delete removes a comment written by userID.
func (s *CommentService) Delete(ctx context.Context, userID, id string) error {
	ctx = ensureContext(ctx)

	comment, err := findByID[models.Comment](ctx, s.db, id, ErrCommentNotFound)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return apperrors.ErrForbidden
	}
	return s.delete(ctx, comment.ID)
}

// AdminDelete removes any comment.
func (s *CommentService) AdminDelete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	comment, err := findByID[models.Comment](ctx, s.db, id, ErrCommentNotFound)
	if err != nil {
		return err
	}
	return s.delete(ctx, comment.ID)
}

func (s *CommentService) delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("comment service: delete: %w", err)
	}
	return nil
}

func (s *CommentService) list(ctx context.Context, query *gorm.DB, order string) ([]CommentView, error) {
	var comments []models.Comment
	if err := query.WithContext(ensureContext(ctx)).
		Preload("User").
		Order(order).
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("comment service: list: %w", err)
	}

	views := make([]CommentView, 0, len(comments))
	for _, comment := range comments {
		view := CommentView{Comment: comment}
		if comment.User != nil {
			view.Writer = comment.User.Name
		}
		views = append(views, view)
	}
	return views, nil
}
