package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sitecms/sitecms/internal/models"
	apperrors "github.com/sitecms/sitecms/pkg/errors"
)

const (
	blogImageKind          = "blogs"
	defaultRejectionReason = "No reason provided"
)

var (
	// ErrBlogNotFound indicates the requested post does not exist or is not visible.
	ErrBlogNotFound = apperrors.New("BLOG_NOT_FOUND", "Blog not found", http.StatusNotFound)
	// ErrTooManyImages rejects posts with more images than allowed.
	ErrTooManyImages = apperrors.New("validation.images", fmt.Sprintf("A blog can have at most %d images", models.MaxBlogImages), http.StatusBadRequest)
)

var blogSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"category":  "category",
}

// BlogInput carries author-supplied post fields.
type BlogInput struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
}

// BlogListOptions controls blog listings.
type BlogListOptions struct {
	PageQuery
	IncludeUnapproved bool
}

// BlogView is a post together with its author's name.
type BlogView struct {
	models.Blog
	Writer string `json:"writer"`
}

// BlogService manages user-authored posts and their moderation.
type BlogService struct {
	db     *gorm.DB
	assets *AssetService
	now    func() time.Time
}

// NewBlogService constructs a BlogService.
func NewBlogService(db *gorm.DB, assets *AssetService) (*BlogService, error) {
	if db == nil {
		return nil, errors.New("blog service: db is required")
	}
	if assets == nil {
		return nil, errors.New("blog service: asset service is required")
	}
	return &BlogService{db: db, assets: assets, now: time.Now}, nil
}

// Create stores a pending post for userID with its uploaded images.
func (s *BlogService) Create(ctx context.Context, userID string, input BlogInput, images []Upload) (*models.Blog, error) {
	ctx = ensureContext(ctx)

	input, err := validateBlogInput(input)
	if err != nil {
		return nil, err
	}
	if len(images) > models.MaxBlogImages {
		return nil, ErrTooManyImages
	}

	urls, err := s.assets.SaveAll(ctx, blogImageKind, images)
	if err != nil {
		return nil, err
	}

	blog := &models.Blog{
		Title:    input.Title,
		Excerpt:  input.Excerpt,
		Content:  input.Content,
		Category: input.Category,
		Images:   urls,
		UserID:   userID,
		Status:   models.BlogPending,
	}
	if err := s.db.WithContext(ctx).Create(blog).Error; err != nil {
		s.assets.Remove(ctx, urls...)
		return nil, fmt.Errorf("blog service: create: %w", err)
	}
	return blog, nil
}

// List returns a page of posts with writer names. Only approved posts are
// included unless opts.IncludeUnapproved is set.
func (s *BlogService) List(ctx context.Context, opts BlogListOptions) ([]BlogView, int64, error) {
	ctx = ensureContext(ctx)

	page, limit, order := opts.normalise(blogSortColumns, "created_at")

	query := s.db.WithContext(ctx).Model(&models.Blog{})
	if !opts.IncludeUnapproved {
		query = query.Where("approved = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("blog service: count: %w", err)
	}

	var blogs []models.Blog
	if err := query.
		Preload("User").
		Order(order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error; err != nil {
		return nil, 0, fmt.Errorf("blog service: list: %w", err)
	}

	return toBlogViews(blogs), total, nil
}

// ListByUser returns every post written by userID, newest first.
func (s *BlogService) ListByUser(ctx context.Context, userID string) ([]models.Blog, error) {
	var blogs []models.Blog
	if err := s.db.WithContext(ensureContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&blogs).Error; err != nil {
		return nil, fmt.Errorf("blog service: list by user: %w", err)
	}
	return blogs, nil
}

// Get returns an approved post, or any post when includeUnapproved is set.
func (s *BlogService) Get(ctx context.Context, id string, includeUnapproved bool) (*BlogView, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Preload("User")
	if !includeUnapproved {
		query = query.Where("approved = ?", true)
	}

	var blog models.Blog
	err := query.First(&blog, "id = ?", strings.TrimSpace(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBlogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blog service: get: %w", err)
	}

	view := toBlogViews([]models.Blog{blog})[0]
	return &view, nil
}

// Update edits a post owned by userID and sends it back to moderation. New
// images replace the existing ones.
func (s *BlogService) Update(ctx context.Context, userID, id string, input BlogInput, images []Upload) (*models.Blog, error) {
	ctx = ensureContext(ctx)

	blog, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	input, err = validateBlogInput(input)
	if err != nil {
		return nil, err
	}
	if len(images) > models.MaxBlogImages {
		return nil, ErrTooManyImages
	}

	previous := append([]string(nil), blog.Images...)
	urls := previous
	if len(images) > 0 {
		if urls, err = s.assets.SaveAll(ctx, blogImageKind, images); err != nil {
			return nil, err
		}
	}

	updates := map[string]any{
		"title":            input.Title,
		"excerpt":          input.Excerpt,
		"content":          input.Content,
		"category":         input.Category,
		"images":           datatypes.JSONSlice[string](urls),
		"approved":         false,
		"approved_by":      nil,
		"status":           models.BlogPending,
		"rejection_reason": "",
	}
	if err := s.db.WithContext(ctx).Model(blog).Updates(updates).Error; err != nil {
		if len(images) > 0 {
			s.assets.Remove(ctx, urls...)
		}
		return nil, fmt.Errorf("blog service: update: %w", err)
	}
	if len(images) > 0 {
		s.assets.Remove(ctx, previous...)
	}

	return s.reload(ctx, blog.ID)
}

// Delete removes a post owned by userID.
func (s *BlogService) Delete(ctx context.Context, userID, id string) error {
	ctx = ensureContext(ctx)

	blog, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, blog)
}

// AdminDelete removes any post.
func (s *BlogService) AdminDelete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	blog, err := findByID[models.Blog](ctx, s.db, id, ErrBlogNotFound)
	if err != nil {
		return err
	}
	return s.remove(ctx, blog)
}

// Approve publishes a post.
func (s *BlogService) Approve(ctx context.Context, adminID, id string) (*models.Blog, error) {
	ctx = ensureContext(ctx)

	blog, err := findByID[models.Blog](ctx, s.db, id, ErrBlogNotFound)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"approved":         true,
		"approved_by":      adminID,
		"status":           models.BlogApproved,
		"rejection_reason": "",
	}
	if err := s.db.WithContext(ctx).Model(blog).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("blog service: approve: %w", err)
	}
	return s.reload(ctx, blog.ID)
}

// Reject hides a post and records why.
func (s *BlogService) Reject(ctx context.Context, id, reason string) (*models.Blog, error) {
	ctx = ensureContext(ctx)

	blog, err := findByID[models.Blog](ctx, s.db, id, ErrBlogNotFound)
	if err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultRejectionReason
	}

	updates := map[string]any{
		"approved":         false,
		"approved_by":      nil,
		"status":           models.BlogRejected,
		"rejection_reason": reason,
	}
	if err := s.db.WithContext(ctx).Model(blog).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("blog service: reject: %w", err)
	}
	return s.reload(ctx, blog.ID)
}

func (s *BlogService) owned(ctx context.Context, userID, id string) (*models.Blog, error) {
	blog, err := findByID[models.Blog](ctx, s.db, id, ErrBlogNotFound)
	if err != nil {
		return nil, err
	}
	if blog.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return blog, nil
}

func (s *BlogService) remove(ctx context.Context, blog *models.Blog) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("blog_id = ?", blog.ID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("blog service: delete comments: %w", err)
		}
		if err := tx.Delete(&models.Blog{}, "id = ?", blog.ID).Error; err != nil {
			return fmt.Errorf("blog service: delete: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.assets.Remove(ctx, blog.Images...)
	return nil
}

func (s *BlogService) reload(ctx context.Context, id string) (*models.Blog, error) {
	return findByID[models.Blog](ctx, s.db, id, ErrBlogNotFound)
}

func validateBlogInput(input BlogInput) (BlogInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Excerpt = strings.TrimSpace(input.Excerpt)
	input.Content = strings.TrimSpace(input.Content)
	input.Category = strings.TrimSpace(input.Category)
	if input.Title == "" || input.Content == "" {
		return input, apperrors.NewBadRequest("Title and content are required")
	}
	return input, nil
}

func toBlogViews(blogs []models.Blog) []BlogView {
	views := make([]BlogView, 0, len(blogs))
	for _, blog := range blogs {
		view := BlogView{Blog: blog}
		if blog.User != nil {
			view.Writer = blog.User.Name
		}
		views = append(views, view)
	}
	return views
}
