package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/sitecms/sitecms/pkg/errors"
	"github.com/sitecms/sitecms/pkg/logger"
	"github.com/sitecms/sitecms/pkg/metrics"
	"github.com/sitecms/sitecms/pkg/storage"
)

const defaultStorageTimeout = 30 * time.Second

// ErrUnsupportedMedia rejects uploads that are not images.
var ErrUnsupportedMedia = apperrors.New("validation.media_type", "Only image uploads are accepted", http.StatusBadRequest)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AssetService stores uploaded images in object storage. Every storage call
// runs under its own timeout.
type AssetService struct {
	store   storage.Storage
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// NewAssetService constructs an AssetService over store.
func NewAssetService(store storage.Storage, timeout time.Duration) (*AssetService, error) {
	if store == nil {
		return nil, errors.New("asset service: storage is required")
	}
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &AssetService{
		store:   store,
		timeout: timeout,
		now:     time.Now,
		log:     logger.WithModule("assets"),
	}, nil
}

// Save uploads one image under kind and returns its public URL.
func (s *AssetService) Save(ctx context.Context, kind string, upload Upload) (string, error) {
	ctx = ensureContext(ctx)

	if upload.Body == nil {
		return "", apperrors.NewBadRequest("File is required")
	}
	contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrUnsupportedMedia
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := storage.ObjectKey(kind, upload.Filename, s.now())
	object, err := s.store.Put(opCtx, key, upload.Body, upload.Size, contentType)
	metrics.StorageOperations.WithLabelValues("put", metrics.Result(err)).Inc()
	if err != nil {
		return "", apperrors.Dependency(fmt.Errorf("asset service: upload %s: %w", key, err))
	}
	return object.URL, nil
}

// SaveAll uploads every image or none: on failure the images already stored
// are removed again.
func (s *AssetService) SaveAll(ctx context.Context, kind string, uploads []Upload) ([]string, error) {
	urls := make([]string, 0, len(uploads))
	for _, upload := range uploads {
		url, err := s.Save(ctx, kind, upload)
		if err != nil {
			s.Remove(ctx, urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Remove deletes the objects behind urls. Failures are logged and never
// returned; an orphaned object must not fail the request that dropped it.
func (s *AssetService) Remove(ctx context.Context, urls ...string) {
	ctx = ensureContext(ctx)

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}

		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.store.Delete(opCtx, url)
		cancel()

		if errors.Is(err, storage.ErrNotManaged) {
			s.log.Debug("skipping asset outside storage", zap.String("url", url))
			continue
		}
		metrics.StorageOperations.WithLabelValues("delete", metrics.Result(err)).Inc()
		if err != nil {
			s.log.Warn("asset cleanup failed", zap.String("url", url), zap.Error(err))
		}
	}
}
