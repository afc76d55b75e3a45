package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotManaged is returned by Delete when a URL does not belong to the store.
var ErrNotManaged = errors.New("storage: url is not managed by this store")

// Object describes a stored asset.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Storage uploads and removes binary assets addressed by a public URL.
type Storage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (Object, error)
	Delete(ctx context.Context, url string) error
}

// Driver names accepted by New.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Settings selects and configures a storage driver.
type Settings struct {
	Driver string
	Local  LocalSettings
	S3     S3Settings
}

// New builds the configured storage driver.
func New(ctx context.Context, cfg Settings) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLocal:
		return NewLocal(cfg.Local)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unsupported driver %q", cfg.Driver)
	}
}

// ObjectKey returns a collision-free key of the form kind/yyyy/mm/<uuid><ext>.
func ObjectKey(kind, filename string, now time.Time) string {
	kind = strings.Trim(strings.ToLower(strings.TrimSpace(kind)), "/")
	if kind == "" {
		kind = "misc"
	}
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\ ") {
		ext = ""
	}
	return fmt.Sprintf("%s/%04d/%02d/%s%s", kind, now.Year(), int(now.Month()), uuid.NewString(), ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// keyFromURL strips base from rawURL, returning ErrNotManaged when rawURL
// does not start with base.
func keyFromURL(base, rawURL string) (string, error) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", ErrNotManaged
	}
	key := strings.TrimPrefix(rawURL, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", ErrNotManaged
	}
	return key, nil
}
