package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalSettings configure the disk-backed store used in development.
type LocalSettings struct {
	Root string
	// PublicURL is the URL prefix the HTTP server serves Root under.
	PublicURL string
}

// LocalStorage writes assets beneath a directory served as static files.
type LocalStorage struct {
	root      string
	publicURL string
}

// NewLocal prepares the root directory.
func NewLocal(cfg LocalSettings) (*LocalStorage, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, errors.New("storage: local root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	publicURL := strings.TrimSpace(cfg.PublicURL)
	if publicURL == "" {
		publicURL = "/static"
	}
	return &LocalStorage{root: root, publicURL: publicURL}, nil
}

// Root returns the directory assets are written to.
func (s *LocalStorage) Root() string { return s.root }

// PublicURL returns the URL prefix of stored assets.
func (s *LocalStorage) PublicURL() string { return s.publicURL }

func (s *LocalStorage) Put(ctx context.Context, key string, body io.Reader, _ int64, _ string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	target, err := s.path(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Object{}, fmt.Errorf("storage: create dir: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		return Object{}, fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(file, body); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return Object{}, fmt.Errorf("storage: write file: %w", err)
	}
	if err := file.Close(); err != nil {
		return Object{}, fmt.Errorf("storage: close file: %w", err)
	}

	return Object{Key: key, URL: joinURL(s.publicURL, key)}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := keyFromURL(s.publicURL, url)
	if err != nil {
		return err
	}
	target, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("storage: invalid key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
