package storage

import (
	"context"
	"io"
	"sync"
)

// MemoryStorage keeps assets in process memory. Intended for tests and local tooling.
type MemoryStorage struct {
	mu        sync.Mutex
	publicURL string
	objects   map[string][]byte
	// FailPut and FailDelete force errors on the next calls when set.
	FailPut    error
	FailDelete error
}

// NewMemory returns an empty in-memory store serving URLs under publicURL.
func NewMemory(publicURL string) *MemoryStorage {
	if publicURL == "" {
		publicURL = "https://cdn.test"
	}
	return &MemoryStorage{publicURL: publicURL, objects: make(map[string][]byte)}
}

func (m *MemoryStorage) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPut != nil {
		return Object{}, m.FailPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Object{}, err
	}
	m.objects[key] = data
	return Object{Key: key, URL: joinURL(m.publicURL, key)}, nil
}

func (m *MemoryStorage) Delete(_ context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDelete != nil {
		return m.FailDelete
	}
	key, err := keyFromURL(m.publicURL, url)
	if err != nil {
		return err
	}
	delete(m.objects, key)
	return nil
}

// Has reports whether url currently resolves to a stored object.
func (m *MemoryStorage) Has(url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := keyFromURL(m.publicURL, url)
	if err != nil {
		return false
	}
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
