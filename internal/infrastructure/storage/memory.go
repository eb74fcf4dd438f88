package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// MemoryArchiveStorage keeps objects in memory. It backs local
// development when no S3 endpoint is configured.
type MemoryArchiveStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryArchiveStorage creates an empty in-memory store
func NewMemoryArchiveStorage(baseURL string) *MemoryArchiveStorage {
	if baseURL == "" {
		baseURL = "http://localhost/archive"
	}
	return &MemoryArchiveStorage{BaseURL: baseURL, objects: make(map[string]memoryObject)}
}

// Upload stores a copy of data
func (m *MemoryArchiveStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return ErrKeyRequired
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[storageKey] = memoryObject{data: append([]byte(nil), data...), contentType: contentType}
	return nil
}

// Download returns the stored bytes
func (m *MemoryArchiveStorage) Download(_ context.Context, storageKey string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	if !ok {
		return nil, fmt.Errorf("object %q not found", storageKey)
	}
	return append([]byte(nil), obj.data...), nil
}

// ContentType returns the content type recorded at upload
func (m *MemoryArchiveStorage) ContentType(storageKey string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[storageKey].contentType
}

// GenerateDownloadURL returns a URL under BaseURL. Keys that were never
// uploaded are rejected.
func (m *MemoryArchiveStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	m.mu.RLock()
	_, ok := m.objects[storageKey]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, fmt.Errorf("object %q not found", storageKey)
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	expiresAt := time.Now().Add(expiresIn)
	return m.BaseURL + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}
