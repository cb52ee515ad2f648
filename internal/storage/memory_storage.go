package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	_ ObjectStore = (*S3Storage)(nil)
	_ ObjectStore = (*MemoryStorage)(nil)
)

// MemoryStorage is an in-process ObjectStore used in tests and when no
// bucket is configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryStorage) URLFor(key string) string {
	return m.baseURL + "/" + key
}

func (m *MemoryStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload body: %w", err)
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()

	return m.URLFor(key), nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) DeleteByURL(ctx context.Context, fileURL string) {
	prefix := m.baseURL + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return
	}
	_ = m.Delete(ctx, strings.TrimPrefix(fileURL, prefix))
}

func (m *MemoryStorage) DeletePrefix(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for key := range m.objects {
		if strings.HasPrefix(key, prefix) {
			delete(m.objects, key)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStorage) PresignUpload(_ context.Context, folder, filename, _ string) (*PresignedURLResponse, error) {
	key := fmt.Sprintf("%s/%s%s", strings.Trim(folder, "/"), uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
	return &PresignedURLResponse{
		UploadURL: m.URLFor(key) + "?upload=1",
		FileURL:   m.URLFor(key),
		Key:       key,
	}, nil
}

// Keys lists stored keys in order.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the stored bytes for key.
func (m *MemoryStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}
