// Package storagetest provides an in-memory storage.Service for tests.
package storagetest

import (
	"context"
	"errors"
	"io"
	"sync"

	"instaclone/internal/storage"
)

var _ storage.Service = (*Memory)(nil)

// ErrNotStored is returned by Delete for unknown keys
var ErrNotStored = errors.New("object not stored")

// Memory keeps uploaded objects in a map
type Memory struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	// UploadErr, when set, fails every Upload
	UploadErr error
}

func NewMemory() *Memory {
	return &Memory{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (m *Memory) Upload(_ context.Context, key, contentType string, body io.Reader, _ int64) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = data
	m.Types[key] = contentType
	return nil
}

func (m *Memory) URL(_ context.Context, key string) (string, error) {
	return "https://files.test/" + key, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Objects[key]; !ok {
		return ErrNotStored
	}
	delete(m.Objects, key)
	delete(m.Types, key)
	return nil
}

func (m *Memory) Health(context.Context) error { return nil }

// Has reports whether key is stored
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[key]
	return ok
}
