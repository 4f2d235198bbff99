// Package memory keeps previews in process memory.
package memory

import (
    "bytes"
    "context"
    "fmt"
    "io"
    "io/fs"
    "sync"
    "time"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = fs.ErrNotExist

type object struct {
    data     []byte
    storedAt time.Time
}

type Storage struct {
    mu      sync.RWMutex
    objects map[string]object
    now     func() time.Time
}

func NewStorage() *Storage {
    return &Storage{objects: make(map[string]object), now: time.Now}
}

func (s *Storage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
    data, err := io.ReadAll(reader)
    if err != nil {
        return "", fmt.Errorf("failed to store file: %w", err)
    }

    s.mu.Lock()
    defer s.mu.Unlock()
    s.objects[key] = object{data: data, storedAt: s.now()}
    return key, nil
}

func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
    s.mu.RLock()
    defer s.mu.RUnlock()

    obj, ok := s.objects[key]
    if !ok {
        return nil, fmt.Errorf("failed to get file %s: %w", key, ErrNotFound)
    }
    return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.objects, key)
    return nil
}

func (s *Storage) CleanupBefore(ctx context.Context, threshold time.Time) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    for key, obj := range s.objects {
        if obj.storedAt.Before(threshold) {
            delete(s.objects, key)
        }
    }
    return nil
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
    s.mu.RLock()
    defer s.mu.RUnlock()
    return len(s.objects)
}
