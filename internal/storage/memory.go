package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore keeps objects in process memory. It serves development setups
// without MinIO and tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]Object
	base    string
}

type Object struct {
	ContentType string
	Data        []byte
}

func NewMemoryStore(base string) *MemoryStore {
	return &MemoryStore{objects: map[string]Object{}, base: base}
}

func (s *MemoryStore) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = Object{ContentType: contentType, Data: buf.Bytes()}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.base + "/files/" + key
}

// Get returns a stored object.
func (s *MemoryStore) Get(key string) (Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[key]
	return o, ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
