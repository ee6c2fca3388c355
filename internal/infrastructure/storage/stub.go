package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// StubArchive keeps archived PDFs in memory. Used in development when no
// object storage is configured, and in tests.
type StubArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewStubArchive creates a new StubArchive
func NewStubArchive() *StubArchive {
	return &StubArchive{objects: make(map[string][]byte)}
}

// ArchivePDF stores the PDF in memory and returns its key
func (s *StubArchive) ArchivePDF(ctx context.Context, name string, pdf []byte) (string, error) {
	if name == "" {
		return "", errors.New("archive name is required")
	}
	if len(pdf) == 0 {
		return "", errors.New("archive content is empty")
	}

	key := name
	s.mu.Lock()
	s.objects[key] = append([]byte(nil), pdf...)
	s.mu.Unlock()
	return key, nil
}

// DownloadURL returns a placeholder URL for an archived PDF
func (s *StubArchive) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	s.mu.Lock()
	_, exists := s.objects[key]
	s.mu.Unlock()
	if !exists {
		return "", errors.New("object not found")
	}
	return "stub://archive/" + key, nil
}

// Get returns an archived PDF (for tests)
func (s *StubArchive) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pdf, ok := s.objects[key]
	return pdf, ok
}
