package recorder

import (
	"context"
	"sync"
)

// Sink persists flush artifacts. Implementations decide where bytes go (files,
// object storage, a network peer); the recorder only names them.
type Sink interface {
	Write(ctx context.Context, name string, data []byte) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, name string, data []byte) error

// Write calls f(ctx, name, data).
func (f SinkFunc) Write(ctx context.Context, name string, data []byte) error {
	return f(ctx, name, data)
}

// MemorySink keeps artifacts in memory, keyed by name.
type MemorySink struct {
	mu    sync.Mutex
	files map[string][]byte
	order []string
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{files: make(map[string][]byte)}
}

// Write stores a copy of data under name, replacing any earlier artifact of that name.
func (s *MemorySink) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[name]; !ok {
		s.order = append(s.order, name)
	}
	s.files[name] = append([]byte(nil), data...)

	return nil
}

// Get returns the artifact stored under name.
func (s *MemorySink) Get(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.files[name]

	return data, ok
}

// Names returns artifact names in the order they were first written.
func (s *MemorySink) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.order...)
}
