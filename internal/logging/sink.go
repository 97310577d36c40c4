package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// sink is a zapcore.WriteSyncer appending to a file that is rotated to
// path+".1" once it grows past maxSizeMB.
type sink struct {
	mu        sync.Mutex
	f         *os.File
	path      string
	maxSizeMB int
}

// openSink creates parent directories (0o700) and opens path in append mode
// (0o600).
func openSink(path string, maxSizeMB int) (*sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("logging: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("logging: open file: %w", err)
	}
	return &sink{f: f, path: path, maxSizeMB: maxSizeMB}, nil
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.f == nil {
		return 0, os.ErrClosed
	}
	n, err := s.f.Write(p)
	if err == nil && s.maxSizeMB > 0 {
		s.rotateIfNeeded()
	}
	return n, err
}

func (s *sink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	return s.f.Sync()
}

// Close closes the file. Later writes fail with os.ErrClosed.
func (s *sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *sink) rotateIfNeeded() {
	info, err := s.f.Stat()
	if err != nil {
		return
	}
	if info.Size() < int64(s.maxSizeMB)*1024*1024 {
		return
	}
	s.rotate()
}

func (s *sink) rotate() {
	_ = s.f.Close()
	_ = os.Rename(s.path, s.path+".1")

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		s.f = nil
		return
	}
	s.f = f
}
