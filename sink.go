package slidedeck

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/alnah/go-slidedeck/internal/fileutil"
)

// Compile-time interface checks.
var (
	_ Sink = (*DirSink)(nil)
	_ Sink = (*MemorySink)(nil)
)

// DirSink saves artifacts into a directory. Files are written atomically
// so a failed save never leaves a truncated deck behind.
type DirSink struct {
	Dir string
}

// Save writes data to Dir/filename.
func (s *DirSink) Save(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(filepath.Join(s.Dir, filename), data)
}

// MemorySink keeps the last saved artifact in memory.
type MemorySink struct {
	mu       sync.Mutex
	filename string
	data     []byte
	saves    int
}

// Save records data under filename.
func (s *MemorySink) Save(ctx context.Context, filename string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = filename
	s.data = data
	s.saves++
	return nil
}

// Last returns the most recently saved artifact.
func (s *MemorySink) Last() (filename string, data []byte, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filename, s.data, s.saves > 0
}

// Saves returns how many artifacts were saved.
func (s *MemorySink) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
