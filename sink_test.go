package slidedeck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirSink_Save(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	s := &DirSink{Dir: dir}

	if err := s.Save(context.Background(), "deck.pdf", []byte("%PDF-1.3")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "deck.pdf"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "%PDF-1.3" {
		t.Errorf("content = %q", got)
	}
}

func TestDirSink_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	err := (&DirSink{Dir: dir}).Save(ctx, "deck.pdf", []byte("x"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Save() error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "deck.pdf")); !os.IsNotExist(err) {
		t.Error("file written despite cancelled context")
	}
}

func TestMemorySink(t *testing.T) {
	t.Parallel()

	s := &MemorySink{}
	if _, _, ok := s.Last(); ok {
		t.Error("Last() ok on empty sink")
	}

	ctx := context.Background()
	_ = s.Save(ctx, "a.pdf", []byte("a"))
	_ = s.Save(ctx, "b.pptx", []byte("b"))

	name, data, ok := s.Last()
	if !ok || name != "b.pptx" || string(data) != "b" {
		t.Errorf("Last() = (%q, %q, %v), want b.pptx", name, data, ok)
	}
	if s.Saves() != 2 {
		t.Errorf("Saves() = %d, want 2", s.Saves())
	}
}
