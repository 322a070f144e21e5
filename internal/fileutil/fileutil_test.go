package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-slidedeck/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestValidateExtension - Extension validation
// ---------------------------------------------------------------------------

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{"html", "html", nil},
		{"double extension", "tar.gz", nil},
		{"empty", "", fileutil.ErrExtensionEmpty},
		{"forward slash", "../html", fileutil.ErrExtensionPathTraversal},
		{"backslash", `..\html`, fileutil.ErrExtensionPathTraversal},
		{"null byte", "ht\x00ml", fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteTempFile - Temp files for the browser
// ---------------------------------------------------------------------------

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := fileutil.WriteTempFile("<html></html>", "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path = %q, want .html suffix", path)
	}
	if !strings.HasPrefix(filepath.Base(path), "slidedeck-") {
		t.Errorf("path = %q, want slidedeck- prefix", path)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "<html></html>" {
		t.Errorf("content = %q, want %q", got, "<html></html>")
	}

	cleanup()
	if fileutil.FileExists(path) {
		t.Error("file still exists after cleanup")
	}
}

func TestWriteTempFile_InvalidExtension(t *testing.T) {
	t.Parallel()

	_, cleanup, err := fileutil.WriteTempFile("x", "")
	if !errors.Is(err, fileutil.ErrExtensionEmpty) {
		t.Errorf("WriteTempFile() error = %v, want ErrExtensionEmpty", err)
	}
	if cleanup != nil {
		t.Error("cleanup should be nil on error")
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Artifact saving
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deck.pdf")

	if err := fileutil.WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want %q", got, "second")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1 (temp files left behind)", len(entries))
	}
}

func TestWriteFileAtomic_EmptyPath(t *testing.T) {
	t.Parallel()

	if err := fileutil.WriteFileAtomic("", nil); !errors.Is(err, fileutil.ErrEmptyPath) {
		t.Errorf("WriteFileAtomic(\"\") error = %v, want ErrEmptyPath", err)
	}
}

// ---------------------------------------------------------------------------
// Path predicates
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !fileutil.FileExists(file) {
		t.Error("FileExists(file) = false, want true")
	}
	if fileutil.FileExists(dir) {
		t.Error("FileExists(dir) = true, want false")
	}
	if fileutil.FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true, want false")
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"burgundy", false},
		{"burgundy.css", false},
		{"./custom.css", true},
		{"/abs/theme.css", true},
		{`themes\dark.css`, true},
	}

	for _, tt := range tests {
		if got := fileutil.IsFilePath(tt.input); got != tt.want {
			t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFileURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	got := fileutil.FileURL(filepath.Join(dir, "deck.html"))
	if !strings.HasPrefix(got, "file://") {
		t.Errorf("FileURL() = %q, want file:// prefix", got)
	}
	if !strings.HasSuffix(got, "/deck.html") {
		t.Errorf("FileURL() = %q, want /deck.html suffix", got)
	}
}
