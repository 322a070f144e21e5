package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemLoader reads deck assets from a directory laid out like the
// embedded one: styles/*.css, templates/*.html and scripts/*.js.
type FilesystemLoader struct {
	root string // absolute, symlinks resolved
}

var _ AssetLoader = (*FilesystemLoader)(nil)

// NewFilesystemLoader opens dir as an asset directory.
func NewFilesystemLoader(dir string) (*FilesystemLoader, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	root, err := realPath(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if _, err := os.ReadDir(root); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBasePath, dir, err)
	}
	return &FilesystemLoader{root: root}, nil
}

// LoadStyle reads styles/<name>.css.
func (l *FilesystemLoader) LoadStyle(name string) (string, error) {
	return l.read("styles", name+".css", name, ErrStyleNotFound)
}

// LoadTemplate reads templates/<name>.html.
func (l *FilesystemLoader) LoadTemplate(name string) (string, error) {
	return l.read("templates", name+".html", name, ErrTemplateNotFound)
}

// LoadScript reads scripts/<name>.js.
func (l *FilesystemLoader) LoadScript(name string) (string, error) {
	return l.read("scripts", name+".js", name, ErrScriptNotFound)
}

func (l *FilesystemLoader) read(kind, file, name string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	path := filepath.Join(l.root, kind, file)
	if err := l.contain(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- contained in l.root
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q", notFound, name)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(data), nil
}

// contain fails when path, once symlinks are followed, lies outside root.
func (l *FilesystemLoader) contain(path string) error {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	if !strings.HasPrefix(path, l.root+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, path)
	}
	return nil
}

// realPath returns the absolute, symlink-free form of dir. It fails when
// dir is not a directory.
func realPath(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		abs = real
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}
