package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css templates/*.html scripts/*.js
var files embed.FS

// EmbeddedLoader loads assets compiled into the binary.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadStyle loads styles/{name}.css.
func (e *EmbeddedLoader) LoadStyle(name string) (string, error) {
	return e.load("styles", name, ".css", ErrStyleNotFound)
}

// LoadTemplate loads templates/{name}.html.
func (e *EmbeddedLoader) LoadTemplate(name string) (string, error) {
	return e.load("templates", name, ".html", ErrTemplateNotFound)
}

// LoadScript loads scripts/{name}.js.
func (e *EmbeddedLoader) LoadScript(name string) (string, error) {
	return e.load("scripts", name, ".js", ErrScriptNotFound)
}

func (e *EmbeddedLoader) load(dir, name, ext string, notFound error) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	content, err := files.ReadFile(dir + "/" + name + ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", notFound, name)
	}
	return string(content), nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
