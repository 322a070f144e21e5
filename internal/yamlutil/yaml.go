// Package yamlutil wraps YAML parsing so the rest of the module never
// imports the YAML library directly.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/goccy/go-yaml/token"
)

// MaxInputSize limits YAML input to prevent memory exhaustion (1MB).
// A deck file is a few dozen lines; anything larger is a mistake.
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Error is a decode failure located in the source document. Path is the
// dotted key under which the failure sits, like "raster.width".
type Error struct {
	Line   int
	Column int
	Path   string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("yamlutil: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("yamlutil: line %d: %s: %s", e.Line, e.Path, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// tokenError is implemented by go-yaml's syntax, type and unknown field errors.
type tokenError interface {
	GetToken() *token.Token
	GetMessage() string
}

// locate turns a go-yaml error into an *Error when it carries a position.
func locate(data []byte, err error) error {
	var te tokenError
	if !errors.As(err, &te) {
		return fmt.Errorf("yamlutil: %w", err)
	}
	tk := te.GetToken()
	if tk == nil || tk.Position == nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return &Error{
		Line:   tk.Position.Line,
		Column: tk.Position.Column,
		Path:   keyPath(data, tk.Position.Line),
		Msg:    te.GetMessage(),
		Err:    err,
	}
}

// keyPath returns the dotted key of the mapping entry on line (1-based),
// walking up to each less indented parent key. Flow mappings and quoted
// keys are not followed.
func keyPath(data []byte, line int) string {
	lines := strings.Split(string(data), "\n")
	if line < 1 || line > len(lines) {
		return ""
	}

	var keys []string
	indent := -1
	for i := line - 1; i >= 0 && indent != 0; i-- {
		text := strings.TrimRight(lines[i], "\r")
		trimmed := strings.TrimLeft(text, " ")
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		ind := len(text) - len(trimmed)
		if indent >= 0 && ind >= indent {
			continue
		}
		// A list item's first key is a sibling of the keys below it.
		keyInd := ind
		if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
			trimmed, keyInd = rest, ind+2
		}
		if indent < 0 || keyInd < indent {
			if key, _, ok := strings.Cut(trimmed, ":"); ok && key != "" && !strings.ContainsAny(key, " \"'{[") {
				keys = append(keys, key)
			}
		}
		indent = ind
	}

	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
	return strings.Join(keys, ".")
}

func checkInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data into v, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return locate(data, err)
	}
	return nil
}

// UnmarshalStrict decodes data into v and rejects unknown fields, so a
// misspelled deck key fails loudly instead of silently using a default.
// Positioned failures are returned as *Error.
func UnmarshalStrict(data []byte, v any) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return locate(data, err)
	}
	return nil
}

// Marshal encodes v as YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
