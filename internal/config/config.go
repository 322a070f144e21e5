// Package config loads and validates deck configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-slidedeck/internal/fileutil"
	"github.com/alnah/go-slidedeck/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config")
)

// Field length limits.
const (
	MaxTitleLength    = 200
	MaxNameLength     = 100
	MaxFilenameLength = 255
	MaxPathLength     = 4096
)

// Raster and timing bounds.
const (
	MaxRasterDimension = 4096
	MaxSettleDelay     = 10 * time.Second
	MaxTimeout         = 30 * time.Minute
)

var (
	hexColor  = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)
	plainName = regexp.MustCompile(`^[^/\\\x00]+$`)
)

// Config holds all configuration for one deck.
type Config struct {
	Deck   DeckConfig   `yaml:"deck"`
	Output OutputConfig `yaml:"output"`
	Theme  ThemeConfig  `yaml:"theme"`
	Raster RasterConfig `yaml:"raster"`
	Timing TimingConfig `yaml:"timing"`
	Server ServerConfig `yaml:"server"`
}

// DeckConfig describes the deck content and its metadata.
type DeckConfig struct {
	Title        string `yaml:"title"`
	Author       string `yaml:"author"`
	Company      string `yaml:"company"`
	Source       string `yaml:"source"`       // .md, .html file or directory of them
	SlideNumbers bool   `yaml:"slideNumbers"` // render "i / N" badges
}

// OutputConfig names the generated files.
type OutputConfig struct {
	Dir  string `yaml:"dir"`  // empty = current directory
	HTML string `yaml:"html"` // assembled deck
	PDF  string `yaml:"pdf"`
	PPTX string `yaml:"pptx"`
}

// ThemeConfig overrides deck colors and styling.
type ThemeConfig struct {
	Style           string `yaml:"style"`     // embedded style name or CSS file path
	AssetPath       string `yaml:"assetPath"` // directory overriding embedded assets
	PageBackground  string `yaml:"pageBackground"`
	SlideBackground string `yaml:"slideBackground"`
	SlideGradientTo string `yaml:"slideGradientTo"`
	Accent          string `yaml:"accent"`
	Text            string `yaml:"text"`
}

// RasterConfig controls slide capture.
type RasterConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Scale      float64 `yaml:"scale"`
	Quality    int     `yaml:"quality"`
	Background string  `yaml:"background"`
}

// TimingConfig controls delays and timeouts.
type TimingConfig struct {
	SettleDelay   time.Duration `yaml:"settleDelay"`
	SuccessLinger time.Duration `yaml:"successLinger"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ServerConfig controls the preview server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Validate checks the whole configuration.
// Called automatically by LoadConfig, but available for callers who build
// a Config by hand or merge flags into it.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Deck),
		validation.Field(&c.Output),
		validation.Field(&c.Theme),
		validation.Field(&c.Raster),
		validation.Field(&c.Timing),
		validation.Field(&c.Server),
	)
}

// Validate checks deck metadata.
func (d DeckConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Title, validation.Length(0, MaxTitleLength)),
		validation.Field(&d.Author, validation.Length(0, MaxNameLength)),
		validation.Field(&d.Company, validation.Length(0, MaxNameLength)),
		validation.Field(&d.Source, validation.Length(0, MaxPathLength)),
	)
}

// Validate checks output filenames are plain names with the right extension.
func (o OutputConfig) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Dir, validation.Length(0, MaxPathLength)),
		validation.Field(&o.HTML, validation.Length(0, MaxFilenameLength), validation.Match(plainName), hasExt(".html", ".htm")),
		validation.Field(&o.PDF, validation.Length(0, MaxFilenameLength), validation.Match(plainName), hasExt(".pdf")),
		validation.Field(&o.PPTX, validation.Length(0, MaxFilenameLength), validation.Match(plainName), hasExt(".pptx")),
	)
}

// Validate checks theme colors.
func (t ThemeConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Style, validation.Length(0, MaxPathLength)),
		validation.Field(&t.AssetPath, validation.Length(0, MaxPathLength)),
		validation.Field(&t.PageBackground, validation.Match(hexColor)),
		validation.Field(&t.SlideBackground, validation.Match(hexColor)),
		validation.Field(&t.SlideGradientTo, validation.Match(hexColor)),
		validation.Field(&t.Accent, validation.Match(hexColor)),
		validation.Field(&t.Text, validation.Match(hexColor)),
	)
}

// Validate checks raster settings. Zero values mean "use default".
func (r RasterConfig) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Width, validation.Min(0), validation.Max(MaxRasterDimension)),
		validation.Field(&r.Height, validation.Min(0), validation.Max(MaxRasterDimension)),
		validation.Field(&r.Scale, validation.Min(0.0), validation.Max(4.0)),
		validation.Field(&r.Quality, validation.Min(0), validation.Max(100)),
		validation.Field(&r.Background, validation.Match(hexColor)),
	)
}

// Validate checks timing bounds.
func (t TimingConfig) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.SettleDelay, validation.Min(time.Duration(0)), validation.Max(MaxSettleDelay)),
		validation.Field(&t.SuccessLinger, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
		validation.Field(&t.Timeout, validation.Min(time.Duration(0)), validation.Max(MaxTimeout)),
	)
}

// Validate checks the server address.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Length(0, 255)),
	)
}

// hasExt returns a rule requiring one of the given extensions on non-empty values.
func hasExt(exts ...string) validation.Rule {
	return validation.By(func(v any) error {
		s, _ := v.(string)
		if s == "" {
			return nil
		}
		got := strings.ToLower(filepath.Ext(s))
		for _, e := range exts {
			if got == e {
				return nil
			}
		}
		return fmt.Errorf("must end in %s", strings.Join(exts, " or "))
	})
}

// DefaultConfig returns the configuration of the salvage management deck.
func DefaultConfig() *Config {
	return &Config{
		Deck: DeckConfig{
			Title:        "Salvage Management System",
			Author:       "Oyeniyi Ademola Daniel",
			Company:      "NEM Insurance PLC",
			Source:       "slides.md",
			SlideNumbers: true,
		},
		Output: OutputConfig{
			HTML: "presentation.html",
			PDF:  "NEM_Insurance_Salvage_Management_System.pdf",
			PPTX: "NEM_Insurance_Salvage_Management_System.pptx",
		},
		Theme: ThemeConfig{
			Style:           "burgundy",
			PageBackground:  "#3d0814",
			SlideBackground: "#800020",
			SlideGradientTo: "#5c0011",
			Accent:          "#FFD700",
			Text:            "#FFFFFF",
		},
		Raster: RasterConfig{
			Width:      1200,
			Height:     900,
			Scale:      1.5,
			Quality:    90,
			Background: "#800020",
		},
		Timing: TimingConfig{
			SettleDelay:   100 * time.Millisecond,
			SuccessLinger: 2 * time.Second,
			Timeout:       2 * time.Minute,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Values missing from the file keep their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) && !fileutil.FileExists(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	// Relative source and output paths are relative to the config file.
	base := filepath.Dir(configPath)
	cfg.Deck.Source = resolveRelative(base, cfg.Deck.Source)
	cfg.Output.Dir = resolveRelative(base, cfg.Output.Dir)
	cfg.Theme.AssetPath = resolveRelative(base, cfg.Theme.AssetPath)
	if fileutil.IsFilePath(cfg.Theme.Style) {
		cfg.Theme.Style = resolveRelative(base, cfg.Theme.Style)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML, for `slidedeck init`.
func Marshal(cfg *Config) ([]byte, error) {
	return yamlutil.Marshal(cfg)
}

func resolveRelative(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "." {
		return p
	}
	return filepath.Join(base, p)
}

// SearchPaths lists where a config name is looked up, in order: the
// current directory, then the user config directory (go-slidedeck/), each
// with .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-slidedeck", name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing SearchPaths entry.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
