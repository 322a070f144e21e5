package slidedeck

import (
	"fmt"
	"image/color"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Raster defaults. Slides are laid out at 1200x900 CSS pixels and captured
// at 1.5x device scale.
const (
	DefaultRasterWidth  = 1200
	DefaultRasterHeight = 900
	DefaultRasterScale  = 1.5
	DefaultJPEGQuality  = 90
	MaxRasterDimension  = 4096
	MaxRasterScale      = 4.0
)

// Theme colors.
const (
	DefaultPageBackground  = "#3d0814"
	DefaultSlideBackground = "#800020"
	DefaultSlideGradientTo = "#5c0011"
	DefaultAccentColor     = "#FFD700"
	DefaultTextColor       = "#FFFFFF"
)

// Deck metadata defaults.
const (
	DefaultTitle        = "Salvage Management System"
	DefaultAuthor       = "Oyeniyi Ademola Daniel"
	DefaultCompany      = "NEM Insurance PLC"
	DefaultPDFFilename  = "NEM_Insurance_Salvage_Management_System.pdf"
	DefaultPPTXFilename = "NEM_Insurance_Salvage_Management_System.pptx"
)

// Timing defaults.
const (
	DefaultSettleDelay   = 100 * time.Millisecond
	DefaultSuccessLinger = 2 * time.Second
)

var hexColorPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// ImageFormat is the encoding of a rasterized slide.
type ImageFormat string

// Supported image formats.
const (
	ImageJPEG ImageFormat = "jpeg"
	ImagePNG  ImageFormat = "png"
)

// Image is one rasterized slide.
type Image struct {
	Data   []byte
	Format ImageFormat
	Width  int // pixels
	Height int // pixels
}

// ExportKind names an output variant.
type ExportKind string

// Export variants.
const (
	KindPDF  ExportKind = "pdf"
	KindPPTX ExportKind = "pptx"
)

// ParseExportKind converts a user-supplied name to an ExportKind.
// Accepts "pdf", "pptx" and "deck" (alias for pptx), case-insensitive.
func ParseExportKind(s string) (ExportKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return KindPDF, nil
	case "pptx", "deck":
		return KindPPTX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// RasterSpec describes how a slide is captured.
// Width and Height are logical (CSS) pixels; captured images are
// Width*Scale by Height*Scale device pixels.
type RasterSpec struct {
	Width      int
	Height     int
	Scale      float64
	Background string // hex color painted behind the slide
	Quality    int    // JPEG quality, 1-100
}

// DefaultRasterSpec returns the 1200x900 capture settings.
func DefaultRasterSpec() RasterSpec {
	return RasterSpec{
		Width:      DefaultRasterWidth,
		Height:     DefaultRasterHeight,
		Scale:      DefaultRasterScale,
		Background: DefaultSlideBackground,
		Quality:    DefaultJPEGQuality,
	}
}

// PixelSize returns the device-pixel dimensions of a capture.
func (r RasterSpec) PixelSize() (int, int) {
	scale := r.Scale
	if scale <= 0 {
		scale = 1
	}
	return int(float64(r.Width)*scale + 0.5), int(float64(r.Height)*scale + 0.5)
}

// Validate checks that the raster settings are usable.
func (r RasterSpec) Validate() error {
	if r.Width <= 0 || r.Height <= 0 || r.Width > MaxRasterDimension || r.Height > MaxRasterDimension {
		return fmt.Errorf("%w: %dx%d (each side must be 1-%d)", ErrInvalidRasterSize, r.Width, r.Height, MaxRasterDimension)
	}
	if r.Scale <= 0 || r.Scale > MaxRasterScale {
		return fmt.Errorf("%w: %.2f (must be in (0, %.0f])", ErrInvalidScale, r.Scale, MaxRasterScale)
	}
	if r.Quality < 1 || r.Quality > 100 {
		return fmt.Errorf("%w: %d (must be 1-100)", ErrInvalidQuality, r.Quality)
	}
	if _, err := ParseHexColor(r.Background); err != nil {
		return err
	}
	return nil
}

// Theme holds the deck colors.
type Theme struct {
	PageBackground  string
	SlideBackground string
	SlideGradientTo string
	Accent          string
	Text            string
}

// DefaultTheme returns the burgundy and gold theme.
func DefaultTheme() Theme {
	return Theme{
		PageBackground:  DefaultPageBackground,
		SlideBackground: DefaultSlideBackground,
		SlideGradientTo: DefaultSlideGradientTo,
		Accent:          DefaultAccentColor,
		Text:            DefaultTextColor,
	}
}

// Validate checks that every theme color is a 6-digit hex color.
func (t Theme) Validate() error {
	for name, c := range map[string]string{
		"pageBackground":  t.PageBackground,
		"slideBackground": t.SlideBackground,
		"slideGradientTo": t.SlideGradientTo,
		"accent":          t.Accent,
		"text":            t.Text,
	} {
		if _, err := ParseHexColor(c); err != nil {
			return fmt.Errorf("theme.%s: %w", name, err)
		}
	}
	return nil
}

// Metadata is the fixed information written into exported files.
type Metadata struct {
	Title        string
	Author       string
	Company      string
	PDFFilename  string
	PPTXFilename string
}

// DefaultMetadata returns the metadata of the salvage management deck.
func DefaultMetadata() Metadata {
	return Metadata{
		Title:        DefaultTitle,
		Author:       DefaultAuthor,
		Company:      DefaultCompany,
		PDFFilename:  DefaultPDFFilename,
		PPTXFilename: DefaultPPTXFilename,
	}
}

// Filename returns the output filename for an export kind.
func (m Metadata) Filename(kind ExportKind) string {
	if kind == KindPPTX {
		return m.PPTXFilename
	}
	return m.PDFFilename
}

// Validate checks output filenames are plain names with the right extension.
func (m Metadata) Validate() error {
	if err := validateFilename(m.PDFFilename, ".pdf"); err != nil {
		return err
	}
	return validateFilename(m.PPTXFilename, ".pptx")
}

func validateFilename(name, ext string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	if !strings.EqualFold(filepath.Ext(name), ext) {
		return fmt.Errorf("%w: %q (must end in %s)", ErrInvalidFilename, name, ext)
	}
	return nil
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into an opaque color.
func ParseHexColor(s string) (color.RGBA, error) {
	m := hexColorPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return color.RGBA{}, fmt.Errorf("%w: %q (must be #RRGGBB)", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(m[1], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// hexDigits returns the bare uppercase "RRGGBB" form used by OOXML.
func hexDigits(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}

// Option configures an Exporter.
type Option func(*Exporter)

// exporterConfig holds internal configuration for Exporter.
type exporterConfig struct {
	settleDelay   time.Duration
	successLinger time.Duration
	raster        RasterSpec
}

// WithSettleDelay sets the pause between showing a slide and capturing it.
// Panics if d < 0 (programmer error, similar to time.NewTicker).
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("slidedeck: WithSettleDelay duration must not be negative")
	}
	return func(e *Exporter) {
		e.cfg.settleDelay = d
	}
}

// WithSuccessLinger sets how long the success label stays on the
// triggering control. Zero restores it immediately.
func WithSuccessLinger(d time.Duration) Option {
	if d < 0 {
		panic("slidedeck: WithSuccessLinger duration must not be negative")
	}
	return func(e *Exporter) {
		e.cfg.successLinger = d
	}
}

// WithRasterSpec overrides the capture settings.
func WithRasterSpec(spec RasterSpec) Option {
	return func(e *Exporter) {
		e.cfg.raster = spec
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithNotifier sets where export failures are reported.
func WithNotifier(n Notifier) Option {
	return func(e *Exporter) {
		if n != nil {
			e.notifier = n
		}
	}
}
