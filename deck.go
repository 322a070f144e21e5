package slidedeck

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-slidedeck/internal/assets"
	"github.com/alnah/go-slidedeck/internal/fileutil"
	"github.com/alnah/go-slidedeck/internal/pipeline"
)

// AssetLoader loads the deck style, document template and navigation script.
type AssetLoader = assets.AssetLoader

// Deck is an assembled, self-contained HTML slide deck.
type Deck struct {
	Title  string
	HTML   string
	Slides int
}

// SlideText is the plain-text view of one slide.
type SlideText struct {
	Title string
	Lines []string
}

// Text extracts a plain-text view of every slide, for terminal rendering.
func (d *Deck) Text() ([]SlideText, error) {
	raw, err := pipeline.ExtractSlideText(d.HTML)
	if err != nil {
		return nil, err
	}
	out := make([]SlideText, len(raw))
	for i, s := range raw {
		out[i] = SlideText{Title: s.Title, Lines: s.Lines}
	}
	return out, nil
}

// Source describes where slides come from.
type Source struct {
	// Path is a Markdown file, an HTML deck, or a directory of both.
	Path string
	// Slides are inline HTML fragments, used when Path is empty.
	Slides []string
	// Exports renders the PDF and PPTX download buttons. Only meaningful
	// when the deck is served with export endpoints.
	Exports bool
}

// Builder assembles decks from slide sources.
type Builder struct {
	assets       AssetLoader
	loader       *pipeline.SlideLoader
	style        string
	theme        Theme
	meta         Metadata
	lang         string
	slideNumbers bool
	logger       *zap.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithAssetLoader sets where styles, templates and scripts come from.
func WithAssetLoader(l AssetLoader) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.assets = l
		}
	}
}

// WithStyle selects a style by name, or a CSS file when the value is a path.
func WithStyle(nameOrPath string) BuilderOption {
	return func(b *Builder) { b.style = nameOrPath }
}

// WithTheme sets the deck colors.
func WithTheme(t Theme) BuilderOption {
	return func(b *Builder) { b.theme = t }
}

// WithMetadata sets the deck title and output metadata.
func WithMetadata(m Metadata) BuilderOption {
	return func(b *Builder) { b.meta = m }
}

// WithSlideNumbers toggles the "i / N" badge on each slide.
func WithSlideNumbers(on bool) BuilderOption {
	return func(b *Builder) { b.slideNumbers = on }
}

// WithLang sets the document language.
func WithLang(lang string) BuilderOption {
	return func(b *Builder) { b.lang = lang }
}

// WithRawHTML allows inline HTML in Markdown slides.
func WithRawHTML(on bool) BuilderOption {
	return func(b *Builder) {
		b.loader = pipeline.NewSlideLoader(pipeline.NewGoldmarkConverter(on))
	}
}

// WithBuilderLogger sets the logger.
func WithBuilderLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder creates a Builder using the embedded assets and the default
// theme and metadata.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		assets:       assets.NewEmbeddedLoader(),
		loader:       pipeline.NewSlideLoader(pipeline.NewGoldmarkConverter(true)),
		style:        assets.DefaultStyleName,
		theme:        DefaultTheme(),
		meta:         DefaultMetadata(),
		lang:         "en",
		slideNumbers: true,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Metadata returns the deck metadata.
func (b *Builder) Metadata() Metadata { return b.meta }

// Build assembles a deck. The result always contains exactly one .slide
// element per source slide, the first one active.
func (b *Builder) Build(ctx context.Context, src Source) (*Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.theme.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	fragments, err := b.slides(ctx, src)
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, ErrNoSlides
	}

	css, err := b.loadStyle()
	if err != nil {
		return nil, err
	}
	tmpl, err := b.assets.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	script, err := b.assets.LoadScript(assets.DefaultScriptName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	renderer, err := pipeline.NewDocumentRenderer(tmpl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	html, err := renderer.Render(pipeline.DocumentData{
		Title: b.meta.Title,
		Lang:  b.lang,
		Theme: pipeline.ThemeColors{
			PageBackground:  b.theme.PageBackground,
			SlideBackground: b.theme.SlideBackground,
			SlideGradientTo: b.theme.SlideGradientTo,
			Accent:          b.theme.Accent,
			Text:            b.theme.Text,
		},
		CSS:          css,
		Script:       script,
		Slides:       fragments,
		SlideNumbers: b.slideNumbers,
		Exports:      src.Exports,
		Labels: pipeline.ControlLabels{
			Prev: defaultLabels[ControlPrev],
			PDF:  defaultLabels[ControlPDF],
			PPTX: defaultLabels[ControlPPTX],
			Next: defaultLabels[ControlNext],
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}

	// Slide markup can contain unbalanced tags that swallow or split
	// sections; catch that here rather than in the browser.
	n, err := pipeline.CountSlides(html)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	if n != len(fragments) {
		return nil, fmt.Errorf("%w: document has %d slides, want %d", ErrAssembly, n, len(fragments))
	}

	b.logger.Debug("deck assembled",
		zap.Int("slides", n),
		zap.Int("bytes", len(html)),
		zap.Duration("elapsed", time.Since(start)))
	return &Deck{Title: b.meta.Title, HTML: html, Slides: n}, nil
}

func (b *Builder) slides(ctx context.Context, src Source) ([]string, error) {
	if src.Path == "" {
		return src.Slides, nil
	}
	loaded, err := b.loader.Load(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(loaded))
	for i, s := range loaded {
		out[i] = s.HTML
	}
	return out, nil
}

func (b *Builder) loadStyle() (string, error) {
	if fileutil.IsFilePath(b.style) {
		data, err := os.ReadFile(b.style) // #nosec G304 -- user-provided style path
		if err != nil {
			return "", fmt.Errorf("%w: reading style: %v", ErrAssembly, err)
		}
		return string(data), nil
	}
	css, err := b.assets.LoadStyle(b.style)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssembly, err)
	}
	return css, nil
}
