package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/assets"
	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/hints"
	"github.com/alnah/go-slidedeck/internal/pipeline"
)

// defaultConfigName is looked up when no --config is given.
const defaultConfigName = "deck"

// newLogger builds the console logger: debug with --verbose, errors only
// with --quiet.
func newLogger(w io.Writer, f commonFlags) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case f.verbose:
		level = zapcore.DebugLevel
	case f.quiet:
		level = zapcore.ErrorLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// loadConfig loads name, or the env config, or deck.yaml if present.
// Without any of them the defaults apply.
func loadConfig(name string, envCfg *envConfig) (*config.Config, error) {
	if name == "" {
		name = envCfg.ConfigPath
	}
	if name != "" {
		return config.LoadConfig(name)
	}
	cfg, err := config.LoadConfig(defaultConfigName)
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.DefaultConfig(), nil
	}
	return cfg, err
}

// prepareConfig layers env and flags over cfg and validates the result.
// A non-empty source overrides deck.source.
func prepareConfig(cfg *config.Config, envCfg *envConfig, f deckFlags, source string) error {
	applyEnvConfig(envCfg, cfg)
	applyDeckFlags(f, cfg)
	if source != "" {
		cfg.Deck.Source = source
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", config.ErrConfigInvalid, err)
	}
	return nil
}

func applyDeckFlags(f deckFlags, cfg *config.Config) {
	if f.output != "" {
		cfg.Output.Dir = f.output
	}
	if f.style != "" {
		cfg.Theme.Style = f.style
	}
	if f.assetPath != "" {
		cfg.Theme.AssetPath = f.assetPath
	}
	if f.title != "" {
		cfg.Deck.Title = f.title
	}
	if f.noNumbers {
		cfg.Deck.SlideNumbers = false
	}
}

// resolveTimeout returns the flag value if set, else the configured one.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue == "" {
		return cfg.Timing.Timeout, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: invalid --timeout %q", errUsage, flagValue)
	}
	return d, nil
}

// withTimeout bounds ctx by d when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// hexColor adds the leading # that CSS needs.
func hexColor(v, def string) string {
	v = orDefault(v, def)
	if !strings.HasPrefix(v, "#") {
		v = "#" + v
	}
	return v
}

func themeFrom(cfg *config.Config) slidedeck.Theme {
	t := cfg.Theme
	return slidedeck.Theme{
		PageBackground:  hexColor(t.PageBackground, slidedeck.DefaultPageBackground),
		SlideBackground: hexColor(t.SlideBackground, slidedeck.DefaultSlideBackground),
		SlideGradientTo: hexColor(t.SlideGradientTo, slidedeck.DefaultSlideGradientTo),
		Accent:          hexColor(t.Accent, slidedeck.DefaultAccentColor),
		Text:            hexColor(t.Text, slidedeck.DefaultTextColor),
	}
}

func metadataFrom(cfg *config.Config) slidedeck.Metadata {
	return slidedeck.Metadata{
		Title:        orDefault(cfg.Deck.Title, slidedeck.DefaultTitle),
		Author:       cfg.Deck.Author,
		Company:      cfg.Deck.Company,
		PDFFilename:  orDefault(cfg.Output.PDF, slidedeck.DefaultPDFFilename),
		PPTXFilename: orDefault(cfg.Output.PPTX, slidedeck.DefaultPPTXFilename),
	}
}

// rasterFrom fills unset raster fields with the defaults.
func rasterFrom(cfg *config.Config) slidedeck.RasterSpec {
	spec := slidedeck.DefaultRasterSpec()
	r := cfg.Raster
	if r.Width > 0 {
		spec.Width = r.Width
	}
	if r.Height > 0 {
		spec.Height = r.Height
	}
	if r.Scale > 0 {
		spec.Scale = r.Scale
	}
	if r.Quality > 0 {
		spec.Quality = r.Quality
	}
	spec.Background = hexColor(r.Background, spec.Background)
	return spec
}

func exportOptions(cfg *config.Config, logger *zap.Logger) []slidedeck.Option {
	return []slidedeck.Option{
		slidedeck.WithRasterSpec(rasterFrom(cfg)),
		slidedeck.WithSettleDelay(cfg.Timing.SettleDelay),
		slidedeck.WithSuccessLinger(cfg.Timing.SuccessLinger),
		slidedeck.WithLogger(logger),
	}
}

// assemblersFor returns the assemblers for "pdf", "pptx" (or "deck"),
// or both for "all" and "".
func assemblersFor(kind string, cfg *config.Config) ([]slidedeck.Assembler, error) {
	meta := metadataFrom(cfg)
	pdf := slidedeck.NewPDFAssembler(meta, rasterFrom(cfg))
	pptx := slidedeck.NewPPTXAssembler(meta, themeFrom(cfg).SlideBackground)
	if kind == "" || strings.EqualFold(kind, "all") {
		return []slidedeck.Assembler{pdf, pptx}, nil
	}
	k, err := slidedeck.ParseExportKind(kind)
	if err != nil {
		return nil, err
	}
	if k == slidedeck.KindPPTX {
		return []slidedeck.Assembler{pptx}, nil
	}
	return []slidedeck.Assembler{pdf}, nil
}

func newBuilder(cfg *config.Config, logger *zap.Logger) (*slidedeck.Builder, error) {
	loader, err := assets.NewAssetResolver(cfg.Theme.AssetPath)
	if err != nil {
		return nil, err
	}
	return slidedeck.NewBuilder(
		slidedeck.WithAssetLoader(loader),
		slidedeck.WithStyle(orDefault(cfg.Theme.Style, assets.DefaultStyleName)),
		slidedeck.WithTheme(themeFrom(cfg)),
		slidedeck.WithMetadata(metadataFrom(cfg)),
		slidedeck.WithSlideNumbers(cfg.Deck.SlideNumbers),
		slidedeck.WithBuilderLogger(logger),
	), nil
}

// buildDeck assembles the configured source. exports renders the
// download buttons, for served decks.
func buildDeck(ctx context.Context, cfg *config.Config, exports bool, logger *zap.Logger) (*slidedeck.Deck, error) {
	b, err := newBuilder(cfg, logger)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, slidedeck.Source{Path: cfg.Deck.Source, Exports: exports})
}

// hintFor returns a suggestion to append to err, or "".
func hintFor(err error, env *Environment) string {
	switch {
	case errors.Is(err, slidedeck.ErrBrowserConnect):
		return hints.ForBrowserConnect(env.Getenv)
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths(defaultConfigName))
	case errors.Is(err, slidedeck.ErrExportRunning):
		return hints.ForExportRunning()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{assets.DefaultStyleName})
	case errors.Is(err, slidedeck.ErrNoSlides),
		errors.Is(err, pipeline.ErrUnsupportedSource),
		errors.Is(err, pipeline.ErrSourceRead):
		return hints.ForSlideSource()
	case errors.Is(err, slidedeck.ErrSave):
		return hints.ForOutputDirectory()
	}
	return ""
}
