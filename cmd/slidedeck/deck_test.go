package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	slidedeck "github.com/alnah/go-slidedeck"
	"github.com/alnah/go-slidedeck/internal/assets"
	"github.com/alnah/go-slidedeck/internal/config"
	"github.com/alnah/go-slidedeck/internal/pipeline"
)

func TestRasterFrom(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Raster = config.RasterConfig{Width: 640, Background: "102030"}
	got := rasterFrom(cfg)

	want := slidedeck.DefaultRasterSpec()
	want.Width = 640
	want.Background = "#102030"
	if got != want {
		t.Errorf("rasterFrom() = %+v, want %+v", got, want)
	}
}

func TestThemeFrom(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Theme.Accent = "00ff00"
	cfg.Theme.Text = ""
	got := themeFrom(cfg)

	if got.Accent != "#00ff00" {
		t.Errorf("Accent = %q, want #00ff00", got.Accent)
	}
	if got.Text != slidedeck.DefaultTextColor {
		t.Errorf("Text = %q, want default", got.Text)
	}
	if got.SlideBackground != "#800020" {
		t.Errorf("SlideBackground = %q", got.SlideBackground)
	}
}

func TestMetadataFrom(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Deck.Title = ""
	cfg.Output.PDF = "q3.pdf"
	cfg.Output.PPTX = ""
	got := metadataFrom(cfg)

	if got.Title != slidedeck.DefaultTitle {
		t.Errorf("Title = %q, want default", got.Title)
	}
	if got.Filename(slidedeck.KindPDF) != "q3.pdf" {
		t.Errorf("PDF filename = %q", got.Filename(slidedeck.KindPDF))
	}
	if got.Filename(slidedeck.KindPPTX) != slidedeck.DefaultPPTXFilename {
		t.Errorf("PPTX filename = %q", got.Filename(slidedeck.KindPPTX))
	}
}

func TestAssemblersFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind    string
		want    []slidedeck.ExportKind
		wantErr error
	}{
		{"", []slidedeck.ExportKind{slidedeck.KindPDF, slidedeck.KindPPTX}, nil},
		{"ALL", []slidedeck.ExportKind{slidedeck.KindPDF, slidedeck.KindPPTX}, nil},
		{"pdf", []slidedeck.ExportKind{slidedeck.KindPDF}, nil},
		{"pptx", []slidedeck.ExportKind{slidedeck.KindPPTX}, nil},
		{"deck", []slidedeck.ExportKind{slidedeck.KindPPTX}, nil},
		{"png", nil, slidedeck.ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run("kind "+tt.kind, func(t *testing.T) {
			t.Parallel()

			got, err := assemblersFor(tt.kind, config.DefaultConfig())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("assemblersFor(%q) error = %v, want %v", tt.kind, err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("assemblersFor(%q) returned %d assemblers, want %d", tt.kind, len(got), len(tt.want))
			}
			for i, a := range got {
				if a.Kind() != tt.want[i] {
					t.Errorf("assembler %d kind = %s, want %s", i, a.Kind(), tt.want[i])
				}
			}
		})
	}
}

func TestResolveTimeout(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Timing.Timeout = 45 * time.Second

	tests := []struct {
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{"", 45 * time.Second, false},
		{"3m", 3 * time.Minute, false},
		{"0s", 0, true},
		{"-1s", 0, true},
		{"later", 0, true},
	}

	for _, tt := range tests {
		got, err := resolveTimeout(tt.flag, cfg)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveTimeout(%q) error = %v, wantErr %v", tt.flag, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errUsage) {
			t.Errorf("resolveTimeout(%q) error = %v, want usage error", tt.flag, err)
		}
		if got != tt.want {
			t.Errorf("resolveTimeout(%q) = %v, want %v", tt.flag, got, tt.want)
		}
	}
}

func TestPrepareConfig(t *testing.T) {
	t.Parallel()

	t.Run("flags over env", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		err := prepareConfig(cfg,
			&envConfig{Title: "Env", OutputDir: "env-out"},
			deckFlags{title: "Flag", noNumbers: true},
			"talk.md")
		if err != nil {
			t.Fatalf("prepareConfig() error = %v", err)
		}
		if cfg.Deck.Title != "Flag" || cfg.Output.Dir != "env-out" || cfg.Deck.Source != "talk.md" || cfg.Deck.SlideNumbers {
			t.Errorf("config = %+v", cfg.Deck)
		}
	})

	t.Run("invalid result", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Theme.Accent = "gold"
		if err := prepareConfig(cfg, &envConfig{}, deckFlags{}, ""); !errors.Is(err, config.ErrConfigInvalid) {
			t.Errorf("prepareConfig() error = %v, want ErrConfigInvalid", err)
		}
	})
}

func TestHintFor(t *testing.T) {
	t.Parallel()

	env := newTestEnv(map[string]string{"ROD_BROWSER_BIN": "/usr/bin/chromium"}, nil).env
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"browser", fmt.Errorf("%w: %w", slidedeck.ErrExportFailed, slidedeck.ErrBrowserConnect), "slidedeck doctor"},
		{"config", config.ErrConfigNotFound, "slidedeck init"},
		{"running", slidedeck.ErrExportRunning, "one export runs at a time"},
		{"timeout", fmt.Errorf("%w: %w", slidedeck.ErrExportFailed, context.DeadlineExceeded), "--timeout"},
		{"style", assets.ErrStyleNotFound, "burgundy"},
		{"source", pipeline.ErrUnsupportedSource, ".md"},
		{"no slides", slidedeck.ErrNoSlides, ".md"},
		{"save", slidedeck.ErrSave, "writable"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := hintFor(tt.err, env)
			if tt.want == "" {
				if got != "" {
					t.Errorf("hintFor() = %q, want none", got)
				}
				return
			}
			if !strings.HasPrefix(got, "\n  hint: ") || !strings.Contains(got, tt.want) {
				t.Errorf("hintFor() = %q, want hint containing %q", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		flags     commonFlags
		wantDebug bool
		wantInfo  bool
	}{
		{"default", commonFlags{}, false, true},
		{"verbose", commonFlags{verbose: true}, true, true},
		{"quiet", commonFlags{quiet: true}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf strings.Builder
			logger := newLogger(&buf, tt.flags)
			logger.Debug("debug line")
			logger.Info("info line")
			logger.Error("error line")
			out := buf.String()

			if strings.Contains(out, "debug line") != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", !tt.wantDebug, tt.wantDebug)
			}
			if strings.Contains(out, "info line") != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", !tt.wantInfo, tt.wantInfo)
			}
			if !strings.Contains(out, "error line") {
				t.Error("error not logged")
			}
		})
	}
}
