package slidedeck

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// ---------------------------------------------------------------------------
// TestBuilder_Build - Assembling decks
// ---------------------------------------------------------------------------

func TestBuilder_Build_InlineSlides(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	b := NewBuilder(WithBuilderLogger(zap.New(core)))

	deck, err := b.Build(context.Background(), Source{Slides: []string{
		"<h1>Welcome</h1><p>Salvage made simple</p>",
		"<h2>Problem</h2><ul><li>Slow</li><li>Manual</li></ul>",
		"<h2>Thanks</h2>",
	}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if deck.Slides != 3 {
		t.Errorf("Slides = %d, want 3", deck.Slides)
	}
	if deck.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", deck.Title, DefaultTitle)
	}
	if n := strings.Count(deck.HTML, `class="slide active"`); n != 1 {
		t.Errorf("%d active slides, want 1", n)
	}
	for _, want := range []string{`id="prevBtn"`, `id="nextBtn"`, `class="slide-number">1 / 3<`, "--slide-bg: #800020", "window.slidedeck"} {
		if !strings.Contains(deck.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(deck.HTML, "downloadPdfBtn") {
		t.Error("export buttons rendered without Exports")
	}
	if logs.FilterMessage("deck assembled").Len() != 1 {
		t.Error("assembly not logged")
	}

	text, err := deck.Text()
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if len(text) != 3 || text[0].Title != "Welcome" || text[1].Title != "Problem" {
		t.Fatalf("Text() = %+v", text)
	}
	if got := strings.Join(text[1].Lines, "|"); got != "Slow|Manual" {
		t.Errorf("slide 2 lines = %q, want Slow|Manual", got)
	}
}

func TestBuilder_Build_Options(t *testing.T) {
	t.Parallel()

	theme := DefaultTheme()
	theme.Accent = "#00AAFF"
	meta := DefaultMetadata()
	meta.Title = "Quarterly Review"

	b := NewBuilder(WithTheme(theme), WithMetadata(meta), WithSlideNumbers(false), WithLang("fr"))
	deck, err := b.Build(context.Background(), Source{Slides: []string{"<p>a</p>", "<p>b</p>"}, Exports: true})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, want := range []string{`<html lang="fr">`, "<title>Quarterly Review</title>", "--accent: #00AAFF", `id="downloadPdfBtn"`, `id="downloadPptxBtn"`} {
		if !strings.Contains(deck.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if strings.Contains(deck.HTML, `class="slide-number"`) {
		t.Error("slide numbers rendered when disabled")
	}
	if b.Metadata().Title != "Quarterly Review" {
		t.Errorf("Metadata().Title = %q", b.Metadata().Title)
	}
}

func TestBuilder_Build_MarkdownFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "slides.md")
	md := "# Intro\n\nHello ==world==\n\n---\n\n## Details\n\n```go\n---\n```\n\n---\n\n## End\n"
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	deck, err := NewBuilder().Build(context.Background(), Source{Path: path})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if deck.Slides != 3 {
		t.Errorf("Slides = %d, want 3 (fenced --- is not a separator)", deck.Slides)
	}
	if !strings.Contains(deck.HTML, `<span class="highlight">world</span>`) {
		t.Error("==mark== not converted to highlight span")
	}
}

func TestBuilder_Build_StyleFile(t *testing.T) {
	t.Parallel()

	css := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(css, []byte(".slide { color: teal; }"), 0o644); err != nil {
		t.Fatal(err)
	}

	deck, err := NewBuilder(WithStyle(css)).Build(context.Background(), Source{Slides: []string{"<p>x</p>"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(deck.HTML, "color: teal") {
		t.Error("custom style not embedded")
	}
}

func TestBuilder_Build_Errors(t *testing.T) {
	t.Parallel()

	badTheme := DefaultTheme()
	badTheme.Text = "white"

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		opts    []BuilderOption
		src     Source
		wantErr error
	}{
		{"no slides", context.Background(), nil, Source{}, ErrNoSlides},
		{"bad theme", context.Background(), []BuilderOption{WithTheme(badTheme)}, Source{Slides: []string{"x"}}, ErrInvalidColor},
		{"unknown style", context.Background(), []BuilderOption{WithStyle("neon")}, Source{Slides: []string{"x"}}, ErrAssembly},
		{"missing style file", context.Background(), []BuilderOption{WithStyle("./nope.css")}, Source{Slides: []string{"x"}}, ErrAssembly},
		{"unbalanced markup", context.Background(), nil, Source{Slides: []string{"a", `</section><section class="slide">b`, "c"}}, ErrAssembly},
		{"cancelled", cancelled, nil, Source{Slides: []string{"x"}}, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewBuilder(tt.opts...).Build(tt.ctx, tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Build() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
