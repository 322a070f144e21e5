package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-slidedeck/internal/assets"
)

func newTestRenderer(t *testing.T) *DocumentRenderer {
	t.Helper()
	tmpl, err := assets.LoadTemplate(assets.DefaultTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	r, err := NewDocumentRenderer(tmpl)
	if err != nil {
		t.Fatalf("NewDocumentRenderer() error = %v", err)
	}
	return r
}

func testData(n int) DocumentData {
	slides := make([]string, n)
	for i := range slides {
		slides[i] = "<h2>Slide</h2><p>body</p>"
	}
	return DocumentData{
		Title: "Salvage Management System",
		Theme: ThemeColors{
			PageBackground:  "#3d0814",
			SlideBackground: "800020",
			SlideGradientTo: "#5c0011",
			Accent:          "#FFD700",
			Text:            "#FFFFFF",
		},
		CSS:          ".slide { color: red; }",
		Script:       "var x = 1;",
		Slides:       slides,
		SlideNumbers: true,
		Labels:       ControlLabels{Prev: "← Previous", PDF: "📥 Download PDF", PPTX: "📊 Download PPTX", Next: "Next →"},
	}
}

func TestDocumentRenderer_Render(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t)
	doc, err := r.Render(testData(3))
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		`<html lang="en">`,
		"<title>Salvage Management System</title>",
		"--slide-bg: #800020;",
		".slide { color: red; }",
		"var x = 1;",
		`class="slide active" data-index="0"`,
		`data-index="2"`,
		`3 / 3`,
		`id="prevBtn"`,
		`id="nextBtn"`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
	if strings.Contains(doc, "downloadPdfBtn") {
		t.Error("Render() without Exports should not render download buttons")
	}

	n, err := CountSlides(doc)
	if err != nil {
		t.Fatalf("CountSlides() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountSlides() = %d, want 3", n)
	}
}

func TestDocumentRenderer_Exports(t *testing.T) {
	t.Parallel()

	data := testData(1)
	data.Exports = true
	data.SlideNumbers = false

	doc, err := newTestRenderer(t).Render(data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	for _, want := range []string{`id="downloadPdfBtn"`, `data-kind="pptx"`} {
		if !strings.Contains(doc, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
	if strings.Contains(doc, "slide-number") && strings.Contains(doc, "1 / 1") {
		t.Error("Render() with SlideNumbers=false rendered a badge")
	}
}

func TestDocumentRenderer_StyleBreakout(t *testing.T) {
	t.Parallel()

	data := testData(1)
	data.CSS = "body{}</style><script>alert(1)</script>"

	doc, err := newTestRenderer(t).Render(data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(doc, "</style><script>alert(1)") {
		t.Error("Render() let CSS close the style block")
	}
}

func TestDocumentRenderer_EscapesTitle(t *testing.T) {
	t.Parallel()

	data := testData(1)
	data.Title = "<b>Deck</b>"
	doc, err := newTestRenderer(t).Render(data)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(doc, "<title><b>") {
		t.Error("Render() did not escape title")
	}
}

func TestNewDocumentRenderer_ParseError(t *testing.T) {
	t.Parallel()

	if _, err := NewDocumentRenderer("{{ .Broken "); !errors.Is(err, ErrTemplateParse) {
		t.Errorf("NewDocumentRenderer() error = %v, want ErrTemplateParse", err)
	}
}

func TestExtractSlideText(t *testing.T) {
	t.Parallel()

	doc := `<div class="presentation">
<section class="slide active" data-index="0"><div class="slide-number">1 / 2</div><h1>Welcome</h1><p>Salvage   made
simple</p></section>
<section class="slide" data-index="1"><h2>Plan</h2><ul><li>Collect</li><li><p>Sell</p></li></ul></section>
</div>`

	got, err := ExtractSlideText(doc)
	if err != nil {
		t.Fatalf("ExtractSlideText() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ExtractSlideText() = %d slides, want 2", len(got))
	}
	if got[0].Title != "Welcome" {
		t.Errorf("slide 0 title = %q, want Welcome", got[0].Title)
	}
	if len(got[0].Lines) != 1 || got[0].Lines[0] != "Salvage made simple" {
		t.Errorf("slide 0 lines = %q", got[0].Lines)
	}
	if want := []string{"Collect", "Sell"}; strings.Join(got[1].Lines, "|") != strings.Join(want, "|") {
		t.Errorf("slide 1 lines = %q, want %q", got[1].Lines, want)
	}
}
