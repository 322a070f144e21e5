package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sentinel errors for document rendering.
var (
	ErrTemplateParse  = errors.New("deck template parse failed")
	ErrTemplateRender = errors.New("deck template rendering failed")
)

// ThemeColors are the CSS custom properties the deck style reads.
// Values must already be validated hex colors.
type ThemeColors struct {
	PageBackground  string
	SlideBackground string
	SlideGradientTo string
	Accent          string
	Text            string
}

// ControlLabels are the initial button labels.
type ControlLabels struct {
	Prev, PDF, PPTX, Next string
}

// DocumentData is everything the deck template renders.
type DocumentData struct {
	Title        string
	Lang         string
	Theme        ThemeColors
	CSS          string
	Script       string
	Slides       []string
	SlideNumbers bool
	Exports      bool // render the download buttons
	Labels       ControlLabels
}

// templateData is DocumentData with trusted content marked safe for
// html/template. Slide markup is author content, not user input.
type templateData struct {
	Title        string
	Lang         string
	Theme        themeCSS
	CSS          template.CSS
	Script       template.JS
	Slides       []template.HTML
	SlideNumbers bool
	Exports      bool
	Labels       ControlLabels
}

type themeCSS struct {
	PageBackground  template.CSS
	SlideBackground template.CSS
	SlideGradientTo template.CSS
	Accent          template.CSS
	Text            template.CSS
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// DocumentRenderer renders assembled decks from a template.
type DocumentRenderer struct {
	tmpl *template.Template
}

// NewDocumentRenderer parses the deck template.
func NewDocumentRenderer(tmplContent string) (*DocumentRenderer, error) {
	tmpl, err := template.New("deck").Funcs(templateFuncs).Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateParse, err)
	}
	return &DocumentRenderer{tmpl: tmpl}, nil
}

// Render produces the complete HTML document.
func (r *DocumentRenderer) Render(data DocumentData) (string, error) {
	lang := data.Lang
	if lang == "" {
		lang = "en"
	}
	slides := make([]template.HTML, len(data.Slides))
	for i, s := range data.Slides {
		slides[i] = template.HTML(s) // #nosec G203 -- deck author content
	}
	td := templateData{
		Title: data.Title,
		Lang:  lang,
		Theme: themeCSS{
			PageBackground:  cssColor(data.Theme.PageBackground),
			SlideBackground: cssColor(data.Theme.SlideBackground),
			SlideGradientTo: cssColor(data.Theme.SlideGradientTo),
			Accent:          cssColor(data.Theme.Accent),
			Text:            cssColor(data.Theme.Text),
		},
		CSS:          template.CSS(sanitizeCSS(data.CSS)),      // #nosec G203 -- embedded or user style
		Script:       template.JS(sanitizeScript(data.Script)), // #nosec G203 -- embedded or user script
		Slides:       slides,
		SlideNumbers: data.SlideNumbers,
		Exports:      data.Exports,
		Labels:       data.Labels,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, td); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return buf.String(), nil
}

// cssColor normalizes a hex color to "#rrggbb".
func cssColor(s string) template.CSS {
	s = strings.TrimSpace(s)
	if s != "" && !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	return template.CSS(s) // #nosec G203 -- validated hex color
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// sanitizeScript escapes sequences that could break out of a <script> block.
func sanitizeScript(js string) string {
	return strings.ReplaceAll(js, "</script", `<\/script`)
}

// CountSlides returns the number of .slide elements in an assembled document.
func CountSlides(document string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSlideExtract, err)
	}
	return doc.Find(".presentation > .slide").Length(), nil
}

// SlideText is the plain-text view of one slide.
type SlideText struct {
	Title string
	Lines []string
}

// ExtractSlideText returns a plain-text view of every slide in an assembled
// document: the first heading as title and each remaining block as a line.
func ExtractSlideText(document string) ([]SlideText, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlideExtract, err)
	}

	var out []SlideText
	doc.Find(".presentation > .slide").Each(func(_ int, s *goquery.Selection) {
		s.Find(".slide-number").Remove()
		var st SlideText
		heading := s.Find("h1, h2, h3").First()
		if heading.Length() > 0 {
			st.Title = collapseSpace(heading.Text())
			heading.Remove()
		}
		s.Find("p, li, h3, h4, pre, td, .metric-value, .metric-label").Each(func(_ int, b *goquery.Selection) {
			// Skip containers whose text is already reported by a nested block.
			if b.Find("p, li").Length() > 0 {
				return
			}
			if text := collapseSpace(b.Text()); text != "" {
				st.Lines = append(st.Lines, text)
			}
		})
		out = append(out, st)
	})
	return out, nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
