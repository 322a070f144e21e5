package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sentinel errors for slide loading.
var (
	ErrUnsupportedSource = errors.New("unsupported slide source")
	ErrSourceRead        = errors.New("failed to read slide source")
	ErrSlideExtract      = errors.New("failed to extract slides")
)

// Slide is one slide's inner markup.
type Slide struct {
	HTML   string
	Source string // file the slide came from
}

// SlideLoader reads slides from Markdown, HTML, or a directory of both.
type SlideLoader struct {
	Converter HTMLConverter
}

// NewSlideLoader creates a SlideLoader. A nil converter gets a Goldmark
// converter with raw HTML enabled.
func NewSlideLoader(conv HTMLConverter) *SlideLoader {
	if conv == nil {
		conv = NewGoldmarkConverter(true)
	}
	return &SlideLoader{Converter: conv}
}

// Load reads every slide under path in order.
// Relative image and link paths are rewritten against each file's directory.
func (l *SlideLoader) Load(ctx context.Context, path string) ([]Slide, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	if !info.IsDir() {
		return l.loadFile(ctx, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && sourceKind(e.Name()) != "" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var slides []Slide
	for _, name := range names {
		s, err := l.loadFile(ctx, filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		slides = append(slides, s...)
	}
	return slides, nil
}

func (l *SlideLoader) loadFile(ctx context.Context, path string) ([]Slide, error) {
	kind := sourceKind(path)
	if kind == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- slide source is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRead, err)
	}

	var fragments []string
	switch kind {
	case "md":
		for _, chunk := range SplitSlides(string(data)) {
			frag, err := l.Converter.ToHTML(ctx, chunk)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			fragments = append(fragments, frag)
		}
	case "html":
		fragments, err = ExtractSlides(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	dir := filepath.Dir(path)
	slides := make([]Slide, 0, len(fragments))
	for _, frag := range fragments {
		rewritten, err := RewriteRelativePaths(frag, dir)
		if err != nil {
			return nil, fmt.Errorf("%w: rewriting paths in %s: %v", ErrSlideExtract, path, err)
		}
		slides = append(slides, Slide{HTML: rewritten, Source: path})
	}
	return slides, nil
}

func sourceKind(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "md"
	case ".html", ".htm":
		return "html"
	}
	return ""
}

// ExtractSlides returns the inner markup of every .slide element, in document
// order. Existing .slide-number badges are dropped since the deck renders its
// own. A document without .slide elements yields its whole body as one slide.
func ExtractSlides(content string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlideExtract, err)
	}

	sel := doc.Find(".slide")
	if sel.Length() == 0 {
		body, err := doc.Find("body").Html()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSlideExtract, err)
		}
		if strings.TrimSpace(body) == "" {
			return nil, nil
		}
		return []string{strings.TrimSpace(body)}, nil
	}

	var (
		out     []string
		lastErr error
	)
	sel.Each(func(_ int, s *goquery.Selection) {
		s.Find(".slide-number").Remove()
		inner, err := s.Html()
		if err != nil {
			lastErr = err
			return
		}
		out = append(out, strings.TrimSpace(inner))
	})
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSlideExtract, lastErr)
	}
	return out, nil
}
