package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter converts one slide of Markdown to an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to HTML using goldmark.
type GoldmarkConverter struct {
	md  goldmark.Markdown
	pre MarkdownPreprocessor
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, footnotes and
// chroma highlighting. With rawHTML set, inline HTML in slides (layout divs
// such as .two-column or .card) is passed through.
func NewGoldmarkConverter(rawHTML bool) *GoldmarkConverter {
	rendererOpts := []goldmark.Option{}
	if rawHTML {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(html.WithUnsafe()))
	}

	opts := append([]goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithStyle("monokai"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	}, rendererOpts...)

	return &GoldmarkConverter{md: goldmark.New(opts...), pre: &SlidePreprocessor{}}
}

// ToHTML converts one slide of Markdown to an HTML fragment.
// Goldmark has no context support, so conversion runs in a goroutine and
// the call returns early on cancellation.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		src := c.pre.PreprocessMarkdown(ctx, content)
		if err := c.md.Convert([]byte(src), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: ConvertMarkPlaceholders(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Compile-time interface check.
var _ HTMLConverter = (*GoldmarkConverter)(nil)
