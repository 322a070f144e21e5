package pipeline

import (
	"context"
	"regexp"
	"strings"
)

// Highlight placeholders use Unicode Private Use Area characters.
// They pass through Goldmark unchanged and are converted to
// <span class="highlight"> after rendering.
const (
	MarkStartPlaceholder = "\uE000"
	MarkEndPlaceholder   = "\uE001"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)
)

// MarkdownPreprocessor defines the contract for markdown preprocessing.
type MarkdownPreprocessor interface {
	PreprocessMarkdown(ctx context.Context, content string) string
}

// SlidePreprocessor prepares one slide of Markdown for conversion.
type SlidePreprocessor struct{}

// PreprocessMarkdown normalizes line endings, converts ==text== highlights
// and compresses runs of blank lines.
func (p *SlidePreprocessor) PreprocessMarkdown(ctx context.Context, content string) string {
	if ctx.Err() != nil {
		return content
	}
	content = normalizeLineEndings(content)
	content = convertHighlights(content)
	content = compressBlankLines(content)
	return content
}

func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

func compressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

func convertHighlights(content string) string {
	return highlightPattern.ReplaceAllString(content, MarkStartPlaceholder+"$1"+MarkEndPlaceholder)
}

// ConvertMarkPlaceholders turns highlight placeholders into the theme's
// highlight spans.
func ConvertMarkPlaceholders(content string) string {
	return strings.ReplaceAll(
		strings.ReplaceAll(content, MarkStartPlaceholder, `<span class="highlight">`),
		MarkEndPlaceholder, "</span>",
	)
}

// SplitSlides splits a Markdown deck on separator lines consisting of "---".
// Separators inside fenced code blocks are ignored. Blank chunks are dropped,
// so leading or trailing separators do not produce empty slides.
func SplitSlides(content string) []string {
	lines := strings.Split(normalizeLineEndings(content), "\n")

	var (
		slides []string
		cur    []string
		fence  string
	)
	flush := func() {
		chunk := strings.TrimSpace(strings.Join(cur, "\n"))
		if chunk != "" {
			slides = append(slides, chunk)
		}
		cur = cur[:0]
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case fence != "":
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
		case strings.HasPrefix(trimmed, "```"):
			fence = "```"
		case strings.HasPrefix(trimmed, "~~~"):
			fence = "~~~"
		case trimmed == "---":
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()
	return slides
}
