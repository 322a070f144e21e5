package pipeline

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestSplitSlides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single slide",
			input: "# Title\n\nBody",
			want:  []string{"# Title\n\nBody"},
		},
		{
			name:  "three slides",
			input: "# One\n---\n# Two\n---\n# Three",
			want:  []string{"# One", "# Two", "# Three"},
		},
		{
			name:  "leading and trailing separators",
			input: "---\n# One\n---\n\n---\n",
			want:  []string{"# One"},
		},
		{
			name:  "crlf line endings",
			input: "# One\r\n---\r\n# Two\r\n",
			want:  []string{"# One", "# Two"},
		},
		{
			name:  "separator with surrounding spaces",
			input: "# One\n  ---  \n# Two",
			want:  []string{"# One", "# Two"},
		},
		{
			name:  "separator inside backtick fence",
			input: "# Code\n```yaml\n---\nkey: v\n```\n---\n# Next",
			want:  []string{"# Code\n```yaml\n---\nkey: v\n```", "# Next"},
		},
		{
			name:  "separator inside tilde fence",
			input: "~~~\n---\n~~~",
			want:  []string{"~~~\n---\n~~~"},
		},
		{
			name:  "longer rule is not a separator",
			input: "# One\n----\n# Two",
			want:  []string{"# One\n----\n# Two"},
		},
		{
			name:  "empty input",
			input: "   \n\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitSlides(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSlides(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSlidePreprocessor(t *testing.T) {
	t.Parallel()

	p := &SlidePreprocessor{}
	got := p.PreprocessMarkdown(context.Background(), "a ==hot== b\r\n\n\n\n\nc")
	want := "a " + MarkStartPlaceholder + "hot" + MarkEndPlaceholder + " b\n\nc"
	if got != want {
		t.Errorf("PreprocessMarkdown() = %q, want %q", got, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := p.PreprocessMarkdown(ctx, "==x=="); got != "==x==" {
		t.Errorf("PreprocessMarkdown(cancelled) = %q, want input unchanged", got)
	}
}

func TestConvertMarkPlaceholders(t *testing.T) {
	t.Parallel()

	in := "<p>" + MarkStartPlaceholder + "key" + MarkEndPlaceholder + "</p>"
	got := ConvertMarkPlaceholders(in)
	if got != `<p><span class="highlight">key</span></p>` {
		t.Errorf("ConvertMarkPlaceholders() = %q", got)
	}
	if strings.ContainsAny(got, MarkStartPlaceholder+MarkEndPlaceholder) {
		t.Error("placeholders left in output")
	}
}

// ---------------------------------------------------------------------------
// Goldmark
// ---------------------------------------------------------------------------

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawHTML  bool
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "heading and list",
			input:    "## Agenda\n\n- one\n- two",
			contains: []string{"<h2", "Agenda</h2>", "<li>one</li>"},
		},
		{
			name:     "highlight",
			input:    "Save ==40%== on costs",
			contains: []string{`<span class="highlight">40%</span>`},
		},
		{
			name:     "table",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "raw html passes when enabled",
			rawHTML:  true,
			input:    `<div class="card">x</div>`,
			contains: []string{`<div class="card">x</div>`},
		},
		{
			name:     "raw html omitted by default",
			input:    `<div class="card">x</div>`,
			excludes: []string{`<div class="card">`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NewGoldmarkConverter(tt.rawHTML).ToHTML(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ToHTML() = %q, missing %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("ToHTML() = %q, should not contain %q", got, bad)
				}
			}
		})
	}
}

func TestGoldmarkConverter_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewGoldmarkConverter(false).ToHTML(ctx, "# x"); err == nil {
		t.Error("ToHTML(cancelled) error = nil, want context error")
	}
}
