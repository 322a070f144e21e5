package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-slidedeck/internal/fileutil"
)

// rewritable lists the attributes that may carry local file references.
var rewritable = map[atom.Atom]string{
	atom.Img:    "src",
	atom.A:      "href",
	atom.Source: "src",
	atom.Video:  "poster",
}

// RewriteRelativePaths turns relative file references in a slide fragment
// into absolute file:// URLs under sourceDir. The deck is opened from a temp
// file, so paths relative to the slide source would otherwise break.
// URLs, anchors, absolute paths and paths escaping sourceDir are left alone.
func RewriteRelativePaths(fragment, sourceDir string) (string, error) {
	if sourceDir == "" {
		return fragment, nil
	}
	absDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), body)
	if err != nil {
		return "", err
	}

	changed := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key, ok := rewritable[n.DataAtom]; ok && rewriteAttr(n, key, absDir) {
				changed = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	if !changed {
		return fragment, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteAttr(n *html.Node, key, dir string) bool {
	for i, attr := range n.Attr {
		if attr.Key != key || !isRelativePath(attr.Val) {
			continue
		}
		abs := filepath.Join(dir, attr.Val)
		if !isPathUnderDir(abs, dir) {
			continue
		}
		n.Attr[i].Val = fileutil.FileURL(abs)
		return true
	}
	return false
}

func isRelativePath(p string) bool {
	if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") {
		return false
	}
	if u, err := url.Parse(p); err == nil && u.Scheme != "" {
		return false
	}
	return !filepath.IsAbs(p)
}

func isPathUnderDir(p, dir string) bool {
	rel, err := filepath.Rel(dir, filepath.Clean(p))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

