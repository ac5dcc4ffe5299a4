// Package htmldoc adapts a parsed HTML document to the element and document
// ports, so a scan pass can run over a saved page without a browser.
package htmldoc

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Document is a mutable HTML tree. All access goes through one mutex because
// show-mode verdicts are applied from several goroutines.
type Document struct {
	mu   sync.Mutex
	root *html.Node
	url  string
}

// Parse reads an HTML document. pageURL is reported by Location and decides the page type.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{root: root, url: pageURL}, nil
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(ctx context.Context, selector string) ([]domain.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sel, err := compile(selector)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	nodes := cascadia.QueryAll(d.root, sel)
	d.mu.Unlock()
	out := make([]domain.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{doc: d, node: n}
	}
	return out, nil
}

// Query returns the first element matching selector.
func (d *Document) Query(ctx context.Context, selector string) (domain.Element, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	sel, err := compile(selector)
	if err != nil {
		return nil, false, err
	}
	d.mu.Lock()
	n := cascadia.Query(d.root, sel)
	d.mu.Unlock()
	if n == nil {
		return nil, false, nil
	}
	return &Element{doc: d, node: n}, true, nil
}

// Location returns the URL the document was loaded from.
func (d *Document) Location(context.Context) (string, error) {
	return d.url, nil
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) body() *html.Node {
	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && n.Data == "body" {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if b := find(c); b != nil {
				return b
			}
		}
		return nil
	}
	if b := find(d.root); b != nil {
		return b
	}
	return d.root
}

var _ domain.Document = (*Document)(nil)
