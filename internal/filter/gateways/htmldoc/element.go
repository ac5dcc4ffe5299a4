package htmldoc

import (
	"bytes"
	"errors"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

var errDetached = errors.New("htmldoc: element is detached")

// Element is a node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

func (e *Element) Query(selector string) (domain.Element, bool) {
	sel, err := compile(selector)
	if err != nil {
		return nil, false
	}
	e.doc.mu.Lock()
	n := cascadia.Query(e.node, sel)
	e.doc.mu.Unlock()
	if n == nil {
		return nil, false
	}
	return &Element{doc: e.doc, node: n}, true
}

func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return strings.TrimSpace(b.String())
}

func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return lookupAttr(e.node, name)
}

func (e *Element) SetAttr(name, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, name, value)
	return nil
}

func (e *Element) RemoveAttr(name string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	removeAttr(e.node, name)
	return nil
}

func (e *Element) HasClass(name string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return hasClass(e.node, name)
}

func (e *Element) AddClass(name string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if hasClass(e.node, name) {
		return nil
	}
	classes := append(strings.Fields(getAttr(e.node, "class")), name)
	setAttr(e.node, "class", strings.Join(classes, " "))
	return nil
}

func (e *Element) RemoveClass(name string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	fields := strings.Fields(getAttr(e.node, "class"))
	out := fields[:0]
	for _, c := range fields {
		if c != name {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		removeAttr(e.node, "class")
		return nil
	}
	setAttr(e.node, "class", strings.Join(out, " "))
	return nil
}

func (e *Element) Style(prop string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return property(getAttr(e.node, "style"), prop)
}

func (e *Element) SetStyle(prop, value string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	style := withProperty(getAttr(e.node, "style"), prop, value)
	if style == "" {
		removeAttr(e.node, "style")
		return nil
	}
	setAttr(e.node, "style", style)
	return nil
}

func (e *Element) InnerHTML() (string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Element) SetInnerHTML(markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return err
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) AppendHTML(markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return err
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) Remove() error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.node.Parent == nil {
		return errDetached
	}
	e.node.Parent.RemoveChild(e.node)
	return nil
}

// Height has no layout to consult; it reads an explicit pixel height from
// the inline style or the height attribute.
func (e *Element) Height() int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	for _, raw := range []string{property(getAttr(e.node, "style"), "height"), getAttr(e.node, "height")} {
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "px")
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

var _ domain.Element = (*Element)(nil)
