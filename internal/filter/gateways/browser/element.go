package browser

import (
	"fmt"

	"github.com/go-rod/rod"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Element wraps a live DOM element.
type Element struct {
	el *rod.Element
}

var _ domain.Element = (*Element)(nil)

func (e *Element) eval(js string, args ...any) (string, error) {
	res, err := e.el.Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *Element) call(js string, args ...any) error {
	_, err := e.el.Eval(js, args...)
	return err
}

func (e *Element) Query(selector string) (domain.Element, bool) {
	ok, child, err := e.el.Has(selector)
	if err != nil || !ok {
		return nil, false
	}
	return &Element{el: child}, true
}

func (e *Element) Text() string {
	s, _ := e.eval(`() => (this.textContent || "").trim()`)
	return s
}

func (e *Element) Attr(name string) (string, bool) {
	v, err := e.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (e *Element) SetAttr(name, value string) error {
	return e.call(`(n, v) => this.setAttribute(n, v)`, name, value)
}

func (e *Element) RemoveAttr(name string) error {
	return e.call(`(n) => this.removeAttribute(n)`, name)
}

func (e *Element) HasClass(name string) bool {
	res, err := e.el.Eval(`(c) => this.classList.contains(c)`, name)
	return err == nil && res.Value.Bool()
}

func (e *Element) AddClass(name string) error {
	return e.call(`(c) => this.classList.add(c)`, name)
}

func (e *Element) RemoveClass(name string) error {
	return e.call(`(c) => this.classList.remove(c)`, name)
}

func (e *Element) Style(property string) string {
	s, _ := e.eval(`(p) => this.style.getPropertyValue(p)`, property)
	return s
}

func (e *Element) SetStyle(property, value string) error {
	return e.call(`(p, v) => v === "" ? this.style.removeProperty(p) : this.style.setProperty(p, v)`, property, value)
}

func (e *Element) InnerHTML() (string, error) {
	return e.eval(`() => this.innerHTML`)
}

func (e *Element) SetInnerHTML(markup string) error {
	return e.call(`(m) => { this.innerHTML = m }`, markup)
}

func (e *Element) AppendHTML(markup string) error {
	return e.call(`(m) => this.insertAdjacentHTML("beforeend", m)`, markup)
}

func (e *Element) Remove() error {
	if err := e.el.Remove(); err != nil {
		return fmt.Errorf("remove element: %w", err)
	}
	return nil
}

func (e *Element) Height() int {
	res, err := e.el.Eval(`() => this.offsetHeight`)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}
