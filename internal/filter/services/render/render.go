// Package render applies decisions to page elements.
//
// Every operation is idempotent: applying the same decision twice leaves the
// element exactly as applying it once did.
package render

import (
	"fmt"
	"html"
	"strconv"

	"go.uber.org/multierr"

	"github.com/haukened/tubefilter/internal/filter/domain"
)

// Markers written onto elements.
const (
	ClassBlocked       = "tubefilter-blocked"
	ClassInterestMatch = "tubefilter-interest-match"
	ClassBadge         = "tubefilter-interest-badge"
	ClassPlaceholder   = "tubefilter-placeholder"

	AttrReason   = "data-tubefilter-reason"
	AttrOriginal = "data-tubefilter-original-content"
	AttrHeight   = "data-tubefilter-original-height"
)

const (
	blurFilter    = "blur(10px)"
	blurOpacity   = "0.5"
	defaultHeight = 100
)

// Apply renders d onto el using style for block-mode suppression.
// An allow decision in block mode restores the element.
func Apply(el domain.Element, d domain.Decision, style domain.DisplayStyle) error {
	if d.Mode == domain.ModeShow {
		if d.Show {
			return showMatch(el, d.MatchedInterest)
		}
		return hide(el, d.Reason())
	}
	if !d.Block {
		return Clear(el)
	}
	switch style {
	case domain.StyleBlur:
		return blur(el, d.Reason())
	case domain.StyleReplace:
		return replace(el, d.Reason())
	default:
		return hide(el, d.Reason())
	}
}

// Clear removes every trace of a previous Apply, restoring replaced content.
func Clear(el domain.Element) error {
	err := multierr.Combine(
		resetSuppression(el),
		restoreContent(el),
		el.RemoveClass(ClassInterestMatch),
		removeBadge(el),
	)
	return err
}

func hide(el domain.Element, reason string) error {
	return multierr.Combine(
		resetSuppression(el),
		restoreContent(el),
		el.SetStyle("display", "none"),
		markBlocked(el, reason),
	)
}

func blur(el domain.Element, reason string) error {
	return multierr.Combine(
		resetSuppression(el),
		restoreContent(el),
		el.SetStyle("filter", blurFilter),
		el.SetStyle("opacity", blurOpacity),
		el.SetAttr("title", "Blocked: "+reason),
		markBlocked(el, reason),
	)
}

func replace(el domain.Element, reason string) error {
	var errs error
	errs = multierr.Append(errs, resetSuppression(el))

	height := defaultHeight
	if _, saved := el.Attr(AttrOriginal); !saved {
		inner, err := el.InnerHTML()
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("snapshot content: %w", err))
		}
		if h := el.Height(); h > 0 {
			height = h
		}
		errs = multierr.Append(errs, el.SetAttr(AttrOriginal, inner))
		errs = multierr.Append(errs, el.SetAttr(AttrHeight, strconv.Itoa(height)))
	} else if raw, ok := el.Attr(AttrHeight); ok {
		if h, err := strconv.Atoi(raw); err == nil && h > 0 {
			height = h
		}
	}
	errs = multierr.Append(errs, el.SetInnerHTML(placeholder(reason, height)))
	errs = multierr.Append(errs, markBlocked(el, reason))
	return errs
}

func placeholder(reason string, height int) string {
	return fmt.Sprintf(
		`<div class="%s" style="height: %dpx; display: flex; align-items: center; justify-content: center; background: #f1f1f1; color: #606060; border-radius: 8px">%s</div>`,
		ClassPlaceholder, height, html.EscapeString(reason),
	)
}

func showMatch(el domain.Element, term string) error {
	errs := multierr.Combine(
		resetSuppression(el),
		restoreContent(el),
		el.AddClass(ClassInterestMatch),
	)
	target := el
	if thumb, ok := el.Query("#thumbnail"); ok {
		target = thumb
	}
	if _, exists := target.Query("." + ClassBadge); exists {
		return errs
	}
	if term == "" {
		term = "interest"
	}
	if target.Style("position") == "" {
		errs = multierr.Append(errs, target.SetStyle("position", "relative"))
	}
	badge := fmt.Sprintf(
		`<div class="%s" style="position: absolute; top: 4px; right: 4px; z-index: 2; background: #065fd4; color: #fff; padding: 2px 6px; border-radius: 4px; font-size: 12px">%s</div>`,
		ClassBadge, html.EscapeString(term),
	)
	return multierr.Append(errs, target.AppendHTML(badge))
}

func markBlocked(el domain.Element, reason string) error {
	return multierr.Combine(
		el.AddClass(ClassBlocked),
		el.SetAttr(AttrReason, reason),
	)
}

// resetSuppression clears the styles and markers any suppression style may have set.
func resetSuppression(el domain.Element) error {
	errs := multierr.Combine(
		el.SetStyle("display", ""),
		el.SetStyle("filter", ""),
		el.SetStyle("opacity", ""),
		el.RemoveClass(ClassBlocked),
	)
	if _, ok := el.Attr(AttrReason); ok {
		errs = multierr.Append(errs, el.RemoveAttr(AttrReason))
		errs = multierr.Append(errs, el.RemoveAttr("title"))
	}
	return errs
}

func restoreContent(el domain.Element) error {
	orig, ok := el.Attr(AttrOriginal)
	if !ok {
		return nil
	}
	return multierr.Combine(
		el.SetInnerHTML(orig),
		el.RemoveAttr(AttrOriginal),
		el.RemoveAttr(AttrHeight),
	)
}

func removeBadge(el domain.Element) error {
	var errs error
	for {
		b, ok := el.Query("." + ClassBadge)
		if !ok {
			return errs
		}
		if err := b.Remove(); err != nil {
			return multierr.Append(errs, err)
		}
	}
}
