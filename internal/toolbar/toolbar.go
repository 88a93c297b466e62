// Package toolbar validates raw toolbar input (form fields, tool arguments)
// into document model values. The model itself trusts its callers.
package toolbar

import (
	"fmt"
	"strconv"
	"strings"

	"column/internal/domain"
)

// StyleKeys lists the style fields a patch may carry, in toolbar order.
var StyleKeys = []string{"format", "fontWeight", "fontStyle", "textDecoration", "textAlign", "fontSize", "color"}

// NormalizeColor accepts a CSS hex color (#rgb or #rrggbb) and returns it as
// lowercase #rrggbb. An empty string selects the theme default.
func NormalizeColor(s string) (string, error) {
	return domain.ParseColor(s)
}

// ParseStylePatch builds a patch from the keys present in fields. Keys not
// in StyleKeys are ignored.
func ParseStylePatch(fields map[string]string) (domain.StylePatch, error) {
	var p domain.StylePatch
	for key, raw := range fields {
		switch key {
		case "fontSize":
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(raw, "px")))
			if err != nil {
				return p, fmt.Errorf("%w: fontSize %q", domain.ErrInvalidStyle, raw)
			}
			if n, err = domain.ParseFontSize(n); err != nil {
				return p, err
			}
			p.FontSize = &n
		case "color":
			c, err := NormalizeColor(raw)
			if err != nil {
				return p, err
			}
			p.Color = &c
		case "textAlign":
			v, err := domain.ParseTextAlign(raw)
			if err != nil {
				return p, err
			}
			p.TextAlign = &v
		case "fontWeight":
			v, err := domain.ParseFontWeight(raw)
			if err != nil {
				return p, err
			}
			p.FontWeight = &v
		case "fontStyle":
			v, err := domain.ParseFontStyle(raw)
			if err != nil {
				return p, err
			}
			p.FontStyle = &v
		case "textDecoration":
			v, err := domain.ParseTextDecoration(raw)
			if err != nil {
				return p, err
			}
			p.TextDecoration = &v
		case "format":
			v, err := domain.ParseFormat(raw)
			if err != nil {
				return p, err
			}
			p.Format = &v
		}
	}
	return p, nil
}

// Button is one toggle on the toolbar.
type Button struct {
	Field string
	Value string
	Label string
}

// Buttons are the toggles in display order. Format buttons reset to
// paragraph; the rest reset per field.
var Buttons = []Button{
	{"format", "heading1", "H1"},
	{"format", "heading2", "H2"},
	{"format", "heading3", "H3"},
	{"format", "list-item", "List"},
	{"format", "code", "Code"},
	{"fontWeight", "bold", "Bold"},
	{"fontStyle", "italic", "Italic"},
	{"textDecoration", "underline", "Underline"},
	{"textDecoration", "line-through", "Strike"},
	{"textAlign", "left", "Left"},
	{"textAlign", "center", "Center"},
	{"textAlign", "right", "Right"},
}

// Active reports whether b is on for style.
func (b Button) Active(style domain.Style) bool {
	switch b.Field {
	case "format":
		return string(style.Format) == b.Value
	case "fontWeight":
		return string(style.FontWeight) == b.Value
	case "fontStyle":
		return string(style.FontStyle) == b.Value
	case "textDecoration":
		return string(style.TextDecoration) == b.Value
	case "textAlign":
		return string(style.TextAlign) == b.Value
	}
	return false
}
