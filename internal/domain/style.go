package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

type FontWeight string

const (
	FontWeightNormal FontWeight = "normal"
	FontWeightBold   FontWeight = "bold"
)

type FontStyle string

const (
	FontStyleNormal FontStyle = "normal"
	FontStyleItalic FontStyle = "italic"
)

type TextDecoration string

const (
	DecorationNone        TextDecoration = "none"
	DecorationUnderline   TextDecoration = "underline"
	DecorationLineThrough TextDecoration = "line-through"
)

// Format is the structural role of a text block. It is single-valued.
type Format string

const (
	FormatParagraph Format = "paragraph"
	FormatHeading1  Format = "heading1"
	FormatHeading2  Format = "heading2"
	FormatHeading3  Format = "heading3"
	FormatListItem  Format = "list-item"
	FormatCode      Format = "code"
)

// legacyFormats maps the short names used by earlier saves.
var legacyFormats = map[string]Format{
	"p":  FormatParagraph,
	"h1": FormatHeading1,
	"h2": FormatHeading2,
	"h3": FormatHeading3,
	"ul": FormatListItem,
}

const (
	DefaultFontSize = 16
	MinFontSize     = 8
	MaxFontSize     = 72
)

var ErrInvalidStyle = errors.New("invalid style value")

// Style is the complete presentation record of a text block. Color "" means
// the theme default.
type Style struct {
	FontSize       int            `json:"fontSize"`
	Color          string         `json:"color,omitempty"`
	TextAlign      TextAlign      `json:"textAlign"`
	FontWeight     FontWeight     `json:"fontWeight"`
	FontStyle      FontStyle      `json:"fontStyle"`
	TextDecoration TextDecoration `json:"textDecoration"`
	Format         Format         `json:"format"`
}

// DefaultStyle is applied to every text block created without a style.
func DefaultStyle() Style {
	return Style{
		FontSize:       DefaultFontSize,
		TextAlign:      AlignLeft,
		FontWeight:     FontWeightNormal,
		FontStyle:      FontStyleNormal,
		TextDecoration: DecorationNone,
		Format:         FormatParagraph,
	}
}

// StylePatch is a partial style. Nil fields are left unchanged by Apply.
type StylePatch struct {
	FontSize       *int            `json:"fontSize,omitempty"`
	Color          *string         `json:"color,omitempty"`
	TextAlign      *TextAlign      `json:"textAlign,omitempty"`
	FontWeight     *FontWeight     `json:"fontWeight,omitempty"`
	FontStyle      *FontStyle      `json:"fontStyle,omitempty"`
	TextDecoration *TextDecoration `json:"textDecoration,omitempty"`
	Format         *Format         `json:"format,omitempty"`
}

// Apply overwrites the fields of s that are set in p.
func (s Style) Apply(p StylePatch) Style {
	if p.FontSize != nil {
		s.FontSize = *p.FontSize
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.TextAlign != nil {
		s.TextAlign = *p.TextAlign
	}
	if p.FontWeight != nil {
		s.FontWeight = *p.FontWeight
	}
	if p.FontStyle != nil {
		s.FontStyle = *p.FontStyle
	}
	if p.TextDecoration != nil {
		s.TextDecoration = *p.TextDecoration
	}
	if p.Format != nil {
		s.Format = *p.Format
	}
	return s
}

// complete fills zero fields from the default style.
func (s Style) complete() Style {
	d := DefaultStyle()
	if s.FontSize <= 0 {
		s.FontSize = d.FontSize
	}
	if s.TextAlign == "" {
		s.TextAlign = d.TextAlign
	}
	if s.FontWeight == "" {
		s.FontWeight = d.FontWeight
	}
	if s.FontStyle == "" {
		s.FontStyle = d.FontStyle
	}
	if s.TextDecoration == "" {
		s.TextDecoration = d.TextDecoration
	}
	if s.Format == "" {
		s.Format = d.Format
	}
	return s
}

// Sanitize replaces every field that is not a known value with its default.
// Color must be a hex color and comes back as lowercase #rrggbb.
func (s Style) Sanitize() Style {
	d := DefaultStyle()
	if _, err := ParseFontSize(s.FontSize); err != nil {
		s.FontSize = d.FontSize
	}
	if c, err := ParseColor(s.Color); err != nil {
		s.Color = d.Color
	} else {
		s.Color = c
	}
	if _, err := ParseTextAlign(string(s.TextAlign)); err != nil {
		s.TextAlign = d.TextAlign
	}
	if _, err := ParseFontWeight(string(s.FontWeight)); err != nil {
		s.FontWeight = d.FontWeight
	}
	if _, err := ParseFontStyle(string(s.FontStyle)); err != nil {
		s.FontStyle = d.FontStyle
	}
	if _, err := ParseTextDecoration(string(s.TextDecoration)); err != nil {
		s.TextDecoration = d.TextDecoration
	}
	if f, err := ParseFormat(string(s.Format)); err != nil {
		s.Format = d.Format
	} else {
		s.Format = f
	}
	return s
}

// IsZero reports whether p sets no field.
func (p StylePatch) IsZero() bool {
	return p == StylePatch{}
}

// Toggle returns value, or reset when current already equals value. Each
// toolbar call site supplies its own reset.
func Toggle[T comparable](current, value, reset T) *T {
	if current == value {
		return &reset
	}
	return &value
}

// ToggleFormat sets format f, or resets to paragraph when the block already
// has it.
func ToggleFormat(current Style, f Format) StylePatch {
	return StylePatch{Format: Toggle(current.Format, f, FormatParagraph)}
}

// StyleField names a toggleable style field.
type StyleField string

const (
	FieldFontWeight     StyleField = "fontWeight"
	FieldFontStyle      StyleField = "fontStyle"
	FieldTextDecoration StyleField = "textDecoration"
	FieldTextAlign      StyleField = "textAlign"
)

// ToggleStyle builds the patch for a toolbar toggle button on field with
// value. Toggling off resets to the field's documented default.
func ToggleStyle(current Style, field StyleField, value string) (StylePatch, error) {
	switch field {
	case FieldFontWeight:
		v, err := ParseFontWeight(value)
		if err != nil {
			return StylePatch{}, err
		}
		return StylePatch{FontWeight: Toggle(current.FontWeight, v, FontWeightNormal)}, nil
	case FieldFontStyle:
		v, err := ParseFontStyle(value)
		if err != nil {
			return StylePatch{}, err
		}
		return StylePatch{FontStyle: Toggle(current.FontStyle, v, FontStyleNormal)}, nil
	case FieldTextDecoration:
		v, err := ParseTextDecoration(value)
		if err != nil {
			return StylePatch{}, err
		}
		return StylePatch{TextDecoration: Toggle(current.TextDecoration, v, DecorationNone)}, nil
	case FieldTextAlign:
		v, err := ParseTextAlign(value)
		if err != nil {
			return StylePatch{}, err
		}
		return StylePatch{TextAlign: Toggle(current.TextAlign, v, AlignLeft)}, nil
	}
	return StylePatch{}, fmt.Errorf("%w: field %q", ErrInvalidStyle, field)
}

func ParseTextAlign(s string) (TextAlign, error) {
	switch v := TextAlign(s); v {
	case AlignLeft, AlignCenter, AlignRight:
		return v, nil
	}
	return "", fmt.Errorf("%w: textAlign %q", ErrInvalidStyle, s)
}

func ParseFontWeight(s string) (FontWeight, error) {
	switch v := FontWeight(s); v {
	case FontWeightNormal, FontWeightBold:
		return v, nil
	}
	return "", fmt.Errorf("%w: fontWeight %q", ErrInvalidStyle, s)
}

func ParseFontStyle(s string) (FontStyle, error) {
	switch v := FontStyle(s); v {
	case FontStyleNormal, FontStyleItalic:
		return v, nil
	}
	return "", fmt.Errorf("%w: fontStyle %q", ErrInvalidStyle, s)
}

func ParseTextDecoration(s string) (TextDecoration, error) {
	switch v := TextDecoration(s); v {
	case DecorationNone, DecorationUnderline, DecorationLineThrough:
		return v, nil
	}
	return "", fmt.Errorf("%w: textDecoration %q", ErrInvalidStyle, s)
}

// ParseFormat accepts both the current names and the legacy short names.
func ParseFormat(s string) (Format, error) {
	switch v := Format(s); v {
	case FormatParagraph, FormatHeading1, FormatHeading2, FormatHeading3, FormatListItem, FormatCode:
		return v, nil
	}
	if v, ok := legacyFormats[s]; ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: format %q", ErrInvalidStyle, s)
}

// ParseColor accepts a CSS hex color (#rgb or #rrggbb) and returns it as
// lowercase #rrggbb. An empty string selects the theme default.
func ParseColor(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if len(s) == 4 && s[0] == '#' {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return "", fmt.Errorf("%w: color %q", ErrInvalidStyle, s)
	}
	return c.Hex(), nil
}

// ParseFontSize validates a toolbar font size in px.
func ParseFontSize(n int) (int, error) {
	if n < MinFontSize || n > MaxFontSize {
		return 0, fmt.Errorf("%w: fontSize %d outside %d-%d", ErrInvalidStyle, n, MinFontSize, MaxFontSize)
	}
	return n, nil
}
