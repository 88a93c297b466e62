// Package render maps a column of blocks to presentational output. The same
// mapping serves the editable surface and the read-only view; only the
// Options differ.
package render

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"column/internal/domain"
)

// Options switches the output between the static view and the editing
// surface.
type Options struct {
	Editable   bool
	SelectedID string
}

// Nodes renders blocks into sibling nodes. Consecutive list-item text blocks
// share one <ul>; a list-item opens a new <ul> only when the previously
// rendered block is not a list item. Unknown blocks render nothing and do not
// interrupt a running list.
func Nodes(blocks []domain.Block, opts Options) []*html.Node {
	var (
		out  []*html.Node
		list *html.Node
	)
	for _, b := range blocks {
		n := blockNode(b, opts)
		if n == nil {
			continue
		}
		if domain.ListItem(b) {
			if list == nil {
				list = element(atom.Ul, attr("class", "column-list"))
				out = append(out, list)
			}
			list.AppendChild(n)
			continue
		}
		list = nil
		out = append(out, n)
	}
	return out
}

// HTML writes the rendered blocks to w.
func HTML(w io.Writer, blocks []domain.Block, opts Options) error {
	for _, n := range Nodes(blocks, opts) {
		if err := html.Render(w, n); err != nil {
			return fmt.Errorf("render block: %w", err)
		}
	}
	return nil
}

// String is a convenience wrapper for HTML.
func String(blocks []domain.Block, opts Options) (string, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, blocks, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func blockNode(b domain.Block, opts Options) *html.Node {
	var n *html.Node
	switch v := b.(type) {
	case domain.TextBlock:
		n = element(textAtom(v.Style.Format), attr("style", textStyle(v.Style)))
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v.Content})
		if opts.Editable {
			n.Attr = append(n.Attr, attr("contenteditable", "true"))
		}
	case domain.ImageBlock:
		n = element(atom.Img,
			attr("src", v.Content),
			attr("alt", "Uploaded content"),
			attr("style", "max-width:100%;height:auto"),
		)
	case domain.DividerBlock:
		n = element(atom.Hr)
	case domain.LinkBlock:
		n = element(atom.A)
		if href, ok := linkHref(v.URL); ok {
			n.Attr = append(n.Attr, attr("href", href))
		}
		n.Attr = append(n.Attr,
			attr("target", "_blank"),
			attr("rel", "noopener noreferrer"),
			attr("style", "display:block;overflow-wrap:break-word"),
		)
		n.AppendChild(&html.Node{Type: html.TextNode, Data: v.Label()})
	default:
		return nil
	}
	if opts.Editable {
		n.Attr = append(n.Attr, attr("data-block-id", b.BlockID()))
		if b.BlockID() == opts.SelectedID {
			n.Attr = append(n.Attr, attr("class", "selected"))
		}
	}
	return n
}

func textAtom(f domain.Format) atom.Atom {
	switch f {
	case domain.FormatHeading1:
		return atom.H1
	case domain.FormatHeading2:
		return atom.H2
	case domain.FormatHeading3:
		return atom.H3
	case domain.FormatListItem:
		return atom.Li
	case domain.FormatCode:
		return atom.Pre
	}
	return atom.P
}

func textStyle(s domain.Style) string {
	s = s.Sanitize()
	decls := []string{fmt.Sprintf("font-size:%dpx", s.FontSize)}
	if s.Color != "" {
		decls = append(decls, "color:"+s.Color)
	}
	decls = append(decls,
		"text-align:"+string(s.TextAlign),
		"font-weight:"+string(s.FontWeight),
		"font-style:"+string(s.FontStyle),
		"text-decoration:"+string(s.TextDecoration),
		"white-space:pre-wrap",
		"overflow-wrap:break-word",
	)
	return strings.Join(decls, ";")
}

// linkHref makes scheme-less targets absolute https URLs and refuses
// anything that is not a web or mail link.
func linkHref(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if u, err := url.Parse(raw); err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "mailto":
			return raw, true
		case "javascript", "data", "vbscript", "file":
			return "", false
		}
	}
	if strings.Contains(raw, "://") {
		return "", false
	}
	return "https://" + strings.TrimPrefix(raw, "//"), true
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}
