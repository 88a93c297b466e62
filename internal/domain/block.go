package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type BlockType string

const (
	BlockTypeText    BlockType = "text"
	BlockTypeImage   BlockType = "image"
	BlockTypeDivider BlockType = "divider"
	BlockTypeLink    BlockType = "link"
)

var ErrUnknownBlockType = errors.New("unknown block type")

// ParseBlockType validates a raw block type coming from a caller.
func ParseBlockType(s string) (BlockType, error) {
	switch t := BlockType(s); t {
	case BlockTypeText, BlockTypeImage, BlockTypeDivider, BlockTypeLink:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBlockType, s)
}

// Block is one content unit of a column. The concrete types are TextBlock,
// ImageBlock, DividerBlock, LinkBlock and UnknownBlock.
type Block interface {
	BlockID() string
	Type() BlockType
	isBlock()
}

// TextBlock is the only block that carries a Style.
type TextBlock struct {
	ID      string
	Content string
	Style   Style
}

// ImageBlock holds an opaque image payload reference, usually a data URI.
type ImageBlock struct {
	ID      string
	Content string
}

type DividerBlock struct {
	ID string
}

// LinkBlock is the only block that carries a URL. Content is optional
// display text.
type LinkBlock struct {
	ID      string
	Content string
	URL     string
}

// Label returns the text shown for the link.
func (b LinkBlock) Label() string {
	if b.Content != "" {
		return b.Content
	}
	return b.URL
}

// UnknownBlock keeps a persisted block whose type this version does not
// understand. It renders nothing and is re-encoded verbatim.
type UnknownBlock struct {
	ID   string
	Kind string
	Raw  json.RawMessage
}

func (b TextBlock) BlockID() string    { return b.ID }
func (b ImageBlock) BlockID() string   { return b.ID }
func (b DividerBlock) BlockID() string { return b.ID }
func (b LinkBlock) BlockID() string    { return b.ID }
func (b UnknownBlock) BlockID() string { return b.ID }

func (TextBlock) Type() BlockType      { return BlockTypeText }
func (ImageBlock) Type() BlockType     { return BlockTypeImage }
func (DividerBlock) Type() BlockType   { return BlockTypeDivider }
func (LinkBlock) Type() BlockType      { return BlockTypeLink }
func (b UnknownBlock) Type() BlockType { return BlockType(b.Kind) }

func (TextBlock) isBlock()    {}
func (ImageBlock) isBlock()   {}
func (DividerBlock) isBlock() {}
func (LinkBlock) isBlock()    {}
func (UnknownBlock) isBlock() {}

// NewTextBlock returns an empty text block with the default style.
func NewTextBlock() TextBlock {
	return TextBlock{ID: newID(), Style: DefaultStyle()}
}

// ListItem reports whether b is a text block formatted as a list item.
func ListItem(b Block) bool {
	t, ok := b.(TextBlock)
	return ok && t.Style.Format == FormatListItem
}
