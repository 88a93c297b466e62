package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// newID assigns block ids. Tests may swap it for a deterministic source.
var newID = uuid.NewString

// Document is an ordered column of blocks plus the id of the selected block.
// It is an immutable value: every mutation returns a new Document and leaves
// the receiver untouched.
type Document struct {
	blocks   []Block
	selected string
}

// NewDocument returns a document with one empty default text block, selected.
func NewDocument() Document {
	b := NewTextBlock()
	return Document{blocks: []Block{b}, selected: b.ID}
}

// FromBlocks wraps already-built blocks, e.g. a decoded draft.
func FromBlocks(blocks []Block, selectedID string) Document {
	return Document{blocks: cloneBlocks(blocks), selected: selectedID}
}

// Blocks returns a copy of the blocks in display order.
func (d Document) Blocks() []Block {
	return cloneBlocks(d.blocks)
}

func (d Document) Len() int { return len(d.blocks) }

// SelectedID returns the raw selection, which may not resolve to a block.
func (d Document) SelectedID() string { return d.selected }

// Selected resolves the selection. An unknown id yields no block.
func (d Document) Selected() (Block, bool) {
	return d.Block(d.selected)
}

// Block looks a block up by id.
func (d Document) Block(id string) (Block, bool) {
	if id == "" {
		return nil, false
	}
	return lo.Find(d.blocks, func(b Block) bool { return b.BlockID() == id })
}

func (d Document) indexOf(id string) int {
	if id == "" {
		return -1
	}
	_, i, ok := lo.FindIndexOf(d.blocks, func(b Block) bool { return b.BlockID() == id })
	if !ok {
		return -1
	}
	return i
}

// Select sets the selection without checking that id exists.
func (d Document) Select(id string) Document {
	d.blocks = cloneBlocks(d.blocks)
	d.selected = id
	return d
}

// BlockOption configures a block built by AddBlock.
type BlockOption func(*blockSpec)

type blockSpec struct {
	content string
	style   *Style
	url     string
}

func WithContent(content string) BlockOption {
	return func(s *blockSpec) { s.content = content }
}

// WithStyle is only honored for text blocks.
func WithStyle(style Style) BlockOption {
	return func(s *blockSpec) { s.style = &style }
}

// WithURL is only honored for link blocks.
func WithURL(url string) BlockOption {
	return func(s *blockSpec) { s.url = url }
}

// AddBlock inserts a new block right after the selected block, or appends it
// when nothing resolvable is selected. A non-text block is followed by a fresh
// empty text block which becomes the selection; a text block is selected
// itself. Insertion and the selection move are one step.
func (d Document) AddBlock(kind BlockType, opts ...BlockOption) (Document, error) {
	spec := blockSpec{}
	for _, opt := range opts {
		opt(&spec)
	}

	var block Block
	switch kind {
	case BlockTypeText:
		style := DefaultStyle()
		if spec.style != nil {
			style = spec.style.complete()
		}
		block = TextBlock{ID: newID(), Content: spec.content, Style: style}
	case BlockTypeImage:
		block = ImageBlock{ID: newID(), Content: spec.content}
	case BlockTypeDivider:
		block = DividerBlock{ID: newID()}
	case BlockTypeLink:
		block = LinkBlock{ID: newID(), Content: spec.content, URL: spec.url}
	default:
		return d, ErrUnknownBlockType
	}

	inserted := []Block{block}
	selected := block.BlockID()
	if kind != BlockTypeText {
		trailing := NewTextBlock()
		inserted = append(inserted, trailing)
		selected = trailing.ID
	}

	at := len(d.blocks)
	if i := d.indexOf(d.selected); i != -1 {
		at = i + 1
	}

	blocks := make([]Block, 0, len(d.blocks)+len(inserted))
	blocks = append(blocks, d.blocks[:at]...)
	blocks = append(blocks, inserted...)
	blocks = append(blocks, d.blocks[at:]...)
	return Document{blocks: blocks, selected: selected}, nil
}

// SplitAfter is the "Enter" gesture on text block id: a new empty text block
// inheriting id's style is inserted after it and selected. A non-text or
// unknown id falls back to the default style.
func (d Document) SplitAfter(id string) Document {
	var opts []BlockOption
	if t, ok := d.textBlock(id); ok {
		opts = append(opts, WithStyle(t.Style))
	}
	next, _ := d.Select(id).AddBlock(BlockTypeText, opts...)
	return next
}

// UpdateContent replaces the content of a text, image or link block. Unknown
// ids, dividers and unknown blocks are left as they are.
func (d Document) UpdateContent(id, content string) Document {
	return d.replace(id, func(b Block) Block {
		switch v := b.(type) {
		case TextBlock:
			v.Content = content
			return v
		case ImageBlock:
			v.Content = content
			return v
		case LinkBlock:
			v.Content = content
			return v
		}
		return b
	})
}

// UpdateStyle merges patch into the style of text block id. Any other block,
// or an unknown id, is a silent no-op.
func (d Document) UpdateStyle(id string, patch StylePatch) Document {
	return d.replace(id, func(b Block) Block {
		t, ok := b.(TextBlock)
		if !ok {
			return b
		}
		t.Style = t.Style.Apply(patch).complete()
		return t
	})
}

func (d Document) textBlock(id string) (TextBlock, bool) {
	b, ok := d.Block(id)
	if !ok {
		return TextBlock{}, false
	}
	t, ok := b.(TextBlock)
	return t, ok
}

func (d Document) replace(id string, fn func(Block) Block) Document {
	return Document{
		blocks: lo.Map(d.blocks, func(b Block, _ int) Block {
			if b.BlockID() == id {
				return fn(b)
			}
			return b
		}),
		selected: d.selected,
	}
}

// Blank reports whether b is a text block with only whitespace content.
func Blank(b Block) bool {
	t, ok := b.(TextBlock)
	return ok && strings.TrimSpace(t.Content) == ""
}

// NormalizeForPersistence drops blank text blocks unless blocks holds exactly
// one block. If nothing survives, a single empty default text block is
// returned. The input slice is not modified.
func NormalizeForPersistence(blocks []Block) []Block {
	kept := FilterBlank(blocks)
	if len(kept) == 0 {
		return []Block{NewTextBlock()}
	}
	return kept
}

// FilterBlank is the blank-block rule without the fallback: blank text
// blocks go unless blocks holds exactly one block. The view surface uses it
// so an all-blank column reads as empty.
func FilterBlank(blocks []Block) []Block {
	if len(blocks) == 1 {
		return cloneBlocks(blocks)
	}
	return lo.Filter(blocks, func(b Block, _ int) bool { return !Blank(b) })
}

func cloneBlocks(blocks []Block) []Block {
	if blocks == nil {
		return nil
	}
	out := make([]Block, len(blocks))
	copy(out, blocks)
	return out
}
