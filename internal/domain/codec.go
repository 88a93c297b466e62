package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Persisted form: a bare JSON array of block records, no envelope.

var (
	ErrExpectedArray  = errors.New("expected JSON array")
	ErrExpectedObject = errors.New("expected JSON object")
	ErrMissingType    = errors.New("missing type")
	ErrMissingID      = errors.New("missing id")
)

// DecodeError locates a decode failure inside the payload.
type DecodeError struct {
	Op   string // "decode", "block", "style"
	Path string // e.g. "[3].style"
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("column %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("column %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{Op: op, Path: path, Err: err}
}

type wireBlock struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
	Style   *Style    `json:"style,omitempty"`
	URL     *string   `json:"url,omitempty"`
}

// wireStyle decodes a possibly partial style. Format is kept raw so legacy
// names can be mapped.
type wireStyle struct {
	FontSize       *int            `json:"fontSize"`
	Color          *string         `json:"color"`
	TextAlign      *TextAlign      `json:"textAlign"`
	FontWeight     *FontWeight     `json:"fontWeight"`
	FontStyle      *FontStyle      `json:"fontStyle"`
	TextDecoration *TextDecoration `json:"textDecoration"`
	Format         *string         `json:"format"`
}

// Encode serializes blocks to the persisted JSON array.
func Encode(blocks []Block) ([]byte, error) {
	records := make([]json.RawMessage, 0, len(blocks))
	for i, b := range blocks {
		raw, err := encodeBlock(b)
		if err != nil {
			return nil, fmt.Errorf("encode block [%d]: %w", i, err)
		}
		records = append(records, raw)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func encodeBlock(b Block) (json.RawMessage, error) {
	w := wireBlock{ID: b.BlockID(), Type: b.Type()}
	switch v := b.(type) {
	case TextBlock:
		style := v.Style.complete()
		w.Content = v.Content
		w.Style = &style
	case ImageBlock:
		w.Content = v.Content
	case DividerBlock:
	case LinkBlock:
		url := v.URL
		w.Content = v.Content
		w.URL = &url
	case UnknownBlock:
		return v.Raw, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownBlockType, b)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses the persisted JSON array. Text blocks always come back with
// a complete style; unrecognized types become UnknownBlock.
func Decode(data []byte) ([]Block, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, wrap("decode", "", ErrExpectedArray)
		}
		return nil, wrap("decode", "", err)
	}
	blocks := make([]Block, 0, len(records))
	for i, raw := range records {
		b, err := decodeBlock(raw, fmt.Sprintf("[%d]", i))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DecodeString is a convenience wrapper for Decode.
func DecodeString(s string) ([]Block, error) {
	return Decode([]byte(s))
}

func decodeBlock(raw json.RawMessage, path string) (Block, error) {
	var head struct {
		ID      string          `json:"id"`
		Type    BlockType       `json:"type"`
		Content string          `json:"content"`
		Style   json.RawMessage `json:"style"`
		URL     string          `json:"url"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "" {
			return nil, wrap("block", path, ErrExpectedObject)
		}
		return nil, wrap("block", path, err)
	}
	if head.Type == "" {
		return nil, wrap("block", path, ErrMissingType)
	}
	if head.ID == "" {
		return nil, wrap("block", path, ErrMissingID)
	}

	switch head.Type {
	case BlockTypeText:
		style, err := decodeStyle(head.Style, path+".style")
		if err != nil {
			return nil, err
		}
		return TextBlock{ID: head.ID, Content: head.Content, Style: style}, nil
	case BlockTypeImage:
		return ImageBlock{ID: head.ID, Content: head.Content}, nil
	case BlockTypeDivider:
		return DividerBlock{ID: head.ID}, nil
	case BlockTypeLink:
		return LinkBlock{ID: head.ID, Content: head.Content, URL: head.URL}, nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return nil, wrap("block", path, err)
	}
	return UnknownBlock{ID: head.ID, Kind: string(head.Type), Raw: json.RawMessage(compact.Bytes())}, nil
}

func decodeStyle(raw json.RawMessage, path string) (Style, error) {
	style := DefaultStyle()
	if len(raw) == 0 || string(raw) == "null" {
		return style, nil
	}
	var w wireStyle
	if err := json.Unmarshal(raw, &w); err != nil {
		return Style{}, wrap("style", path, err)
	}
	patch := StylePatch{
		FontSize:       w.FontSize,
		Color:          w.Color,
		TextAlign:      w.TextAlign,
		FontWeight:     w.FontWeight,
		FontStyle:      w.FontStyle,
		TextDecoration: w.TextDecoration,
	}
	if w.Format != nil {
		f := Format(*w.Format)
		patch.Format = &f
	}
	// Stored values are not trusted: anything unknown, formats from a newer
	// version included, reads as its default.
	return style.Apply(patch).Sanitize(), nil
}
