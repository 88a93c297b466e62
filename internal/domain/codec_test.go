package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"column/internal/domain"
)

func text(id, content string) domain.TextBlock {
	return domain.TextBlock{ID: id, Content: content, Style: domain.DefaultStyle()}
}

func TestNormalizeForPersistence(t *testing.T) {
	tests := []struct {
		name  string
		input []domain.Block
		want  []domain.Block
	}{
		{
			name:  "sole empty block kept",
			input: []domain.Block{text("a", "")},
			want:  []domain.Block{text("a", "")},
		},
		{
			name:  "blank padding removed",
			input: []domain.Block{text("a", ""), text("b", "Hello"), text("c", "  ")},
			want:  []domain.Block{text("b", "Hello")},
		},
		{
			name:  "non-text blocks survive",
			input: []domain.Block{domain.DividerBlock{ID: "d"}, text("a", "\n\t"), domain.ImageBlock{ID: "i"}},
			want:  []domain.Block{domain.DividerBlock{ID: "d"}, domain.ImageBlock{ID: "i"}},
		},
		{
			name:  "whitespace inside content is kept",
			input: []domain.Block{text("a", "  two\n\nlines  "), text("b", "")},
			want:  []domain.Block{text("a", "  two\n\nlines  ")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalizeForPersistence(tt.input))
		})
	}
}

func TestNormalizeForPersistence_AllBlankFallsBack(t *testing.T) {
	for _, input := range [][]domain.Block{
		{text("a", ""), text("b", "   ")},
		{},
		nil,
	} {
		got := domain.NormalizeForPersistence(input)
		require.Len(t, got, 1)
		only, ok := got[0].(domain.TextBlock)
		require.True(t, ok)
		assert.Empty(t, only.Content)
		assert.Equal(t, domain.DefaultStyle(), only.Style)
		assert.NotEmpty(t, only.ID)
	}
}

func TestNormalizeForPersistence_DoesNotMutate(t *testing.T) {
	input := []domain.Block{text("a", ""), text("b", "x")}
	_ = domain.NormalizeForPersistence(input)
	assert.Equal(t, []domain.Block{text("a", ""), text("b", "x")}, input)
}

func TestEncode_WireShape(t *testing.T) {
	styled := text("t", "hi <b>")
	styled.Style.Color = "#336699"
	data, err := domain.Encode([]domain.Block{
		styled,
		domain.ImageBlock{ID: "i", Content: "data:image/png;base64,AA=="},
		domain.DividerBlock{ID: "d"},
		domain.LinkBlock{ID: "l", URL: "https://go.dev"},
	})
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 4)

	assert.Equal(t, "text", records[0]["type"])
	assert.Equal(t, "hi <b>", records[0]["content"])
	assert.Equal(t, map[string]any{
		"fontSize": float64(16), "color": "#336699", "textAlign": "left",
		"fontWeight": "normal", "fontStyle": "normal", "textDecoration": "none",
		"format": "paragraph",
	}, records[0]["style"])
	assert.NotContains(t, records[0], "url")

	assert.NotContains(t, records[1], "style")
	assert.NotContains(t, records[1], "url")
	assert.Equal(t, "", records[2]["content"])
	assert.Equal(t, "https://go.dev", records[3]["url"])
	assert.NotContains(t, records[3], "style")
	assert.Contains(t, string(data), "hi <b>")
}

func TestDecode_FillsStyleAndMapsLegacyFormats(t *testing.T) {
	blocks, err := domain.DecodeString(`[
		{"id":"1","type":"text","content":"a"},
		{"id":"2","type":"text","content":"b","style":{"fontSize":24,"format":"h2","color":"#000000"}},
		{"id":"3","type":"text","content":"c","style":{"format":"ul"}},
		{"id":"4","type":"text","content":"d","style":{"format":"blink"}},
		{"id":"5","type":"link","content":"","url":"go.dev","style":{"fontSize":40}}
	]`)
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	assert.Equal(t, domain.DefaultStyle(), blocks[0].(domain.TextBlock).Style)

	s := blocks[1].(domain.TextBlock).Style
	assert.Equal(t, 24, s.FontSize)
	assert.Equal(t, domain.FormatHeading2, s.Format)
	assert.Equal(t, "#000000", s.Color)
	assert.Equal(t, domain.AlignLeft, s.TextAlign)

	assert.Equal(t, domain.FormatListItem, blocks[2].(domain.TextBlock).Style.Format)
	assert.Equal(t, domain.FormatParagraph, blocks[3].(domain.TextBlock).Style.Format)
	assert.Equal(t, domain.LinkBlock{ID: "5", URL: "go.dev"}, blocks[4])
}

func TestDecode_InvalidStyleValuesFallBackToDefaults(t *testing.T) {
	blocks, err := domain.DecodeString(`[
		{"id":"1","type":"text","content":"hi","style":{
			"color":"red;position:fixed;inset:0;background:url(https://evil.example/x)",
			"textAlign":"justify","fontWeight":"900","fontStyle":"oblique",
			"textDecoration":"blink","fontSize":-3}},
		{"id":"2","type":"text","content":"ok","style":{"color":"#ABC","fontSize":500,"textAlign":"right"}}
	]`)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	assert.Equal(t, domain.DefaultStyle(), blocks[0].(domain.TextBlock).Style)

	s := blocks[1].(domain.TextBlock).Style
	assert.Equal(t, "#aabbcc", s.Color)
	assert.Equal(t, domain.DefaultFontSize, s.FontSize)
	assert.Equal(t, domain.AlignRight, s.TextAlign)
}

func TestDecode_UnknownTypePreserved(t *testing.T) {
	payload := `[{"id":"v","type":"video","content":"x","src":"clip.mp4"},{"id":"t","type":"text","content":"after"}]`
	blocks, err := domain.DecodeString(payload)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	unknown, ok := blocks[0].(domain.UnknownBlock)
	require.True(t, ok)
	assert.Equal(t, "video", unknown.Kind)
	assert.Equal(t, domain.BlockType("video"), unknown.Type())

	data, err := domain.Encode(blocks)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"src":"clip.mp4"`)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"not an array", `{"id":"1"}`, domain.ErrExpectedArray},
		{"element not an object", `["text"]`, domain.ErrExpectedObject},
		{"missing type", `[{"id":"1","content":"x"}]`, domain.ErrMissingType},
		{"missing id", `[{"type":"text"}]`, domain.ErrMissingID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.DecodeString(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			var de *domain.DecodeError
			assert.True(t, errors.As(err, &de))
		})
	}

	_, err := domain.DecodeString(`[{"id":`)
	assert.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	defer domain.SequentialIDs()()

	d := domain.NewDocument()
	d = d.UpdateContent(d.SelectedID(), "Title")
	d = d.UpdateStyle(d.SelectedID(), domain.StylePatch{Format: ptr(domain.FormatHeading1), Color: ptr("#aa0000")})
	d = mustAdd(t, d, domain.BlockTypeImage, domain.WithContent("data:image/png;base64,iVBORw0KGgo="))
	d = mustAdd(t, d, domain.BlockTypeLink, domain.WithContent("Go"), domain.WithURL("https://go.dev/?a=1&b=<2>"))
	d = mustAdd(t, d, domain.BlockTypeDivider)
	d = d.UpdateContent(d.SelectedID(), "  keep\n  whitespace ")
	d = mustAdd(t, d, domain.BlockTypeText) // blank, dropped

	normalized := domain.NormalizeForPersistence(d.Blocks())
	data, err := domain.Encode(normalized)
	require.NoError(t, err)
	decoded, err := domain.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, normalized, decoded)

	// unknown blocks survive as well
	withUnknown := append(normalized, domain.UnknownBlock{ID: "u", Kind: "embed", Raw: json.RawMessage(`{"id":"u","type":"embed"}`)})
	data, err = domain.Encode(withUnknown)
	require.NoError(t, err)
	decoded, err = domain.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, withUnknown, decoded)
}

func TestFilterBlank(t *testing.T) {
	assert.Empty(t, domain.FilterBlank([]domain.Block{text("a", ""), text("b", " ")}))
	assert.Equal(t, []domain.Block{text("a", "")}, domain.FilterBlank([]domain.Block{text("a", "")}))
	assert.Equal(t,
		[]domain.Block{domain.DividerBlock{ID: "d"}},
		domain.FilterBlank([]domain.Block{text("a", ""), domain.DividerBlock{ID: "d"}}))
}
