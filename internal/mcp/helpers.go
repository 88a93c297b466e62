package mcpserver

import "column/internal/domain"

// blockSummary is a compact listing of the session, one line per block.
type blockSummary struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Format   string `json:"format,omitempty"`
	Preview  string `json:"preview,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

const previewLen = 60

func summarizeBlocks(doc domain.Document) []blockSummary {
	out := make([]blockSummary, 0, doc.Len())
	for _, b := range doc.Blocks() {
		sum := blockSummary{ID: b.BlockID(), Type: string(b.Type()), Selected: b.BlockID() == doc.SelectedID()}
		switch v := b.(type) {
		case domain.TextBlock:
			sum.Format = string(v.Style.Format)
			sum.Preview = preview(v.Content)
		case domain.LinkBlock:
			sum.Preview = preview(v.Label())
		case domain.ImageBlock:
			sum.Preview = preview(v.Content)
		}
		out = append(out, sum)
	}
	return out
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "…"
}
