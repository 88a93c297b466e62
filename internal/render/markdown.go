package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"column/internal/domain"
)

// Markdown renders blocks for terminal display. Consecutive list items form a
// single list, matching Nodes. Inline image payloads are summarized rather
// than dumped.
func Markdown(blocks []domain.Block) string {
	var (
		sb     strings.Builder
		inList bool
	)
	para := func(s string) {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s)
		sb.WriteString("\n")
	}
	for _, b := range blocks {
		switch v := b.(type) {
		case domain.TextBlock:
			if v.Style.Format == domain.FormatListItem {
				if !inList && sb.Len() > 0 {
					sb.WriteString("\n")
				}
				inList = true
				sb.WriteString("- " + indentContinuation(escapeLines(v.Content), "  ") + "\n")
				continue
			}
			para(textMarkdown(v))
		case domain.ImageBlock:
			para(imageMarkdown(v))
		case domain.DividerBlock:
			para("---")
		case domain.LinkBlock:
			if href, ok := linkHref(v.URL); ok {
				para(fmt.Sprintf("[%s](%s)", escapeMarkdown(v.Label()), href))
			} else {
				para(escapeMarkdown(v.Label()))
			}
		default:
			continue
		}
		inList = false
	}
	return sb.String()
}

func textMarkdown(b domain.TextBlock) string {
	switch b.Style.Format {
	case domain.FormatHeading1:
		return "# " + headingLine(b.Content)
	case domain.FormatHeading2:
		return "## " + headingLine(b.Content)
	case domain.FormatHeading3:
		return "### " + headingLine(b.Content)
	case domain.FormatCode:
		fence := codeFence(b.Content)
		return fence + "\n" + b.Content + "\n" + fence
	}
	var marks []string
	if b.Style.FontWeight == domain.FontWeightBold {
		marks = append(marks, "**")
	}
	if b.Style.FontStyle == domain.FontStyleItalic {
		marks = append(marks, "_")
	}
	if b.Style.TextDecoration == domain.DecorationLineThrough {
		marks = append(marks, "~~")
	}
	lines := strings.Split(b.Content, "\n")
	for i, line := range lines {
		lines[i] = emphasize(escapeMarkdown(line), marks)
	}
	// hard line breaks keep the author's newlines
	return strings.Join(lines, "  \n")
}

// emphasize wraps the non-blank part of one line in marks, innermost first.
func emphasize(line string, marks []string) string {
	core := strings.TrimSpace(line)
	if core == "" || len(marks) == 0 {
		return line
	}
	i := strings.Index(line, core)
	lead, trail := line[:i], line[i+len(core):]
	for _, m := range marks {
		core = m + core + m
	}
	return lead + core + trail
}

func headingLine(s string) string {
	return escapeMarkdown(strings.Join(strings.Fields(s), " "))
}

// codeFence returns a backtick fence longer than any run inside s.
func codeFence(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}

var inlineSpecials = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"|", `\|`,
)

// escapeMarkdown makes one line of plain text read literally: inline markup
// characters are escaped, and so is a leading block marker.
func escapeMarkdown(line string) string {
	line = inlineSpecials.Replace(line)
	trimmed := strings.TrimLeft(line, " ")
	lead := line[:len(line)-len(trimmed)]
	switch {
	case strings.HasPrefix(trimmed, "#"),
		strings.HasPrefix(trimmed, "-"),
		strings.HasPrefix(trimmed, "+"),
		strings.HasPrefix(trimmed, "="):
		return lead + `\` + trimmed
	}
	digits := len(trimmed) - len(strings.TrimLeft(trimmed, "0123456789"))
	if digits > 0 && digits < len(trimmed) && (trimmed[digits] == '.' || trimmed[digits] == ')') {
		return lead + trimmed[:digits] + `\` + trimmed[digits:]
	}
	return line
}

func imageMarkdown(b domain.ImageBlock) string {
	if strings.HasPrefix(b.Content, "data:") {
		mime := strings.TrimPrefix(b.Content, "data:")
		if i := strings.IndexAny(mime, ";,"); i >= 0 {
			mime = mime[:i]
		}
		return fmt.Sprintf("*[%s image, %s]*", mime, humanize.Bytes(uint64(len(b.Content))))
	}
	return fmt.Sprintf("![image](%s)", b.Content)
}

func escapeLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = escapeMarkdown(line)
	}
	return strings.Join(lines, "\n")
}

func indentContinuation(s, indent string) string {
	return strings.ReplaceAll(s, "\n", "\n"+indent)
}
