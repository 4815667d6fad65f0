// Package normalizer turns extracted content into the final artifact text.
// Normalization is deterministic and idempotent: prose whitespace is
// collapsed and HTML entities decoded, while code blocks pass through
// byte-for-byte.
package normalizer

import (
	"html"
	"strings"

	"github.com/gnoverse/knowscrape/models"
)

// Normalize renders extracted content into a document body for the given
// output mode. Identical input always yields byte-identical output; there
// is no runtime failure mode.
func Normalize(content *models.ExtractedContent, mode models.OutputMode) *models.NormalizedDocument {
	doc := &models.NormalizedDocument{Item: content.Item}
	if mode == models.ModeHTML {
		doc.Body = renderHTML(content)
	} else {
		doc.Body = renderPlain(content)
	}
	return doc
}

// renderPlain emits the title as a markdown heading, collapsed prose
// paragraphs separated by single blank lines, and fenced code blocks with
// their original bytes.
func renderPlain(content *models.ExtractedContent) string {
	var blocks []string

	if title := NormalizeProse(content.Title); title != "" {
		blocks = append(blocks, "# "+title)
	}
	for _, p := range content.Prose {
		if text := NormalizeProse(p); text != "" {
			blocks = append(blocks, text)
		}
	}
	for _, code := range content.Code {
		var b strings.Builder
		if code.Filename != "" {
			b.WriteString("File: ")
			b.WriteString(code.Filename)
			b.WriteString("\n")
		}
		b.WriteString("```")
		b.WriteString(code.Language)
		b.WriteString("\n")
		b.WriteString(code.Content)
		b.WriteString("\n```")
		blocks = append(blocks, b.String())
	}

	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// renderHTML keeps the content region as HTML. When extraction produced a
// cleaned body fragment it is used as-is; otherwise prose is wrapped in
// paragraph tags. Code blocks are always emitted explicitly since editor
// widgets do not survive readability cleanup.
func renderHTML(content *models.ExtractedContent) string {
	var b strings.Builder

	if title := NormalizeProse(content.Title); title != "" {
		b.WriteString("<h1>")
		b.WriteString(html.EscapeString(title))
		b.WriteString("</h1>\n")
	}

	if body := collapseBlankLines(strings.TrimSpace(content.BodyHTML)); body != "" {
		b.WriteString(body)
		b.WriteString("\n")
	} else {
		for _, p := range content.Prose {
			text := NormalizeProse(p)
			if text == "" {
				continue
			}
			b.WriteString("<p>")
			b.WriteString(html.EscapeString(text))
			b.WriteString("</p>\n")
		}
	}

	for _, code := range content.Code {
		b.WriteString("<pre><code")
		if code.Language != "" {
			b.WriteString(` class="language-` + code.Language + `"`)
		}
		b.WriteString(">")
		b.WriteString(html.EscapeString(code.Content))
		b.WriteString("</code></pre>\n")
	}

	return b.String()
}

// NormalizeProse collapses all whitespace runs in a prose block to single
// spaces and decodes HTML entities. Applying it to its own output is a
// no-op.
func NormalizeProse(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(html.UnescapeString(text)), " "))
}

// collapseBlankLines reduces runs of blank lines inside an HTML fragment to
// a single blank line.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
