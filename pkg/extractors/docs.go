package extractors

import (
	"strings"

	"github.com/gnoverse/knowscrape/models"
)

// extractDoc pulls title, prose and fenced code blocks out of a markdown
// documentation file. Structure is line-oriented: optional front-matter,
// the first top-level heading as title, fenced blocks preserved verbatim,
// everything else prose grouped by blank lines.
func extractDoc(page *models.RawPage) (*models.ExtractedContent, error) {
	text := string(page.Content)
	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Identifier: page.Item.Identifier, Reason: "empty document"}
	}
	// A markdown source that opens with an HTML document is not a doc page;
	// the repository layout has changed out from under us.
	if strings.HasPrefix(strings.TrimSpace(text), "<!DOCTYPE") || strings.HasPrefix(strings.TrimSpace(text), "<html") {
		return nil, &ExtractionError{Identifier: page.Item.Identifier, Reason: "expected markdown, found an HTML document"}
	}

	lines := strings.Split(text, "\n")
	lines = stripFrontMatter(lines)

	content := &models.ExtractedContent{Item: page.Item}

	var prose []string
	var paragraph []string
	flush := func() {
		if len(paragraph) > 0 {
			prose = append(prose, strings.Join(paragraph, "\n"))
			paragraph = nil
		}
	}

	inFence := false
	var fenceMarker string
	var fenceLang string
	var fenceLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if inFence {
			if strings.HasPrefix(trimmed, fenceMarker) {
				content.Code = append(content.Code, models.CodeBlock{
					Language: fenceLang,
					Content:  strings.Join(fenceLines, "\n"),
				})
				inFence = false
				fenceLines = nil
				continue
			}
			// Verbatim, including indentation and blank lines.
			fenceLines = append(fenceLines, line)
			continue
		}

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			flush()
			inFence = true
			fenceMarker = trimmed[:3]
			fenceLang = strings.TrimSpace(strings.TrimLeft(trimmed, "`~"))
			continue
		}

		if content.Title == "" && strings.HasPrefix(trimmed, "# ") {
			content.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}
		paragraph = append(paragraph, line)
	}
	// An unterminated fence still carries code the reader should see. The
	// trailing empty element from the final newline split is dropped, so
	// the block matches what a closed fence would have produced.
	if inFence {
		if n := len(fenceLines); n > 0 && fenceLines[n-1] == "" {
			fenceLines = fenceLines[:n-1]
		}
		content.Code = append(content.Code, models.CodeBlock{
			Language: fenceLang,
			Content:  strings.Join(fenceLines, "\n"),
		})
	}
	flush()

	if content.Title == "" && len(prose) == 0 && len(content.Code) == 0 {
		return nil, &ExtractionError{Identifier: page.Item.Identifier, Reason: "no heading, prose, or code found"}
	}

	content.Prose = prose
	return content, nil
}

// stripFrontMatter drops a leading yaml front-matter block delimited by
// "---" lines, if present.
func stripFrontMatter(lines []string) []string {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return lines
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return lines[i+1:]
		}
	}
	return lines
}
