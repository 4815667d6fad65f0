package extractors

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/gnoverse/knowscrape/models"
)

// boilerplateLines are known community-footer fragments that appear inside
// the content column of example pages. Prose containing any of them is
// dropped during extraction so no navigation/footer text reaches the body.
var boilerplateLines = []string{
	"Gno by Example is a community project.",
	"Check out the GitHub repo.",
	"Learn more about Gno.land and",
	"be part of the conversation:",
	"Check out the full example here.",
}

func isBoilerplate(text string) bool {
	for _, line := range boilerplateLines {
		if strings.Contains(text, line) {
			return true
		}
	}
	return false
}

// extractExample pulls title, prose and code samples out of an example-site
// tutorial page. Structural markers: the title lives in b.chakra-text,
// prose in p.chakra-text, and code samples either in editor view-lines
// (one div per source line) keyed by filename tabs, or in plain pre>code
// blocks when the page is server-rendered.
func extractExample(page *models.RawPage) (*models.ExtractedContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Content))
	if err != nil {
		return nil, &ExtractionError{Identifier: page.Item.Identifier, Reason: "unparseable HTML: " + err.Error()}
	}

	titleSel := doc.Find("b.chakra-text")
	proseSel := doc.Find("p.chakra-text")
	if titleSel.Length() == 0 && proseSel.Length() == 0 {
		return nil, &ExtractionError{
			Identifier: page.Item.Identifier,
			Reason:     "content markers not found (b.chakra-text / p.chakra-text)",
		}
	}

	// Exactly one primary region is expected; take the first in document
	// order if the page ever grows a second.
	title := strings.TrimSpace(titleSel.First().Text())

	var prose []string
	proseSel.Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || text == title || isBoilerplate(text) {
			return
		}
		prose = append(prose, text)
	})

	content := &models.ExtractedContent{
		Item:     page.Item,
		Title:    title,
		Prose:    prose,
		Code:     extractExampleCode(doc),
		BodyHTML: cleanBodyHTML(page),
	}
	return content, nil
}

// extractExampleCode collects code samples. The editor widget renders one
// div.view-line per source line with no newline characters of its own, so
// lines are joined in DOM order. Filenames come from the tab buttons; tabs
// that are not source files are ignored.
func extractExampleCode(doc *goquery.Document) []models.CodeBlock {
	var filenames []string
	doc.Find("button[role='tab'] p").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		if strings.HasSuffix(name, ".gno") || strings.HasSuffix(name, ".go") {
			filenames = append(filenames, name)
		}
	})

	var blocks []models.CodeBlock
	doc.Find("[role='tabpanel'], .monaco-editor").Each(func(i int, panel *goquery.Selection) {
		lines := panel.Find(".view-line")
		if lines.Length() == 0 {
			return
		}
		var b strings.Builder
		lines.Each(func(j int, line *goquery.Selection) {
			if j > 0 {
				b.WriteString("\n")
			}
			b.WriteString(line.Text())
		})
		block := models.CodeBlock{Language: "go", Content: b.String()}
		if len(blocks) < len(filenames) {
			block.Filename = filenames[len(blocks)]
		}
		blocks = append(blocks, block)
	})

	// Server-rendered fallback: plain pre>code blocks.
	if len(blocks) == 0 {
		doc.Find("pre").Each(func(_ int, pre *goquery.Selection) {
			codeSel := pre.Find("code")
			if codeSel.Length() == 0 {
				return
			}
			text := codeSel.First().Text()
			if strings.TrimSpace(text) == "" {
				return
			}
			lang, _ := codeSel.First().Attr("class")
			lang = strings.TrimPrefix(lang, "language-")
			block := models.CodeBlock{Language: lang, Content: text}
			if len(blocks) < len(filenames) {
				block.Filename = filenames[len(blocks)]
			}
			blocks = append(blocks, block)
		})
	}

	return blocks
}

// cleanBodyHTML runs readability over the page to get a content-region HTML
// fragment with navigation and chrome stripped, for the HTML-preserving
// output mode. Best effort: an unreadable page just yields an empty body,
// the structured fields above are authoritative.
func cleanBodyHTML(page *models.RawPage) string {
	pageURL, err := url.Parse(page.Item.Identifier)
	if err != nil {
		return ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(page.Content), pageURL)
	if err != nil {
		return ""
	}
	return article.Content
}
