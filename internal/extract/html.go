package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// noiseSelectors are elements removed before text is collected.
// They contribute no study content.
var noiseSelectors = []string{
	"script", "style", "noscript", "template",
	"svg", "canvas", "iframe", "object", "embed",
	"head > meta", "head > link",
}

// blockElements end the current line when text is collected.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "tr": true, "ul": true,
	"title": true,
}

// StripHTML removes markup from an HTML document and returns its text with
// whitespace collapsed. Block elements become line breaks so paragraph
// boundaries survive for the chunker.
func StripHTML(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	var b strings.Builder
	for _, n := range doc.Nodes {
		collectText(&b, n)
	}

	return CollapseWhitespace(b.String()), nil
}

// collectText walks the node tree writing text nodes and line breaks.
func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if n.Data == "br" {
			b.WriteString("\n")
			return
		}
		if blockElements[n.Data] {
			b.WriteString("\n\n")
			defer b.WriteString("\n\n")
		} else if n.Data == "td" || n.Data == "th" {
			defer b.WriteString(" ")
		}
	case html.CommentNode, html.DoctypeNode:
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// CollapseWhitespace collapses runs of spaces and tabs inside each line,
// trims every line and keeps at most one blank line between paragraphs.
func CollapseWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		out = append(out, line)
		blank = false
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
