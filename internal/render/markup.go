package render

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parseFragment(markup string) []*html.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil
	}
	return nodes
}

// TextFromMarkup renders model markup as readable plain text: block elements
// become paragraphs, list items lines, and whitespace is normalized outside
// preformatted blocks.
func TextFromMarkup(markup string) string {
	var b strings.Builder
	for _, n := range parseFragment(markup) {
		collectText(&b, n, false)
	}
	return normalizeWhitespace(b.String())
}

// Block is one block-level element of a markup fragment.
type Block struct {
	Tag  string
	Text string
}

var blockTags = map[string]bool{
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "li": true, "blockquote": true, "pre": true, "td": true, "th": true,
}

// Blocks flattens a fragment into its block-level elements in document order.
// Loose text outside any block becomes a "p" block.
func Blocks(markup string) []Block {
	var out []Block
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := collapseSpaces(strings.TrimSpace(n.Data)); t != "" {
				out = append(out, Block{Tag: "p", Text: t})
			}
			return
		case html.ElementNode:
			name := strings.ToLower(n.Data)
			if skippedTag(name) {
				return
			}
			if blockTags[name] {
				var b strings.Builder
				collectText(&b, n, name == "pre")
				text := normalizeWhitespace(b.String())
				if name == "pre" {
					text = strings.Trim(b.String(), "\n")
				}
				if text != "" {
					out = append(out, Block{Tag: name, Text: text})
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range parseFragment(markup) {
		walk(n)
	}
	return out
}

func skippedTag(name string) bool {
	switch name {
	case "script", "style", "noscript", "iframe", "template":
		return true
	}
	return false
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if skippedTag(name) {
			return
		}
		switch name {
		case "pre", "code":
			inPre = true
		case "br", "hr":
			b.WriteString("\n")
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "ul", "ol", "table":
			b.WriteString("\n")
		case "td", "th":
			b.WriteString(" ")
		}
	}

	if n.Type == html.TextNode {
		data := n.Data
		if !inPre {
			data = strings.ReplaceAll(data, "\t", " ")
			data = strings.ReplaceAll(data, "\r", " ")
		}
		b.WriteString(data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c, inPre)
	}

	if n.Type == html.ElementNode {
		switch strings.ToLower(n.Data) {
		case "p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "table":
			b.WriteString("\n\n")
		case "li", "tr":
			b.WriteString("\n")
		case "pre":
			b.WriteString("\n")
		}
	}
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// at most one consecutive blank
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
