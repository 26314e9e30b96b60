package render

import (
	"strings"

	"golang.org/x/net/html"
)

// dropped elements are removed together with their content.
var dropped = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true, "embed": true,
	"link": true, "meta": true, "base": true, "form": true, "input": true,
	"button": true, "textarea": true, "select": true, "frame": true, "frameset": true,
	"template": true, "noscript": true, "svg": true, "math": true,
}

// Sanitize strips active content from model-authored markup: scripting and
// embedding elements, event handler and style attributes, and URLs with
// executable schemes. Layout tags and class attributes are kept.
func Sanitize(markup string) string {
	var b strings.Builder
	for _, n := range parseFragment(markup) {
		if clean(n) {
			_ = html.Render(&b, n)
		}
	}
	return b.String()
}

// clean filters n in place and reports whether it should be kept.
func clean(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return false
	case html.ElementNode:
		if dropped[strings.ToLower(n.Data)] {
			return false
		}
		kept := n.Attr[:0]
		for _, a := range n.Attr {
			if allowedAttr(a) {
				kept = append(kept, a)
			}
		}
		n.Attr = kept
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if !clean(c) {
			n.RemoveChild(c)
		}
		c = next
	}
	return true
}

func allowedAttr(a html.Attribute) bool {
	key := strings.ToLower(a.Key)
	if a.Namespace != "" || strings.HasPrefix(key, "on") || key == "style" || key == "srcdoc" {
		return false
	}
	switch key {
	case "href", "src", "action", "formaction", "xlink:href":
		return safeURL(a.Val)
	}
	return true
}

func safeURL(v string) bool {
	u := strings.ToLower(strings.TrimSpace(v))
	// browsers ignore embedded whitespace and control characters in schemes
	u = strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, u)
	for _, scheme := range []string{"javascript:", "vbscript:", "data:"} {
		if strings.HasPrefix(u, scheme) {
			return false
		}
	}
	return true
}
