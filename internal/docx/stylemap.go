package docx

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Kind names the document element a Rule applies to.
type Kind string

const (
	KindParagraph  Kind = "p"
	KindRun        Kind = "r"
	KindTable      Kind = "table"
	KindRow        Kind = "tr"
	KindCell       Kind = "td"
	KindHeaderCell Kind = "th"
	KindList       Kind = "list"
)

// NumberedListStyle is the selector that turns a list into an ordered one.
const NumberedListStyle = "Numbered List"

// Rule maps a named paragraph or run style (or a structural element when
// StyleName is empty) to an output tag carrying presentation classes.
type Rule struct {
	Kind      Kind     `yaml:"kind" json:"kind"`
	StyleName string   `yaml:"styleName,omitempty" json:"styleName,omitempty"`
	Tag       string   `yaml:"tag" json:"tag"`
	Classes   []string `yaml:"classes,omitempty" json:"classes,omitempty"`
}

// StyleMap is a static rule table. Style names match exactly.
type StyleMap []Rule

// Lookup returns the rule for kind and styleName.
func (m StyleMap) Lookup(kind Kind, styleName string) (Rule, bool) {
	for _, r := range m {
		if r.Kind == kind && r.StyleName == styleName {
			return r, true
		}
	}
	return Rule{}, false
}

func classes(s string) []string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return nil
	}
	return f
}

// DefaultStyleMap returns the built-in rule table.
func DefaultStyleMap() StyleMap {
	return StyleMap{
		{Kind: KindParagraph, StyleName: "Heading 1", Tag: "h1", Classes: classes("text-3xl font-bold text-gray-900 mb-4")},
		{Kind: KindParagraph, StyleName: "Heading 2", Tag: "h2", Classes: classes("text-2xl font-semibold text-gray-800 mb-3")},
		{Kind: KindParagraph, StyleName: "Heading 3", Tag: "h3", Classes: classes("text-xl font-semibold text-gray-700 mb-2")},

		{Kind: KindParagraph, StyleName: "Normal", Tag: "p", Classes: classes("text-base text-gray-700 leading-relaxed mb-4")},
		{Kind: KindParagraph, StyleName: "Quote", Tag: "blockquote", Classes: classes("border-l-4 border-gray-300 pl-4 italic text-gray-600 mb-4")},
		{Kind: KindParagraph, StyleName: "Code", Tag: "pre", Classes: classes("bg-gray-100 text-gray-800 p-3 rounded-md font-mono text-sm mb-4")},

		{Kind: KindRun, StyleName: "Strong", Tag: "strong", Classes: classes("font-semibold text-gray-900")},
		{Kind: KindRun, StyleName: "Emphasis", Tag: "em", Classes: classes("italic text-gray-700")},
		{Kind: KindRun, StyleName: "Link", Tag: "a", Classes: classes("text-blue-600 underline hover:text-blue-800")},

		{Kind: KindTable, Tag: "table", Classes: classes("table-auto border-collapse w-full my-6")},
		{Kind: KindRow, Tag: "tr", Classes: classes("border-b")},
		{Kind: KindCell, Tag: "td", Classes: classes("px-3 py-2 border")},
		{Kind: KindHeaderCell, Tag: "th", Classes: classes("px-3 py-2 border bg-gray-50 font-semibold text-gray-700")},

		{Kind: KindList, Tag: "ul", Classes: classes("list-disc pl-6 mb-4")},
		{Kind: KindList, StyleName: NumberedListStyle, Tag: "ol", Classes: classes("list-decimal pl-6 mb-4")},
	}
}

var (
	tagRe  = regexp.MustCompile(`^[a-z][a-z0-9]*$`)
	lineRe = regexp.MustCompile(`^(p|r|table|tr|td|th|list)(?:\[style-name=['"]([^'"]*)['"]\])?\s*=>\s*([a-z][a-z0-9]*)(?:\.fresh)?(?:\(class=['"]([^'"]*)['"]\))?$`)
)

// Validate checks kinds and tag names.
func (m StyleMap) Validate() error {
	for i, r := range m {
		switch r.Kind {
		case KindParagraph, KindRun, KindTable, KindRow, KindCell, KindHeaderCell, KindList:
		default:
			return fmt.Errorf("style map rule %d: unknown kind %q", i+1, r.Kind)
		}
		if !tagRe.MatchString(r.Tag) {
			return fmt.Errorf("style map rule %d: invalid tag %q", i+1, r.Tag)
		}
		switch r.Tag {
		case "script", "style", "iframe", "object", "embed":
			return fmt.Errorf("style map rule %d: tag %q is not allowed", i+1, r.Tag)
		}
	}
	return nil
}

// ParseStyleMap reads rules in arrow syntax, one per line:
//
//	p[style-name='Heading 1'] => h1.fresh(class='text-3xl font-bold')
//	table => table.fresh(class='table-auto')
//
// Blank lines and lines starting with '#' are ignored.
func ParseStyleMap(src string) (StyleMap, error) {
	var m StyleMap
	sc := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sub := lineRe.FindStringSubmatch(line)
		if sub == nil {
			return nil, fmt.Errorf("style map line %d: cannot parse %q", lineNo, line)
		}
		m = append(m, Rule{Kind: Kind(sub[1]), StyleName: sub[2], Tag: sub[3], Classes: classes(sub[4])})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadStyleMapFile reads a style map from YAML (.yaml/.yml) or arrow syntax.
func LoadStyleMapFile(path string) (StyleMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		var m StyleMap
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("parse style map yaml: %w", err)
		}
		if err := m.Validate(); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return ParseStyleMap(string(b))
	}
}
