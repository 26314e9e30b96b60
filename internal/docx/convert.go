package docx

import (
	"html"
	"strconv"
	"strings"
)

// Result holds both renditions of one package. They come from a single parse
// so they always describe the same document.
type Result struct {
	Markup string
	Text   string
}

// Converter renders word-processor packages using a style map.
type Converter struct {
	Styles StyleMap
}

// NewConverter returns a Converter using m, or the default map when m is empty.
func NewConverter(m StyleMap) *Converter {
	if len(m) == 0 {
		m = DefaultStyleMap()
	}
	return &Converter{Styles: m}
}

// Convert parses data as an OOXML package and renders it.
func (c *Converter) Convert(data []byte) (Result, error) {
	pkg, err := OpenPackage(data)
	if err != nil {
		return Result{}, err
	}
	body, err := pkg.body()
	if err != nil {
		return Result{}, err
	}
	styles := c.Styles
	if len(styles) == 0 {
		styles = DefaultStyleMap()
	}
	w := &walker{
		rules:     styles,
		styles:    pkg.styleSheet(),
		numbering: pkg.numberingDefs(),
		rels:      pkg.relationships(),
	}
	w.blocks(body)
	w.closeLists()
	return Result{Markup: w.markup.String(), Text: w.text.String()}, nil
}

type walker struct {
	rules     StyleMap
	styles    *styleSheet
	numbering *numberingDefs
	rels      *relationships

	markup strings.Builder
	text   strings.Builder

	// open list tags, outermost first; every open level has an open <li>
	lists []string
	// inside a hyperlink, run rules that emit <a> are not applied again
	inLink bool
}

// skipped elements carry no visible text of their own.
var skipped = map[string]bool{
	"sectPr": true, "pPr": true, "rPr": true, "tblPr": true, "tblGrid": true,
	"trPr": true, "tcPr": true, "del": true, "moveFrom": true, "drawing": true,
	"pict": true, "object": true, "AlternateContent": true, "instrText": true,
	"fldChar": true, "bookmarkStart": true, "bookmarkEnd": true, "proofErr": true,
	"commentRangeStart": true, "commentRangeEnd": true, "commentReference": true,
	"footnoteReference": true, "endnoteReference": true, "lastRenderedPageBreak": true,
}

func (w *walker) blocks(n *node) {
	for _, c := range n.children {
		switch {
		case c.name == "p":
			w.paragraph(c)
		case c.name == "tbl":
			w.closeLists()
			w.table(c)
		case skipped[c.name]:
		default:
			// sdt, sdtContent, customXml, ins and similar wrappers
			w.blocks(c)
		}
	}
}

func (w *walker) paragraph(p *node) {
	props := p.child("pPr")
	styleName := w.styles.defaultParagraph
	if id, ok := props.val("pStyle"); ok && id != "" {
		styleName = w.styles.name(id)
	}
	inner, plain := w.inline(p)
	w.text.WriteString(plain)
	w.text.WriteString("\n\n")

	if props != nil {
		if numPr := props.child("numPr"); numPr != nil {
			numID, _ := numPr.val("numId")
			ilvl, _ := numPr.val("ilvl")
			if numID != "" && numID != "0" {
				level, _ := strconv.Atoi(ilvl)
				w.listItem(level, w.listRule(styleName, w.numbering.ordered(numID, ilvl)), inner)
				return
			}
		}
	}
	w.closeLists()
	if inner == "" {
		return
	}
	rule, ok := w.rules.Lookup(KindParagraph, styleName)
	if !ok {
		rule = Rule{Tag: "p"}
	}
	w.markup.WriteString(openTag(rule.Tag, rule.Classes, nil))
	w.markup.WriteString(inner)
	w.markup.WriteString(closeTag(rule.Tag))
}

// listRule resolves the container rule for a list paragraph: a rule naming
// the paragraph style wins, then the numbered-list rule for counting formats,
// then the plain list rule.
func (w *walker) listRule(styleName string, ordered bool) Rule {
	if styleName != "" {
		if r, ok := w.rules.Lookup(KindList, styleName); ok {
			return r
		}
	}
	if ordered {
		if r, ok := w.rules.Lookup(KindList, NumberedListStyle); ok {
			return r
		}
		return Rule{Kind: KindList, Tag: "ol"}
	}
	if r, ok := w.rules.Lookup(KindList, ""); ok {
		return r
	}
	return Rule{Kind: KindList, Tag: "ul"}
}

func (w *walker) listItem(level int, rule Rule, inner string) {
	depth := level + 1
	for len(w.lists) > depth {
		w.popList()
	}
	// a change of list type at the same level starts a new list
	if len(w.lists) == depth && w.lists[depth-1] != rule.Tag {
		w.popList()
	}
	if len(w.lists) == depth {
		w.markup.WriteString("</li>")
	}
	for len(w.lists) < depth {
		w.markup.WriteString(openTag(rule.Tag, rule.Classes, nil))
		w.lists = append(w.lists, rule.Tag)
		if len(w.lists) < depth {
			w.markup.WriteString("<li>")
		}
	}
	w.markup.WriteString("<li>")
	w.markup.WriteString(inner)
}

func (w *walker) popList() {
	tag := w.lists[len(w.lists)-1]
	w.lists = w.lists[:len(w.lists)-1]
	w.markup.WriteString("</li>")
	w.markup.WriteString(closeTag(tag))
}

func (w *walker) closeLists() {
	for len(w.lists) > 0 {
		w.popList()
	}
}

func (w *walker) structural(kind Kind, tag string) Rule {
	if r, ok := w.rules.Lookup(kind, ""); ok {
		return r
	}
	return Rule{Kind: kind, Tag: tag}
}

func (w *walker) table(tbl *node) {
	tr := w.structural(KindTable, "table")
	w.markup.WriteString(openTag(tr.Tag, tr.Classes, nil))
	for _, row := range tbl.children {
		if row.name != "tr" {
			continue
		}
		header := false
		if trPr := row.child("trPr"); trPr != nil {
			if v, ok := trPr.val("tblHeader"); ok && isTrue(v) {
				header = true
			}
		}
		rr := w.structural(KindRow, "tr")
		w.markup.WriteString(openTag(rr.Tag, rr.Classes, nil))
		for _, cell := range row.children {
			if cell.name != "tc" {
				continue
			}
			cr := w.structural(KindCell, "td")
			if header {
				cr = w.structural(KindHeaderCell, "th")
			}
			var attrs [][2]string
			if tcPr := cell.child("tcPr"); tcPr != nil {
				if span, ok := tcPr.val("gridSpan"); ok {
					if n, err := strconv.Atoi(span); err == nil && n > 1 {
						attrs = append(attrs, [2]string{"colspan", span})
					}
				}
			}
			w.markup.WriteString(openTag(cr.Tag, cr.Classes, attrs))
			outer := w.lists
			w.lists = nil
			w.blocks(cell)
			w.closeLists()
			w.lists = outer
			w.markup.WriteString(closeTag(cr.Tag))
		}
		w.markup.WriteString(closeTag(rr.Tag))
	}
	w.markup.WriteString(closeTag(tr.Tag))
}

// runFormat identifies runs that render with the same wrappers; adjacent runs
// with equal formats merge into one element.
type runFormat struct {
	style        string
	bold, italic bool
}

func (w *walker) inline(n *node) (string, string) {
	var markup, plain strings.Builder
	var pending strings.Builder
	var pendingFmt runFormat
	hasPending := false

	flush := func() {
		if !hasPending {
			return
		}
		markup.WriteString(w.wrapRun(pendingFmt, pending.String()))
		pending.Reset()
		hasPending = false
	}

	for _, c := range n.children {
		switch {
		case c.name == "r":
			f := w.runFormat(c)
			m, t := w.runContent(c)
			plain.WriteString(t)
			if m == "" {
				continue
			}
			if hasPending && f != pendingFmt {
				flush()
			}
			pendingFmt = f
			pending.WriteString(m)
			hasPending = true
		case c.name == "hyperlink":
			flush()
			wasInLink := w.inLink
			w.inLink = true
			im, it := w.inline(c)
			w.inLink = wasInLink
			plain.WriteString(it)
			if im == "" {
				continue
			}
			if wasInLink {
				markup.WriteString(im)
				continue
			}
			markup.WriteString(w.link(c, im))
		case skipped[c.name]:
		default:
			flush()
			im, it := w.inline(c)
			markup.WriteString(im)
			plain.WriteString(it)
		}
	}
	flush()
	return markup.String(), plain.String()
}

func (w *walker) link(h *node, inner string) string {
	href := ""
	if id := h.attr("id"); id != "" {
		href = w.rels.target(id)
	}
	if anchor := h.attr("anchor"); anchor != "" && href == "" {
		href = "#" + anchor
	}
	var cls []string
	if r, ok := w.rules.Lookup(KindRun, "Link"); ok && r.Tag == "a" {
		cls = r.Classes
	}
	var attrs [][2]string
	if href != "" {
		attrs = append(attrs, [2]string{"href", href})
	}
	return openTag("a", cls, attrs) + inner + closeTag("a")
}

func (w *walker) runFormat(r *node) runFormat {
	var f runFormat
	props := r.child("rPr")
	if props == nil {
		return f
	}
	if id, ok := props.val("rStyle"); ok && id != "" {
		f.style = w.styles.name(id)
	}
	if v, ok := props.val("b"); ok {
		f.bold = isTrue(v)
	}
	if v, ok := props.val("i"); ok {
		f.italic = isTrue(v)
	}
	return f
}

func (w *walker) runContent(r *node) (string, string) {
	var markup, plain strings.Builder
	for _, c := range r.children {
		switch c.name {
		case "t":
			markup.WriteString(html.EscapeString(c.text))
			plain.WriteString(c.text)
		case "tab":
			markup.WriteString("\t")
			plain.WriteString("\t")
		case "br", "cr":
			markup.WriteString("<br />")
			plain.WriteString("\n")
		case "noBreakHyphen":
			markup.WriteString("-")
			plain.WriteString("-")
		}
	}
	return markup.String(), plain.String()
}

// wrapRun applies the character-style rule outermost, then bold, then italic.
func (w *walker) wrapRun(f runFormat, content string) string {
	if f.italic {
		content = "<em>" + content + "</em>"
	}
	if f.bold {
		content = "<strong>" + content + "</strong>"
	}
	if f.style != "" {
		if r, ok := w.rules.Lookup(KindRun, f.style); ok && !(w.inLink && r.Tag == "a") {
			content = openTag(r.Tag, r.Classes, nil) + content + closeTag(r.Tag)
		}
	}
	return content
}

func openTag(tag string, cls []string, attrs [][2]string) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a[0])
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a[1]))
		b.WriteString(`"`)
	}
	if len(cls) > 0 {
		b.WriteString(` class="`)
		b.WriteString(html.EscapeString(strings.Join(cls, " ")))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	return b.String()
}

func closeTag(tag string) string { return "</" + tag + ">" }
