// Package docx reads word-processor (OOXML) packages and renders them as
// styled markup and as raw text. Only the parts needed for that are read:
// the main document, its styles, numbering definitions and relationships.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	partDocument  = "word/document.xml"
	partStyles    = "word/styles.xml"
	partNumbering = "word/numbering.xml"
	partRels      = "word/_rels/document.xml.rels"
)

// MaxPartSize bounds the decompressed size of any part that is read.
var MaxPartSize int64 = 64 << 20

// ErrPartTooLarge indicates a part that decompresses beyond MaxPartSize.
var ErrPartTooLarge = errors.New("package part exceeds the size limit")

// ErrNotDocument indicates the archive is a zip but holds no main document part.
var ErrNotDocument = errors.New("not a word-processor package: missing " + partDocument)

// Package is an opened OOXML archive indexed by part name.
type Package struct {
	files map[string]*zip.File

	styles    *styleSheet
	numbering *numberingDefs
	rels      *relationships
}

// OpenPackage indexes the archive in data and checks that it carries a main
// document part.
func OpenPackage(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}
	p := &Package{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}
	if _, ok := p.files[partDocument]; !ok {
		return nil, ErrNotDocument
	}
	return p, nil
}

func (p *Package) open(name string) (io.ReadCloser, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	if f.UncompressedSize64 > uint64(MaxPartSize) {
		return nil, fmt.Errorf("part %s: %w", name, ErrPartTooLarge)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	return &limitedPart{ReadCloser: rc, name: name, left: MaxPartSize}, nil
}

// limitedPart fails a read once more than the limit has been decompressed,
// whatever size the archive header declares.
type limitedPart struct {
	io.ReadCloser
	name string
	left int64
}

func (l *limitedPart) Read(b []byte) (int, error) {
	if l.left < 0 {
		return 0, fmt.Errorf("part %s: %w", l.name, ErrPartTooLarge)
	}
	if int64(len(b)) > l.left+1 {
		b = b[:l.left+1]
	}
	n, err := l.ReadCloser.Read(b)
	l.left -= int64(n)
	if l.left < 0 {
		return 0, fmt.Errorf("part %s: %w", l.name, ErrPartTooLarge)
	}
	return n, err
}

func (p *Package) readXML(name string, v any) error {
	rc, err := p.open(name)
	if err != nil {
		return err
	}
	defer rc.Close()
	if err := xml.NewDecoder(rc).Decode(v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// body parses the main document and returns its w:body element.
func (p *Package) body() (*node, error) {
	rc, err := p.open(partDocument)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	root, err := parseTree(rc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", partDocument, err)
	}
	b := root.find("body")
	if b == nil {
		return nil, fmt.Errorf("parsing %s: no body element", partDocument)
	}
	return b, nil
}

// Styles, numbering and relationships are optional parts: a missing or
// malformed part behaves like an empty one.

func (p *Package) styleSheet() *styleSheet {
	if p.styles == nil {
		s := &styleSheet{}
		if err := p.readXML(partStyles, s); err != nil {
			s = &styleSheet{}
		}
		s.index()
		p.styles = s
	}
	return p.styles
}

func (p *Package) numberingDefs() *numberingDefs {
	if p.numbering == nil {
		n := &numberingDefs{}
		if err := p.readXML(partNumbering, n); err != nil {
			n = &numberingDefs{}
		}
		p.numbering = n
	}
	return p.numbering
}

func (p *Package) relationships() *relationships {
	if p.rels == nil {
		r := &relationships{}
		if err := p.readXML(partRels, r); err != nil {
			r = &relationships{}
		}
		p.rels = r
	}
	return p.rels
}

type valAttr struct {
	Val string `xml:"val,attr"`
}

type styleDef struct {
	Type    string   `xml:"type,attr"`
	StyleID string   `xml:"styleId,attr"`
	Default string   `xml:"default,attr"`
	Name    *valAttr `xml:"name"`
}

type styleSheet struct {
	Styles []styleDef `xml:"style"`

	names            map[string]string
	defaultParagraph string
}

func (s *styleSheet) index() {
	s.names = make(map[string]string, len(s.Styles))
	for _, st := range s.Styles {
		name := st.StyleID
		if st.Name != nil && st.Name.Val != "" {
			name = displayName(st.Name.Val)
		}
		s.names[st.StyleID] = name
		if st.Type == "paragraph" && (st.Default == "1" || st.Default == "true") && s.defaultParagraph == "" {
			s.defaultParagraph = name
		}
	}
}

// name resolves a style id to its display name. Ids without a definition
// resolve to themselves.
func (s *styleSheet) name(id string) string {
	if n, ok := s.names[id]; ok {
		return n
	}
	return id
}

// displayName maps the lowercase names Word stores for some built-in styles
// ("heading 1", "normal", "title") to the names shown in its user interface.
func displayName(stored string) string {
	switch {
	case strings.HasPrefix(stored, "heading ") && len(stored) == len("heading ")+1:
		return "Heading " + stored[len("heading "):]
	case stored == "normal", stored == "title", stored == "subtitle", stored == "quote":
		return strings.ToUpper(stored[:1]) + stored[1:]
	}
	return stored
}

type numLevel struct {
	Ilvl   string   `xml:"ilvl,attr"`
	NumFmt *valAttr `xml:"numFmt"`
}

type abstractNum struct {
	ID     string     `xml:"abstractNumId,attr"`
	Levels []numLevel `xml:"lvl"`
}

type numInstance struct {
	NumID    string   `xml:"numId,attr"`
	Abstract *valAttr `xml:"abstractNumId"`
}

type numberingDefs struct {
	Abstract []abstractNum `xml:"abstractNum"`
	Nums     []numInstance `xml:"num"`
}

// ordered reports whether level ilvl of numbering instance numID uses a
// counting format rather than bullets. Unknown numbering is treated as bullets.
func (n *numberingDefs) ordered(numID, ilvl string) bool {
	if ilvl == "" {
		ilvl = "0"
	}
	var absID string
	for _, num := range n.Nums {
		if num.NumID == numID && num.Abstract != nil {
			absID = num.Abstract.Val
			break
		}
	}
	if absID == "" {
		return false
	}
	for _, a := range n.Abstract {
		if a.ID != absID {
			continue
		}
		for _, lvl := range a.Levels {
			if lvl.Ilvl == ilvl && lvl.NumFmt != nil {
				switch lvl.NumFmt.Val {
				case "", "bullet", "none":
					return false
				default:
					return true
				}
			}
		}
	}
	return false
}

type relationship struct {
	ID         string `xml:"Id,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

type relationships struct {
	Items []relationship `xml:"Relationship"`
}

func (r *relationships) target(id string) string {
	for _, rel := range r.Items {
		if rel.ID == id {
			return rel.Target
		}
	}
	return ""
}

// isTrue interprets OOXML on/off values. An absent value means on.
func isTrue(v string) bool {
	switch strings.ToLower(v) {
	case "0", "false", "off", "none":
		return false
	}
	return true
}
