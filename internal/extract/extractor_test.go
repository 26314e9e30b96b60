package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperifyio/restyle/internal/docx"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name, mediaType string
		want            Format
		ok              bool
	}{
		{"notes.txt", "", FormatText, true},
		{"NOTES.TXT", "", FormatText, true},
		{"blob", "text/plain; charset=utf-8", FormatText, true},
		{"report.docx", "", FormatDocx, true},
		{"download", MediaTypeDocx, FormatDocx, true},
		{"image.png", "image/png", "", false},
		{"archive.doc", "application/msword", "", false},
	}
	for _, tc := range cases {
		got, err := Classify(tc.name, tc.mediaType)
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%s: got %q err=%v", tc.name, got, err)
			}
			continue
		}
		var inv *InvalidFileError
		if !errors.As(err, &inv) {
			t.Fatalf("%s: expected InvalidFileError, got %v", tc.name, err)
		}
	}
}

func TestExtract_PlainTextIsVerbatim(t *testing.T) {
	e := NewExtractor(nil)
	doc, err := e.Extract(context.Background(), Upload{Name: "notes.txt", Data: []byte("Hello world")})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Text != "Hello world" || doc.Markup != "" || doc.Format != FormatText {
		t.Fatalf("unexpected document: %+v", doc)
	}

	raw := []byte("  spaced\r\n\ttabs\n\n")
	doc, err = e.Extract(context.Background(), Upload{Name: "a.txt", Data: raw})
	if err != nil || doc.Text != string(raw) {
		t.Fatalf("expected verbatim text, got %q err=%v", doc.Text, err)
	}
}

func TestDecodeText_ByteOrderMarks(t *testing.T) {
	utf16le := []byte{0xFF, 0xFE, 'H', 0, 'i', 0}
	if got := DecodeText(utf16le); got != "Hi" {
		t.Fatalf("utf-16le: got %q", got)
	}
	withBOM := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Hi")...)
	if got := DecodeText(withBOM); got != "Hi" {
		t.Fatalf("utf-8 bom: got %q", got)
	}
}

func TestExtract_InvalidType(t *testing.T) {
	_, err := NewExtractor(nil).Extract(context.Background(), Upload{Name: "image.png", MediaType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	var inv *InvalidFileError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidFileError, got %v", err)
	}
}

func TestExtract_MalformedDocx(t *testing.T) {
	_, err := NewExtractor(nil).Extract(context.Background(), Upload{Name: "broken.docx", Data: []byte("not a zip")})
	var perr *DocumentParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected DocumentParseError, got %v", err)
	}
	if perr.Name != "broken.docx" || perr.Unwrap() == nil {
		t.Fatalf("unexpected error payload: %+v", perr)
	}
}

func TestExtract_OversizedDocxPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/document.xml")
	_, _ = f.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Repeat(`<w:p><w:r><w:t>padding</w:t></w:r></w:p>`, 200) + `</w:body></w:document>`))
	_ = zw.Close()

	old := docx.MaxPartSize
	docx.MaxPartSize = 1 << 10
	t.Cleanup(func() { docx.MaxPartSize = old })

	_, err := NewExtractor(nil).Extract(context.Background(), Upload{Name: "bomb.docx", Data: buf.Bytes()})
	var perr *DocumentParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected DocumentParseError, got %v", err)
	}
	if !errors.Is(err, docx.ErrPartTooLarge) {
		t.Fatalf("expected ErrPartTooLarge in chain, got %v", err)
	}
}

func TestExtract_Docx(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("word/document.xml")
	_, _ = f.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Body</w:t></w:r></w:p></w:body></w:document>`))
	s, _ := zw.Create("word/styles.xml")
	_, _ = s.Write([]byte(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
		`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style></w:styles>`))
	_ = zw.Close()

	doc, err := NewExtractor(nil).Extract(context.Background(), Upload{Name: "t.docx", Data: buf.Bytes()})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if doc.Format != FormatDocx {
		t.Fatalf("format: %s", doc.Format)
	}
	if doc.Text != "Title\n\nBody\n\n" {
		t.Fatalf("text: %q", doc.Text)
	}
	want := `<h1 class="text-3xl font-bold text-gray-900 mb-4">Title</h1><p class="text-base text-gray-700 leading-relaxed mb-4">Body</p>`
	if doc.Markup != want {
		t.Fatalf("markup: %s", doc.Markup)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewExtractor(nil).Extract(ctx, Upload{Name: "a.txt", Data: []byte("x")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
