package render

import (
	"bufio"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders output as a simple A4 PDF at outPath. Markup headings get
// larger bold type; everything else flows as paragraphs. This does not try
// to reproduce the presentation classes.
func WritePDF(text string, mode Mode, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// core fonts are cp1252; translate so accented text survives
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	if mode == ModeMarkup {
		for _, b := range Blocks(text) {
			switch b.Tag {
			case "h1", "h2", "h3", "h4", "h5", "h6":
				size := 16.0
				switch b.Tag {
				case "h2":
					size = 14
				case "h3", "h4", "h5", "h6":
					size = 12
				}
				pdf.SetFont("Helvetica", "B", size)
				pdf.MultiCell(0, 8, tr(b.Text), "", "L", false)
				pdf.SetFont("Helvetica", "", 11)
			case "pre":
				pdf.SetFont("Courier", "", 10)
				pdf.MultiCell(0, 5, tr(b.Text), "", "L", false)
				pdf.SetFont("Helvetica", "", 11)
			case "blockquote":
				pdf.SetFont("Helvetica", "I", 11)
				pdf.MultiCell(0, 5, tr(b.Text), "", "L", false)
				pdf.SetFont("Helvetica", "", 11)
			case "li":
				pdf.MultiCell(0, 5, tr("- "+b.Text), "", "L", false)
			default:
				pdf.MultiCell(0, 5, tr(b.Text), "", "L", false)
			}
			pdf.Ln(3)
		}
		return pdf.OutputFileAndClose(outPath)
	}

	// render line by line to avoid huge paragraphs
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}
