// Package extract turns an uploaded template file into plain text and,
// for word-processor packages, styled markup.
package extract

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/restyle/internal/docx"
)

// Format classifies an upload.
type Format string

const (
	FormatText Format = "text"
	FormatDocx Format = "docx"
)

const (
	MediaTypeText = "text/plain"
	MediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Upload is a raw uploaded file.
type Upload struct {
	Name      string
	MediaType string
	Data      []byte
}

// Document is the outcome of a successful extraction. Markup is empty when the
// source carries no styling (plain text).
type Document struct {
	Format Format
	Text   string
	Markup string
}

// Extractor converts an upload into a Document. Implementations must return
// both renditions from the same source or fail.
type Extractor interface {
	Extract(ctx context.Context, up Upload) (Document, error)
}

// Classify determines the format from the declared media type or the file
// extension. Anything else is an *InvalidFileError.
func Classify(name, mediaType string) (Format, error) {
	mt := ""
	if strings.TrimSpace(mediaType) != "" {
		if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
			mt = parsed
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".docx" || mt == MediaTypeDocx:
		return FormatDocx, nil
	case ext == ".txt" || mt == MediaTypeText:
		return FormatText, nil
	}
	return "", &InvalidFileError{Name: name, MediaType: mediaType}
}

// DefaultExtractor handles .txt and .docx uploads.
type DefaultExtractor struct {
	Converter *docx.Converter
}

// NewExtractor returns a DefaultExtractor using the given style map (the
// default map when empty).
func NewExtractor(styles docx.StyleMap) *DefaultExtractor {
	return &DefaultExtractor{Converter: docx.NewConverter(styles)}
}

func (e *DefaultExtractor) Extract(ctx context.Context, up Upload) (Document, error) {
	format, err := Classify(up.Name, up.MediaType)
	if err != nil {
		return Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	switch format {
	case FormatDocx:
		conv := e.Converter
		if conv == nil {
			conv = docx.NewConverter(nil)
		}
		res, err := conv.Convert(up.Data)
		if err != nil {
			return Document{}, &DocumentParseError{Name: up.Name, Err: err}
		}
		return Document{Format: FormatDocx, Text: res.Text, Markup: res.Markup}, nil
	default:
		return Document{Format: FormatText, Text: DecodeText(up.Data)}, nil
	}
}
