package extract

import "fmt"

// InvalidFileError reports an upload that is neither plain text nor a
// word-processor package.
type InvalidFileError struct {
	Name      string
	MediaType string
}

func (e *InvalidFileError) Error() string {
	if e.MediaType != "" {
		return fmt.Sprintf("invalid file %q (%s): upload a .txt or .docx file", e.Name, e.MediaType)
	}
	return fmt.Sprintf("invalid file %q: upload a .txt or .docx file", e.Name)
}

// DocumentParseError reports a word-processor upload that could not be parsed.
type DocumentParseError struct {
	Name string
	Err  error
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("parse document %q: %v", e.Name, e.Err)
}

func (e *DocumentParseError) Unwrap() error { return e.Err }
