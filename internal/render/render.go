// Package render presents transformation output: as an HTML fragment, in a
// terminal, or as a PDF.
package render

import "html"

// Mode selects how output text is interpreted.
type Mode int

const (
	// ModePlain treats the text as opaque preformatted prose.
	ModePlain Mode = iota
	// ModeMarkup treats the text as styled markup.
	ModeMarkup
)

// ModeFor returns the mode matching a template with or without markup.
func ModeFor(hasMarkup bool) Mode {
	if hasMarkup {
		return ModeMarkup
	}
	return ModePlain
}

const preClasses = "whitespace-pre-wrap font-sans text-sm leading-relaxed"

// Fragment renders text as an HTML fragment. Markup is passed through
// Sanitize unless trusted is set, in which case it is emitted verbatim.
func Fragment(text string, mode Mode, trusted bool) string {
	if mode == ModeMarkup {
		if trusted {
			return text
		}
		return Sanitize(text)
	}
	return `<pre class="` + preClasses + `">` + html.EscapeString(text) + `</pre>`
}

// PlainText returns the text a user would copy: markup is flattened to
// readable text, plain output is returned as is.
func PlainText(text string, mode Mode) string {
	if mode == ModeMarkup {
		return TextFromMarkup(text)
	}
	return text
}
