// Package prompt builds the instruction sent to the model for one
// transformation. Build is pure: same template and input, same prompt.
package prompt

import (
	"strings"

	"github.com/hyperifyio/restyle/internal/template"
)

// Section labels. Tests and the stub server key on them.
const (
	LabelTemplateMarkup = "Template (with formatting):"
	LabelTemplateText   = "Plain template text:"
	LabelTemplate       = "Template:"
	LabelUserInput      = "User Input:"
)

// VocabularyEntry names one group of styling utility classes the model may use.
type VocabularyEntry struct {
	Purpose  string
	Examples []string
}

// Vocabulary is the styling class vocabulary shared by the style map and the
// markup prompt.
var Vocabulary = []VocabularyEntry{
	{"font styles and sizes", []string{"text-xs", "text-sm", "text-base", "text-lg", "text-xl", "text-2xl", "text-3xl"}},
	{"font weights", []string{"font-normal", "font-semibold", "font-bold"}},
	{"text styling", []string{"italic", "underline"}},
	{"spacing", []string{"mb-2", "mb-4", "mt-6", "p-4", "space-y-4"}},
	{"text colors", []string{"text-gray-700", "text-blue-600"}},
	{"backgrounds if needed", []string{"bg-white", "bg-gray-50"}},
}

const preamble = "You are a text transformation assistant."

// Build returns the instruction for transforming input into the style of t.
// Templates with styled markup get a markup-reproducing instruction; others
// get a plain prose one. input is assumed non-blank.
func Build(t template.Template, input string) string {
	if t.HasMarkup() {
		return buildMarkup(t, input)
	}
	return buildPlain(t, input)
}

func buildMarkup(t template.Template, input string) string {
	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString(" Your task is to transform the user's input according to the template's style, structure, format, and VISUAL FORMATTING (fonts, sizes, spacing, bold, italic, colors).")
	sb.WriteString("\n\nCRITICAL: Return the transformed text as HTML that preserves all the formatting from the template using Tailwind CSS utility classes:")
	for _, v := range Vocabulary {
		sb.WriteString("\n- Use Tailwind classes for ")
		sb.WriteString(v.Purpose)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(v.Examples, ", "))
		sb.WriteString(", etc.)")
	}
	sb.WriteString("\n- Use the same semantic HTML tags as the template (h1, h2, h3, p, ul, ol, li, blockquote, pre, table, etc.)")
	sb.WriteString("\n- DO NOT use inline styles")
	sb.WriteString("\n- Return clean, semantic HTML with Tailwind classes only")
	sb.WriteString("\n\nUse the formatted template as the formatting reference and the plain template text as the structural reference.")
	sb.WriteString("\n\n")
	sb.WriteString(LabelTemplateMarkup)
	sb.WriteString("\n")
	sb.WriteString(t.StyledMarkup)
	sb.WriteString("\n\n")
	sb.WriteString(LabelTemplateText)
	sb.WriteString("\n")
	sb.WriteString(t.Content)
	sb.WriteString("\n\n")
	sb.WriteString(LabelUserInput)
	sb.WriteString("\n")
	sb.WriteString(input)
	sb.WriteString("\n\nTransform the user input to match the template's style and formatting.")
	sb.WriteString(" Return ONLY the transformed HTML: no explanations, no prose outside the HTML, and no code fences.")
	return sb.String()
}

func buildPlain(t template.Template, input string) string {
	var sb strings.Builder
	sb.WriteString(preamble)
	sb.WriteString(" You will receive a template and user input. Transform the user's input according to the template's style, structure, and format.")
	sb.WriteString(" Maintain the essence of the user's input while adapting it to match the template's characteristics including spacing, paragraph structure, and tone.")
	sb.WriteString("\n\n")
	sb.WriteString(LabelTemplate)
	sb.WriteString("\n")
	sb.WriteString(t.Content)
	sb.WriteString("\n\n")
	sb.WriteString(LabelUserInput)
	sb.WriteString("\n")
	sb.WriteString(input)
	sb.WriteString("\n\nReturn only the transformed text as plain prose, without markup or commentary.")
	return sb.String()
}
