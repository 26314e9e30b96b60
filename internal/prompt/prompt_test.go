package prompt

import (
	"strings"
	"testing"

	"github.com/hyperifyio/restyle/internal/template"
)

func TestBuild_MarkupTemplate(t *testing.T) {
	tpl := template.Template{ID: "1", Name: "t.docx", Content: "Title\n\n", StyledMarkup: "<h1 class='text-3xl'>Title</h1>"}
	got := Build(tpl, "my new title")
	for _, want := range []string{
		"<h1 class='text-3xl'>Title</h1>",
		"Title\n\n",
		"my new title",
		LabelTemplateMarkup,
		LabelTemplateText,
		LabelUserInput,
		"DO NOT use inline styles",
		"Return ONLY the transformed HTML",
		"no code fences",
		"font-semibold",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("prompt missing %q:\n%s", want, got)
		}
	}
	// markup, then plain text, then input
	im := strings.Index(got, LabelTemplateMarkup)
	it := strings.Index(got, LabelTemplateText)
	iu := strings.Index(got, LabelUserInput)
	if !(im < it && it < iu) {
		t.Fatalf("unexpected section order: %d %d %d", im, it, iu)
	}
}

func TestBuild_PlainTemplate(t *testing.T) {
	tpl := template.Template{ID: "1", Name: "notes.txt", Content: "Dear team,\n\nShort note."}
	got := Build(tpl, "we ship friday")
	if !strings.Contains(got, "Dear team,\n\nShort note.") || !strings.Contains(got, "we ship friday") {
		t.Fatalf("prompt missing template or input:\n%s", got)
	}
	if strings.Contains(got, LabelTemplateMarkup) || strings.Contains(got, "Tailwind") {
		t.Fatalf("plain prompt must not ask for markup:\n%s", got)
	}
	if !strings.Contains(got, "plain prose") {
		t.Fatalf("plain prompt should ask for plain prose")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	tpl := template.Template{Content: "x", StyledMarkup: "<p>x</p>"}
	if Build(tpl, "y") != Build(tpl, "y") {
		t.Fatalf("Build must be a pure function of its inputs")
	}
}
