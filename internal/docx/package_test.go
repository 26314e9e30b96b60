package docx

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func withMaxPartSize(t *testing.T, n int64) {
	t.Helper()
	old := MaxPartSize
	MaxPartSize = n
	t.Cleanup(func() { MaxPartSize = old })
}

func TestConvert_RejectsOversizedPart(t *testing.T) {
	data := buildDocx(t, strings.Repeat(para("", strings.Repeat("a", 512)), 64))
	withMaxPartSize(t, 4<<10)
	_, err := NewConverter(nil).Convert(data)
	if !errors.Is(err, ErrPartTooLarge) {
		t.Fatalf("expected ErrPartTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), partDocument) {
		t.Fatalf("error should name the part: %v", err)
	}
}

func TestLimitedPart_StopsPastLimit(t *testing.T) {
	over := &limitedPart{ReadCloser: io.NopCloser(strings.NewReader(strings.Repeat("a", 10))), name: "x", left: 4}
	if _, err := io.ReadAll(over); !errors.Is(err, ErrPartTooLarge) {
		t.Fatalf("expected ErrPartTooLarge, got %v", err)
	}

	exact := &limitedPart{ReadCloser: io.NopCloser(strings.NewReader("abcd")), name: "x", left: 4}
	b, err := io.ReadAll(exact)
	if err != nil || string(b) != "abcd" {
		t.Fatalf("got %q err=%v", b, err)
	}
}
