package extract

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText decodes a plain-text upload. Valid UTF-8 without a byte order
// mark is returned unchanged; otherwise a BOM selects UTF-8 or UTF-16 and
// invalid sequences become U+FFFD.
func DecodeText(b []byte) string {
	if utf8.Valid(b) && !bytes.HasPrefix(b, utf8BOM) {
		return string(b)
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
