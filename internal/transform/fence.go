package transform

import "strings"

const fence = "```"

// StripFences removes one code-fence marker from the start of s (with its
// optional language tag) and one from the end. Fences elsewhere in the body
// are kept. Whitespace is only trimmed on a side where a fence was found.
func StripFences(s string) string {
	if lead := strings.TrimLeft(s, " \t\r\n"); strings.HasPrefix(lead, fence) {
		rest := lead[len(fence):]
		s = rest[langTagLen(rest):]
	}
	if trail := strings.TrimRight(s, " \t\r\n"); strings.HasSuffix(trail, fence) {
		s = trail[:len(trail)-len(fence)]
	}
	return s
}

// langTagLen returns the length of the language tag after an opening fence.
// A tag is a single token ending the fence line; anything else on that line
// is content and yields zero.
func langTagLen(s string) int {
	i := 0
	for i < len(s) && isTagByte(s[i]) {
		i++
	}
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	if i < len(s) && s[i] != '\n' && s[i] != '\r' {
		return 0
	}
	return i
}

func isTagByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '+', c == '_', c == '.':
		return true
	}
	return false
}
