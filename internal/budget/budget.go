// Package budget estimates whether a prompt fits a model's context window.
package budget

import (
	"math"
	"strings"
)

// EstimateTokensFromChars converts a character count into an estimated token
// count using a conservative heuristic (~4 chars per token in English). The
// result is always at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / 4.0))
}

// EstimateTokens returns the estimated token count of the given messages.
func EstimateTokens(messages ...string) int {
	total := 0
	for _, m := range messages {
		total += EstimateTokensFromChars(len(m))
	}
	return total
}

// ModelContextTokens returns an estimated maximum context window for a given
// model name. Unknown models fall back to a conservative default.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	// OpenAI-compatible gateways prefix ids with "models/" or a vendor path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return 8192
	}
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	for _, p := range familyPrefixes {
		if strings.HasPrefix(name, p.prefix) {
			return p.tokens
		}
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"):
		return 128_000
	}
	return 8192
}

// HeadroomTokens returns a safety margin for tokenizer and message framing
// overheads: the larger of 5% of the context or 512 tokens.
func HeadroomTokens(modelName string) int {
	max := ModelContextTokens(modelName)
	dyn := int(math.Ceil(float64(max) * 0.05))
	if dyn < 512 {
		return 512
	}
	return dyn
}

// RemainingContext computes the input tokens left after the prompt, the
// output reservation and the headroom. The result is never negative.
func RemainingContext(modelName string, reservedForOutput int, promptTokens int) int {
	if reservedForOutput < 0 {
		reservedForOutput = 0
	}
	remaining := ModelContextTokens(modelName) - HeadroomTokens(modelName) - reservedForOutput - promptTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}

// FitsInContext reports whether the prompt fits the model's context when
// reserving the specified number of output tokens.
func FitsInContext(modelName string, reservedForOutput int, promptTokens int) bool {
	return RemainingContext(modelName, reservedForOutput, promptTokens) > 0
}

// knownModelMax contains rough context sizes for common model identifiers.
var knownModelMax = map[string]int{
	"gemini-2.0-flash-001": 1_048_576,
	"gemini-1.5-pro":       2_097_152,
	"gpt-4o":               128_000,
	"gpt-4o-mini":          128_000,
	"gpt-3.5-turbo":        16_384,
	"llama-3":              8_192,
	"llama-3.1":            128_000,
}

var familyPrefixes = []struct {
	prefix string
	tokens int
}{
	{"gemini-", 1_048_576},
	{"gpt-4o", 128_000},
	{"claude-3", 200_000},
}
