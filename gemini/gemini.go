// Package gemini implements the language-model steps of stackdoc using
// Google Gemini: structuring page prose into a document tree and parsing
// free-text tool descriptions into metadata.
package gemini

import (
	"strings"

	"github.com/fwojciec/stackdoc"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Sampling temperatures. Structuring writes prose so it runs warmer;
// parsing extracts fields and runs cold.
const (
	structureTemperature = float32(0.7)
	convertTemperature   = float32(0.2)
	parseTemperature     = float32(0.1)
)

// maxOutputTokens caps every generation call.
const maxOutputTokens = 4096

// unavailable maps a client or transport failure to EUNAVAILABLE.
func unavailable(op string, err error) error {
	return stackdoc.Errorf(stackdoc.EUNAVAILABLE, "%s: %v", op, err)
}

// systemInstruction wraps text as a system instruction.
func systemInstruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: text}}}
}

// userContent wraps text as the single user turn of a request.
func userContent(text string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}
}

// stripFences removes a surrounding markdown code fence, which models add
// to JSON output now and then even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
