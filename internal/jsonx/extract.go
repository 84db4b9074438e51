// Package jsonx recovers JSON values from LLM output that may be wrapped in
// prose, markdown fences, or other non-JSON text.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"
)

// excerptLen bounds how much raw model output is exposed in diagnostics.
const excerptLen = 200

// MalformedOutputError reports that no extraction strategy recovered a JSON
// value from the model's output. Raw holds the full offending text; callers
// should log Excerpt, never Raw, in user-facing messages.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return "jsonx: model output contains no parseable JSON"
}

// Excerpt returns the leading slice of the offending text for diagnostics.
func (e *MalformedOutputError) Excerpt() string {
	if len(e.Raw) <= excerptLen {
		return e.Raw
	}
	return e.Raw[:excerptLen]
}

var fencedObjectRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// leadingProseRe matches a short explanatory prefix like "Here's the JSON:".
var leadingProseRe = regexp.MustCompile(`^\s*[\w\s]*:\s*`)

// Extract recovers a single JSON value from text using a cascade of
// strategies, first success wins:
//
//  1. parse the entire text
//  2. parse the span from the first '{' to the last '}'
//  3. parse the span from the first '[' to the last ']'
//  4. parse the object inside a fenced code block
//  5. strip prose and fences, then isolate the first brace-balanced object
//
// Models reliably produce JSON-like text wrapped in commentary; the cascade
// accepts a small false-positive risk in exchange for recovering structure
// without a model retry.
func Extract(text string) (any, error) {
	if v, ok := tryParse(text); ok {
		return v, nil
	}

	if v, ok := parseSpan(text, '{', '}'); ok {
		return v, nil
	}

	if v, ok := parseSpan(text, '[', ']'); ok {
		return v, nil
	}

	if m := fencedObjectRe.FindStringSubmatch(text); m != nil {
		if v, ok := tryParse(m[1]); ok {
			return v, nil
		}
	}

	if v, ok := parseBalanced(text); ok {
		return v, nil
	}

	return nil, &MalformedOutputError{Raw: text}
}

func tryParse(s string) (any, bool) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return nil, false
	}
	return v, true
}

// parseSpan parses the inclusive substring between the first open and last
// close delimiter.
func parseSpan(text string, open, close byte) (any, bool) {
	first := strings.IndexByte(text, open)
	last := strings.LastIndexByte(text, close)
	if first < 0 || last <= first {
		return nil, false
	}
	return tryParse(text[first : last+1])
}

// parseBalanced strips fences and a leading explanatory sentence, then scans
// line-by-line tracking brace balance to isolate the first complete object.
func parseBalanced(text string) (any, bool) {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = leadingProseRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	lines := strings.Split(cleaned, "\n")
	start := -1
	depth := 0

	for i, line := range lines {
		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")

		if start < 0 {
			if opens == 0 {
				continue
			}
			start = i
			depth = opens - closes
			if depth == 0 {
				if v, ok := tryParse(line); ok {
					return v, true
				}
				start = -1
			}
			continue
		}

		depth += opens - closes
		if depth == 0 {
			block := strings.Join(lines[start:i+1], "\n")
			return tryParse(block)
		}
	}

	return nil, false
}
