// Package llmparse extracts a JSON value out of raw LLM completion
// text that may be wrapped in markdown fences or surrounded by prose.
// Balances both '{' and '[' so object- and array-shaped responses
// (AutoTagger's tag map, HierarchySuggester's relationship list) share
// one extraction routine.
package llmparse

import "strings"

// ExtractJSONObject returns the first balanced {...} substring of s,
// or "" if none is found.
func ExtractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// ExtractJSONArray returns the first balanced [...] substring of s, or
// "" if none is found.
func ExtractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// Clamp01 clamps a confidence value into [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
