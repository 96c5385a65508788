// Package parse extracts structured output from raw model text. The
// endpoint is not a reliable JSON emitter, so extraction is lenient:
// code fences and surrounding prose are tolerated and parse failure
// degrades to an empty object, never an error.
package parse

import (
	"encoding/json"
	"strings"
)

// #region marker

const responseMarker = "RESPONSE:"

// splitMarker divides raw text at the first case-insensitive RESPONSE:
// marker. Without a marker the whole text is the JSON candidate and the
// reply is empty. The scan folds ASCII bytes only: Unicode case mapping
// is not length-preserving, so indexing into a ToUpper copy would shift
// the split point on non-ASCII text.
func splitMarker(raw string) (candidate, reply string) {
	idx := indexFoldASCII(raw, responseMarker)
	if idx < 0 {
		return raw, ""
	}
	return raw[:idx], strings.TrimSpace(raw[idx+len(responseMarker):])
}

// indexFoldASCII returns the index of the first ASCII-case-insensitive
// occurrence of marker in s, or -1. marker must be upper-case ASCII.
func indexFoldASCII(s, marker string) int {
	for i := 0; i+len(marker) <= len(s); i++ {
		j := 0
		for ; j < len(marker); j++ {
			c := s[i+j]
			if 'a' <= c && c <= 'z' {
				c -= 'a' - 'A'
			}
			if c != marker[j] {
				break
			}
		}
		if j == len(marker) {
			return i
		}
	}
	return -1
}

// #endregion marker

// #region fences

// stripFences removes markdown code-fence lines, leaving the fenced
// content intact.
func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}

// #endregion fences

// #region extract

// extractObject returns the first brace-balanced {...} span in text, or
// "" when none exists. Braces inside JSON strings are ignored; braces
// before the first top-level '{' cannot occur by construction of the scan.
func extractObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// #endregion extract

// #region parse

// Parse splits raw model output into a structured object and an optional
// free-text reply. The object is empty when no valid JSON is found; the
// call still counts as a success for the caller.
func Parse(raw string) (model map[string]interface{}, reply string) {
	candidate, reply := splitMarker(raw)
	candidate = stripFences(candidate)

	model = map[string]interface{}{}
	span := extractObject(candidate)
	if span == "" {
		return model, reply
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return model, reply
	}
	return parsed, reply
}

// #endregion parse
