package nlu

import (
	"encoding/json"
	"strings"
)

var quoteNormalizer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	" ", " ",
	"​", "",
)

// extractJSON pulls the first balanced {...} or [...] block out of a model
// response. Oracles routinely wrap JSON in prose or markdown fences; everything
// outside the balanced block is discarded and typographic quotes are
// normalized before parsing. Whichever delimiter opens first wins, so a bare
// array is never clipped to the first object inside it.
func extractJSON(raw string) (string, bool) {
	raw = quoteNormalizer.Replace(raw)

	var opener, closer byte
	start := -1
	for i := 0; i < len(raw); i++ {
		if raw[i] == '{' {
			opener, closer = '{', '}'
			start = i
			break
		}
		if raw[i] == '[' {
			opener, closer = '[', ']'
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
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
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// decodeJSON extracts and unmarshals the first balanced JSON value in raw.
// Returns false when no parseable JSON is present; never returns an error
// because malformed oracle output degrades to neutral defaults.
func decodeJSON(raw string, v any) bool {
	block, ok := extractJSON(raw)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(block), v) == nil
}
