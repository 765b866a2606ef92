package condition

import "strings"

// Normalize rewrites the bracket lookup surface syntax into plain variable
// identifiers: `config["hello"]` becomes `config_hello`, and chained
// lookups like `config["a"]["b"]` become `config_a_b`.
//
// The scanner is a single pass over the characters. A `[` starts a lookup
// segment and is emitted as `_`; quotes inside a segment are dropped; the
// matching `]` ends the segment. A `]` outside any segment is a literal
// character, and a segment left open runs to the end of the string.
// Unbalanced input is not validated.
func Normalize(conditionText string) string {
	var b strings.Builder
	b.Grow(len(conditionText))

	inLookupKey := false
	for _, r := range conditionText {
		switch r {
		case '[':
			inLookupKey = true
			b.WriteByte('_')
		case ']':
			if inLookupKey {
				inLookupKey = false
			} else {
				b.WriteRune(r)
			}
		case '"', '\'':
			if !inLookupKey {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}
