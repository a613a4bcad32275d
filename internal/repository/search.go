package repository

import (
	"strings"
	"unicode"
)

// PrefixTSQuery turns free text into a tsquery string where every token
// matches by prefix, e.g. "Portal 2" -> "portal:* & 2:*". Tokens are reduced
// to letters and digits so user input can never smuggle tsquery operators.
// An empty result means there was nothing searchable in the input.
func PrefixTSQuery(query string) string {
	tokens := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return ""
	}

	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, tok+":*")
	}
	return strings.Join(parts, " & ")
}
