// Package nlu implements the assistant's understanding layer: transcript
// normalization, product resolution, intent detection, retrieval-query
// construction, and fallback selection.
//
// Every function is pure and total. Configuration enters as ordered slices
// from domain.Lexicon; nothing here holds state, so concurrent calls never
// interfere.
package nlu

import "strings"

// sttFixes corrects recurring speech-to-text mistakes. Applied in table
// order, so later fixes see text already rewritten by earlier ones. Matches
// are literal substrings, not whole words; a fix may fire inside a larger
// token.
var sttFixes = [...]struct{ from, to string }{
	{"a count", "account"},
	{"a/c", "account"},
	{"a san", "asaan"},
}

// Normalize trims and whitespace-collapses raw, lowercases it, and applies
// the STT fix table. Idempotent on already-normalized input.
func Normalize(raw string) string {
	text := strings.Join(strings.Fields(raw), " ")
	text = strings.ToLower(text)
	for _, fix := range sttFixes {
		text = strings.ReplaceAll(text, fix.from, fix.to)
	}
	return text
}
