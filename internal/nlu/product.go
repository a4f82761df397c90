package nlu

import (
	"strings"
	"unicode"

	"github.com/bankislami/voicebot/internal/domain"
)

// ResolveProduct scans normalized text for known product synonyms and
// rewrites the winning group's phrasings to one canonical surface form.
//
// Groups are scanned in configuration order, synonyms within a group in
// declaration order, and the first hit wins outright: no further groups are
// considered. When a group matches, every synonym in that group (not just the
// matching one) is replaced with the lowercased display name so that intent
// detection and query building see a single spelling.
//
// Returns the (possibly rewritten) text and the product display name, or the
// input unchanged and "" when nothing matched.
func ResolveProduct(text string, groups []domain.SynonymGroup, displayNames map[string]string) (string, string) {
	for _, group := range groups {
		for _, synonym := range group.Synonyms {
			if !strings.Contains(text, strings.ToLower(synonym)) {
				continue
			}
			name := displayNames[group.Key]
			if name == "" {
				name = titleCase(strings.ReplaceAll(group.Key, "_", " "))
			}
			lowered := strings.ToLower(name)
			for _, s := range group.Synonyms {
				text = strings.ReplaceAll(text, strings.ToLower(s), lowered)
			}
			return text, name
		}
	}
	return text, ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
