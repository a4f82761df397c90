package nlu

import (
	"strings"

	"github.com/bankislami/voicebot/internal/domain"
)

// genericExpansion is appended to every retrieval query to bias the knowledge
// base toward the facets users most often ask about.
var genericExpansion = []string{"features", "eligibility", "documents", "process"}

// BuildQuery composes the retrieval query from the normalized text, resolved
// product, detected intent, and the intent's own keywords. Terms are
// deduplicated case-insensitively keeping the first occurrence's casing;
// empty terms are dropped and the rest joined with single spaces.
func BuildQuery(text, product, intent string, intents []domain.IntentKeywords) string {
	var parts []string
	if text != "" {
		parts = append(parts, text)
	}
	// Skip the product when the resolver already rewrote it into the text.
	if product != "" && !strings.Contains(text, strings.ToLower(product)) {
		parts = append(parts, product)
	}
	if intent != "" {
		parts = append(parts, strings.ReplaceAll(intent, "_", " "))
	}
	parts = append(parts, genericExpansion...)
	if intent != "" {
		for _, in := range intents {
			if in.Intent == intent {
				parts = append(parts, in.Keywords...)
				break
			}
		}
	}

	seen := make(map[string]struct{}, len(parts))
	ordered := make([]string, 0, len(parts))
	for _, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			continue
		}
		key := strings.ToLower(token)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ordered = append(ordered, token)
	}
	return strings.Join(ordered, " ")
}
