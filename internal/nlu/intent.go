package nlu

import (
	"strings"

	"github.com/bankislami/voicebot/internal/domain"
)

// DetectIntent returns the first intent whose any keyword occurs in the
// normalized text as a substring. Intents are tried in configuration order,
// keywords in declaration order, so an earlier intent wins even when a later
// intent's keyword appears earlier in the text. Returns "" when nothing
// matches.
func DetectIntent(text string, intents []domain.IntentKeywords) string {
	for _, in := range intents {
		for _, keyword := range in.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				return in.Intent
			}
		}
	}
	return ""
}
