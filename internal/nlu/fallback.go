package nlu

import (
	"strings"

	"github.com/bankislami/voicebot/internal/domain"
)

// DefaultFallback is returned when no fallback template is configured at all.
const DefaultFallback = "Mazrat, main samajh nahi saka."

// SelectFallback picks the canned reply used when retrieval produced no
// context. First matching rule wins:
//
//  1. The utterance concerns an account (text contains "account", or the
//     intent is account_benefits/account_opening) and no product was
//     resolved: ask which account.
//  2. Intent is account_opening: general opening guidance.
//  3. Anything else: hand off to a human.
//
// Each rule degrades to the handoff template and then to DefaultFallback when
// templates are missing.
func SelectFallback(text, product, intent string, templates map[string]string) string {
	concernsAccount := strings.Contains(text, "account") ||
		intent == domain.IntentAccountBenefits ||
		intent == domain.IntentAccountOpening

	if concernsAccount && product == "" {
		return firstNonEmpty(templates[domain.FallbackClarifyAccount], templates[domain.FallbackHandoff], DefaultFallback)
	}
	if intent == domain.IntentAccountOpening {
		return firstNonEmpty(templates[domain.FallbackGeneralOpening], templates[domain.FallbackHandoff], DefaultFallback)
	}
	return firstNonEmpty(templates[domain.FallbackHandoff], DefaultFallback)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
