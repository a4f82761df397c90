package nlu

import (
	"testing"

	"github.com/bankislami/voicebot/internal/domain"
)

func TestSelectFallback_ClarifyAccountWhenNoProduct(t *testing.T) {
	templates := map[string]string{domain.FallbackClarifyAccount: "Which account?"}

	got := SelectFallback("i want to open an account", "", "", templates)

	if got != "Which account?" {
		t.Errorf("expected clarify_account template, got %q", got)
	}
}

func TestSelectFallback_AccountIntentWithoutAccountWord(t *testing.T) {
	templates := map[string]string{
		domain.FallbackClarifyAccount: "Which account?",
		domain.FallbackHandoff:        "Handing off.",
	}

	// "account" is absent from the text; the intent alone marks the account
	// concern.
	got := SelectFallback("kholna hai", "", domain.IntentAccountBenefits, templates)

	if got != "Which account?" {
		t.Errorf("expected clarify_account template, got %q", got)
	}
}

func TestSelectFallback_OpeningWithProductSkipsClarify(t *testing.T) {
	templates := map[string]string{
		domain.FallbackClarifyAccount: "Which account?",
		domain.FallbackGeneralOpening: "Visit any branch with your CNIC.",
	}

	got := SelectFallback("open asaan account", "Asaan Account", domain.IntentAccountOpening, templates)

	if got != "Visit any branch with your CNIC." {
		t.Errorf("expected general_opening template, got %q", got)
	}
}

func TestSelectFallback_OpeningDegradesToHandoff(t *testing.T) {
	templates := map[string]string{domain.FallbackHandoff: "Let me connect you."}

	got := SelectFallback("open asaan account", "Asaan Account", domain.IntentAccountOpening, templates)

	if got != "Let me connect you." {
		t.Errorf("expected handoff template, got %q", got)
	}
}

func TestSelectFallback_DefaultHandoff(t *testing.T) {
	templates := map[string]string{domain.FallbackHandoff: "Let me connect you."}

	got := SelectFallback("branch timings", "", "", templates)

	if got != "Let me connect you." {
		t.Errorf("expected handoff template, got %q", got)
	}
}

func TestSelectFallback_LiteralDefaultWhenUnconfigured(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		product string
		intent  string
	}{
		{"account concern", "my account", "", ""},
		{"opening intent", "kholna", "Asaan Account", domain.IntentAccountOpening},
		{"anything else", "branch timings", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectFallback(tc.text, tc.product, tc.intent, nil)
			if got != DefaultFallback {
				t.Errorf("expected literal default, got %q", got)
			}
		})
	}
}
