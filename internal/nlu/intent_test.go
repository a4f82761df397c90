package nlu

import (
	"testing"

	"github.com/bankislami/voicebot/internal/domain"
)

func TestDetectIntent_FirstConfiguredIntentWins(t *testing.T) {
	intents := []domain.IntentKeywords{
		{Intent: "loan_inquiry", Keywords: []string{"loan"}},
		{Intent: "account_benefits", Keywords: []string{"account"}},
	}

	// "account" appears before "loan" in the text, but loan_inquiry is
	// declared first and must win.
	got := DetectIntent("my account needs a loan", intents)

	if got != "loan_inquiry" {
		t.Errorf("expected loan_inquiry, got %q", got)
	}
}

func TestDetectIntent_KeywordCaseInsensitive(t *testing.T) {
	intents := []domain.IntentKeywords{
		{Intent: "account_opening", Keywords: []string{"OPEN"}},
	}

	if got := DetectIntent("i want to open an account", intents); got != "account_opening" {
		t.Errorf("expected account_opening, got %q", got)
	}
}

func TestDetectIntent_NoMatch(t *testing.T) {
	intents := []domain.IntentKeywords{
		{Intent: "account_opening", Keywords: []string{"open", "kholna"}},
	}

	if got := DetectIntent("branch timings please", intents); got != "" {
		t.Errorf("expected no intent, got %q", got)
	}
}

func TestDetectIntent_EmptyConfig(t *testing.T) {
	if got := DetectIntent("anything", nil); got != "" {
		t.Errorf("expected no intent, got %q", got)
	}
}
