package nlu

import (
	"strings"
	"testing"

	"github.com/bankislami/voicebot/internal/domain"
)

func TestBuildQuery_ComposesAllSources(t *testing.T) {
	intents := []domain.IntentKeywords{
		{Intent: "account_opening", Keywords: []string{"open", "kholna"}},
	}

	got := BuildQuery("asaan account details", "Premium Account", "account_opening", intents)

	want := "asaan account details Premium Account account opening features eligibility documents process open kholna"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildQuery_SkipsProductAlreadyInText(t *testing.T) {
	got := BuildQuery("tell me about asaan account", "Asaan Account", "", nil)

	want := "tell me about asaan account features eligibility documents process"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildQuery_DropsDuplicateAndEmptyTerms(t *testing.T) {
	intents := []domain.IntentKeywords{
		{Intent: "card_inquiry", Keywords: []string{"Benefits", "  ", "benefits", "features"}},
	}

	got := BuildQuery("what is the markup rate", "", "card_inquiry", intents)

	// "benefits" (case-insensitive duplicate), the blank keyword, and the
	// repeated "features" all collapse to single entries.
	want := "what is the markup rate card inquiry features eligibility documents process Benefits"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildQuery_KeepsFirstCasing(t *testing.T) {
	intents := []domain.IntentKeywords{
		{Intent: "account_benefits", Keywords: []string{"asaan account"}},
	}

	got := BuildQuery("", "Asaan Account", "account_benefits", intents)

	if !strings.Contains(got, "Asaan Account") {
		t.Errorf("expected first occurrence's casing kept, got %q", got)
	}
	if strings.Contains(got, " asaan account") {
		t.Errorf("lowercase duplicate survived dedupe: %q", got)
	}
}

func TestBuildQuery_EmptyInputsStillExpand(t *testing.T) {
	got := BuildQuery("", "", "", nil)

	want := "features eligibility documents process"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
