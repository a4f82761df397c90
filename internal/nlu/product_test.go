package nlu

import (
	"strings"
	"testing"

	"github.com/bankislami/voicebot/internal/domain"
)

func testGroups() []domain.SynonymGroup {
	return []domain.SynonymGroup{
		{Key: "asaan_account", Synonyms: []string{"asaan account", "asan account", "easy account"}},
		{Key: "current_account", Synonyms: []string{"current account", "checking account"}},
	}
}

func TestResolveProduct_EverySynonymResolvesItsGroup(t *testing.T) {
	groups := testGroups()
	names := map[string]string{"asaan_account": "Asaan Account"}

	for _, group := range groups {
		for _, synonym := range group.Synonyms {
			text, product := ResolveProduct(strings.ToLower(synonym), groups, names)
			if product == "" {
				t.Errorf("synonym %q did not resolve a product", synonym)
				continue
			}
			if !strings.Contains(text, strings.ToLower(product)) {
				t.Errorf("text %q not rewritten to display name %q", text, product)
			}
		}
	}
}

func TestResolveProduct_UsesCatalogDisplayName(t *testing.T) {
	names := map[string]string{"asaan_account": "BankIslami Asaan Account"}

	text, product := ResolveProduct("tell me about asan account", testGroups(), names)

	if product != "BankIslami Asaan Account" {
		t.Errorf("expected catalog name, got %q", product)
	}
	if text != "tell me about bankislami asaan account" {
		t.Errorf("unexpected rewritten text %q", text)
	}
}

func TestResolveProduct_TitleCasesKeyWithoutCatalog(t *testing.T) {
	_, product := ResolveProduct("open easy account", testGroups(), nil)

	if product != "Asaan Account" {
		t.Errorf("expected title-cased key, got %q", product)
	}
}

func TestResolveProduct_RewritesAllGroupSynonyms(t *testing.T) {
	text, _ := ResolveProduct("asaan account or easy account?", testGroups(), nil)

	// Both phrasings collapse to the one display name.
	want := "asaan account or asaan account?"
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}
}

func TestResolveProduct_GroupOrderWins(t *testing.T) {
	// The second group's synonym appears first in the text, but the first
	// group is declared earlier in configuration order and must win.
	text := "checking account versus easy account"

	_, product := ResolveProduct(text, testGroups(), nil)

	if product != "Asaan Account" {
		t.Errorf("expected first configured group to win, got %q", product)
	}
}

func TestResolveProduct_NoMatch(t *testing.T) {
	text, product := ResolveProduct("what are your branch timings", testGroups(), nil)

	if product != "" {
		t.Errorf("expected no product, got %q", product)
	}
	if text != "what are your branch timings" {
		t.Errorf("text must be unchanged, got %q", text)
	}
}
