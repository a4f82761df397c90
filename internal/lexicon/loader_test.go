package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_PreservesDeclarationOrder(t *testing.T) {
	path := writeFile(t, "voice_config.json", `{
		"system_prompt": {"content": "You are a banking assistant."},
		"intent_keywords": {
			"loan_inquiry": ["loan", "qarza"],
			"account_opening": ["open", "kholna"],
			"account_benefits": ["benefits"]
		},
		"product_normalization": {
			"accounts": {
				"asaan_account": ["asaan account", "easy account"],
				"current_account": ["current account"]
			}
		},
		"fallback_responses": {"handoff": "Let me connect you."}
	}`)

	lex, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if lex.SystemPrompt != "You are a banking assistant." {
		t.Errorf("unexpected system prompt %q", lex.SystemPrompt)
	}

	wantIntents := []string{"loan_inquiry", "account_opening", "account_benefits"}
	if len(lex.Intents) != len(wantIntents) {
		t.Fatalf("expected %d intents, got %d", len(wantIntents), len(lex.Intents))
	}
	for i, want := range wantIntents {
		if lex.Intents[i].Intent != want {
			t.Errorf("intent %d: expected %q, got %q", i, want, lex.Intents[i].Intent)
		}
	}

	if len(lex.Products) != 2 || lex.Products[0].Key != "asaan_account" {
		t.Errorf("product group order not preserved: %+v", lex.Products)
	}
	if lex.Fallbacks["handoff"] != "Let me connect you." {
		t.Errorf("fallback templates not loaded: %+v", lex.Fallbacks)
	}
}

func TestLoad_MissingSystemPromptFails(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"absent section", `{"intent_keywords": {}}`},
		{"empty content", `{"system_prompt": {"content": ""}}`},
		{"wrong type", `{"system_prompt": {"content": 42}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "voice_config.json", tc.content)
			if _, err := Load(path, zap.NewNop()); err == nil {
				t.Error("expected error for missing system prompt, got nil")
			}
		})
	}
}

func TestLoad_OptionalSectionsDefaultEmpty(t *testing.T) {
	path := writeFile(t, "voice_config.json", `{"system_prompt": {"content": "prompt"}}`)

	lex, err := Load(path, zap.NewNop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(lex.Intents) != 0 || len(lex.Products) != 0 || len(lex.Fallbacks) != 0 {
		t.Errorf("expected empty defaults, got %+v", lex)
	}
}

func TestLoadCatalog_BuildsDisplayNames(t *testing.T) {
	path := writeFile(t, "bank.json", `{
		"accounts": [
			{"id": "asaan_account", "name": "BankIslami Asaan Account"},
			{"id": "", "name": "nameless"},
			{"id": "no_name"}
		]
	}`)

	names := LoadCatalog(path, zap.NewNop())

	if len(names) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(names))
	}
	if names["asaan_account"] != "BankIslami Asaan Account" {
		t.Errorf("unexpected catalog map %+v", names)
	}
}

func TestLoadCatalog_DegradesToEmpty(t *testing.T) {
	if got := LoadCatalog("/does/not/exist.json", zap.NewNop()); len(got) != 0 {
		t.Errorf("expected empty map for missing file, got %+v", got)
	}
	if got := LoadCatalog("knowledge.txt", zap.NewNop()); len(got) != 0 {
		t.Errorf("expected empty map for non-JSON path, got %+v", got)
	}

	malformed := writeFile(t, "bank.json", `{"accounts": "oops"`)
	if got := LoadCatalog(malformed, zap.NewNop()); len(got) != 0 {
		t.Errorf("expected empty map for malformed file, got %+v", got)
	}
}
