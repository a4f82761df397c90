package assistant

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/mocks"
)

func testLexicon() *domain.Lexicon {
	return &domain.Lexicon{
		SystemPrompt: "You are a banking assistant.",
		Intents: []domain.IntentKeywords{
			{Intent: "account_opening", Keywords: []string{"open", "kholna"}},
			{Intent: "account_benefits", Keywords: []string{"benefits", "features"}},
		},
		Products: []domain.SynonymGroup{
			{Key: "asaan_account", Synonyms: []string{"asaan account", "asan account", "easy account"}},
		},
		Fallbacks: map[string]string{
			domain.FallbackClarifyAccount: "Which account do you mean?",
			domain.FallbackGeneralOpening: "Visit any branch with your CNIC.",
			domain.FallbackHandoff:        "Let me connect you with an agent.",
		},
		DisplayNames: map[string]string{"asaan_account": "Asaan Account"},
	}
}

func newTestService(retriever *mocks.MockRetriever, generator *mocks.MockGenerator) *Service {
	return NewService(testLexicon(), retriever, generator, nil, nil, "", zap.NewNop())
}

func TestAnswer_GreetingShortCircuit(t *testing.T) {
	retriever := &mocks.MockRetriever{}
	generator := &mocks.MockGenerator{}
	service := newTestService(retriever, generator)

	answer, err := service.Answer(context.Background(), "  Assalamualaikum  ", domain.ChannelWeb)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if answer.Text != GreetingReply {
		t.Errorf("expected greeting reply, got %q", answer.Text)
	}
	if answer.Outcome != domain.OutcomeGreeting {
		t.Errorf("expected greeting outcome, got %q", answer.Outcome)
	}
	if len(retriever.Calls) != 0 {
		t.Error("retriever must not run for greetings")
	}
	if generator.Calls != 0 {
		t.Error("generator must not run for greetings")
	}
}

func TestAnswer_GeneratesWhenContextFound(t *testing.T) {
	retriever := &mocks.MockRetriever{
		RetrieveFunc: func(ctx context.Context, query string) (string, error) {
			return "Asaan Account requires only a CNIC.", nil
		},
	}
	generator := &mocks.MockGenerator{
		GenerateFunc: func(ctx context.Context, userText, systemPrompt, ragContext string) (string, error) {
			if systemPrompt != "You are a banking assistant." {
				t.Errorf("unexpected system prompt %q", systemPrompt)
			}
			if userText != "How do I open an Asaan Account?" {
				t.Errorf("generator must receive the raw text, got %q", userText)
			}
			return "**You need** only a CNIC.", nil
		},
	}
	service := newTestService(retriever, generator)

	answer, err := service.Answer(context.Background(), "How do I open an Asaan Account?", domain.ChannelWeb)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if answer.Outcome != domain.OutcomeAnswer {
		t.Errorf("expected answer outcome, got %q", answer.Outcome)
	}
	if answer.Text != "You need only a CNIC." {
		t.Errorf("expected formatted reply, got %q", answer.Text)
	}
	if answer.Understanding.Product != "Asaan Account" {
		t.Errorf("expected resolved product, got %q", answer.Understanding.Product)
	}
	if answer.Understanding.Intent != "account_opening" {
		t.Errorf("expected account_opening intent, got %q", answer.Understanding.Intent)
	}
}

func TestAnswer_FallsBackWithoutContext(t *testing.T) {
	retriever := &mocks.MockRetriever{}
	generator := &mocks.MockGenerator{}
	service := newTestService(retriever, generator)

	answer, err := service.Answer(context.Background(), "I want to open an account", domain.ChannelWeb)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if answer.Outcome != domain.OutcomeFallback {
		t.Errorf("expected fallback outcome, got %q", answer.Outcome)
	}
	// Account concern without a resolved product: clarify which account.
	if answer.Text != "Which account do you mean?" {
		t.Errorf("expected clarify_account fallback, got %q", answer.Text)
	}
	if generator.Calls != 0 {
		t.Error("generator must not run without retrieval context")
	}
}

func TestAnswer_RetrievalErrorDegradesToFallback(t *testing.T) {
	retriever := &mocks.MockRetriever{
		RetrieveFunc: func(ctx context.Context, query string) (string, error) {
			return "", errors.New("index unavailable")
		},
	}
	service := newTestService(retriever, &mocks.MockGenerator{})

	answer, err := service.Answer(context.Background(), "branch timings please", domain.ChannelWhatsApp)

	if err != nil {
		t.Fatalf("retrieval errors must not fail the request, got %v", err)
	}
	if answer.Text != "Let me connect you with an agent." {
		t.Errorf("expected handoff fallback, got %q", answer.Text)
	}
}

func TestAnswer_GenerationErrorPropagates(t *testing.T) {
	retriever := &mocks.MockRetriever{
		RetrieveFunc: func(ctx context.Context, query string) (string, error) {
			return "some context", nil
		},
	}
	generator := &mocks.MockGenerator{
		GenerateFunc: func(ctx context.Context, userText, systemPrompt, ragContext string) (string, error) {
			return "", errors.New("model overloaded")
		},
	}
	service := newTestService(retriever, generator)

	if _, err := service.Answer(context.Background(), "branch timings", domain.ChannelWeb); err == nil {
		t.Fatal("expected generation error to propagate")
	}
}

func TestAnswer_RecordsTurn(t *testing.T) {
	repo := &mocks.MockConversationRepository{}
	service := NewService(testLexicon(), &mocks.MockRetriever{}, &mocks.MockGenerator{}, repo, nil, "", zap.NewNop())

	_, err := service.Answer(context.Background(), "open easy account", domain.ChannelWhatsApp)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(repo.Saved) != 1 {
		t.Fatalf("expected 1 recorded turn, got %d", len(repo.Saved))
	}
	turn := repo.Saved[0]
	if turn.Channel != string(domain.ChannelWhatsApp) {
		t.Errorf("unexpected channel %q", turn.Channel)
	}
	if turn.Product != "Asaan Account" {
		t.Errorf("unexpected product %q", turn.Product)
	}
	if turn.ID == "" || turn.CreatedAt.IsZero() {
		t.Error("turn must carry an ID and timestamp")
	}
}

func TestUnderstand_PipelineOrder(t *testing.T) {
	service := newTestService(&mocks.MockRetriever{}, &mocks.MockGenerator{})

	// STT fix first ("a count" -> "account"), then product rewrite, then
	// intent detection on the rewritten text.
	u := service.Understand("Open a count for ASAN ACCOUNT")

	if u.NormalizedText != "open account for asaan account" {
		t.Errorf("unexpected normalized text %q", u.NormalizedText)
	}
	if u.Product != "Asaan Account" {
		t.Errorf("unexpected product %q", u.Product)
	}
	if u.Intent != "account_opening" {
		t.Errorf("unexpected intent %q", u.Intent)
	}
	if u.Query == "" {
		t.Error("query must not be empty")
	}
}
