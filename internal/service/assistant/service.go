// Package assistant orchestrates the answer pipeline: greeting shortcut, NLU,
// retrieval, generation, and fallback selection.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/nlu"
	"github.com/bankislami/voicebot/internal/observability/telemetry"
	"github.com/bankislami/voicebot/internal/ports"
)

// GreetingReply is returned verbatim for bare greetings.
const GreetingReply = "Assalam-o-Alaikum. Welcome to Bank Islami. Mai aap ki madad ke liye hoon."

// greetings short-circuits the whole pipeline when the trimmed, lowercased
// raw text equals one of these exactly.
var greetings = map[string]struct{}{
	"hi":              {},
	"hello":           {},
	"hey":             {},
	"salam":           {},
	"assalamualaikum": {},
	"asalamualaikum":  {},
}

// Service answers user utterances. It is stateless between calls: every
// answer is reproducible from the raw text and the immutable lexicon.
type Service struct {
	lex       *domain.Lexicon
	retriever ports.Retriever
	generator ports.Generator
	turns     ports.ConversationRepository
	email     ports.EmailSender
	supportTo string
	log       *zap.Logger
}

// NewService wires the assistant. retriever, turns, and email may be nil: a
// nil retriever degrades every answer to a fallback, a nil repository skips
// the audit log, a nil email sender disables handoff escalation.
func NewService(
	lex *domain.Lexicon,
	retriever ports.Retriever,
	generator ports.Generator,
	turns ports.ConversationRepository,
	email ports.EmailSender,
	supportTo string,
	log *zap.Logger,
) *Service {
	return &Service{
		lex:       lex,
		retriever: retriever,
		generator: generator,
		turns:     turns,
		email:     email,
		supportTo: supportTo,
		log:       log,
	}
}

// Understand runs the pure NLU pipeline on one utterance.
func (s *Service) Understand(rawText string) domain.Understanding {
	normalized := nlu.Normalize(rawText)
	rewritten, product := nlu.ResolveProduct(normalized, s.lex.Products, s.lex.DisplayNames)
	intent := nlu.DetectIntent(rewritten, s.lex.Intents)
	query := nlu.BuildQuery(rewritten, product, intent, s.lex.Intents)

	return domain.Understanding{
		NormalizedText: rewritten,
		Product:        product,
		Intent:         intent,
		Query:          query,
	}
}

// Answer produces the reply for one utterance on the given channel.
func (s *Service) Answer(ctx context.Context, rawText string, channel domain.Channel) (*domain.Answer, error) {
	if _, ok := greetings[strings.ToLower(strings.TrimSpace(rawText))]; ok {
		telemetry.AnswersTotal.WithLabelValues(string(channel), string(domain.OutcomeGreeting)).Inc()
		return &domain.Answer{Text: GreetingReply, Outcome: domain.OutcomeGreeting}, nil
	}

	u := s.Understand(rawText)
	ragContext := s.retrieve(ctx, u.Query)

	answer := &domain.Answer{Understanding: u}
	if ragContext == "" {
		answer.Text = nlu.SelectFallback(u.NormalizedText, u.Product, u.Intent, s.lex.Fallbacks)
		answer.Outcome = domain.OutcomeFallback
		s.escalateHandoff(rawText, answer)
	} else {
		start := time.Now()
		generated, err := s.generator.Generate(ctx, rawText, s.lex.SystemPrompt, ragContext)
		telemetry.GenerationLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			telemetry.AnswersTotal.WithLabelValues(string(channel), "error").Inc()
			return nil, err
		}
		answer.Text = FormatResponse(generated)
		answer.Outcome = domain.OutcomeAnswer
	}

	telemetry.AnswersTotal.WithLabelValues(string(channel), string(answer.Outcome)).Inc()
	s.record(ctx, rawText, channel, answer)
	return answer, nil
}

// retrieve fetches knowledge-base context. Retrieval failures degrade to an
// empty context so the fallback path still replies.
func (s *Service) retrieve(ctx context.Context, query string) string {
	if s.retriever == nil || query == "" {
		return ""
	}
	start := time.Now()
	ragContext, err := s.retriever.Retrieve(ctx, query)
	telemetry.RetrievalLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		s.log.Error("Retrieval failed", zap.String("query", query), zap.Error(err))
		return ""
	}
	return ragContext
}

// escalateHandoff mails support when the user could not be helped at all.
// Clarification fallbacks stay in the conversation and are not escalated.
func (s *Service) escalateHandoff(rawText string, answer *domain.Answer) {
	if s.email == nil || s.supportTo == "" {
		return
	}
	if answer.Text != s.lex.Fallbacks[domain.FallbackHandoff] && answer.Text != nlu.DefaultFallback {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		body := "The assistant could not answer and handed off.\n\n" +
			"User said: " + rawText + "\n" +
			"Detected intent: " + answer.Understanding.Intent + "\n" +
			"Resolved product: " + answer.Understanding.Product + "\n"
		if err := s.email.Send(ctx, s.supportTo, "Voicebot handoff", body, false); err != nil {
			s.log.Error("Handoff escalation email failed", zap.Error(err))
		}
	}()
}

// record persists the turn for audit. Best effort; storage problems never
// affect the reply.
func (s *Service) record(ctx context.Context, rawText string, channel domain.Channel, answer *domain.Answer) {
	if s.turns == nil {
		return
	}
	turn := &domain.ConversationTurn{
		ID:        uuid.New().String(),
		Channel:   string(channel),
		UserText:  rawText,
		Reply:     answer.Text,
		Intent:    answer.Understanding.Intent,
		Product:   answer.Understanding.Product,
		Outcome:   string(answer.Outcome),
		CreatedAt: time.Now(),
	}
	if err := s.turns.Save(ctx, turn); err != nil {
		s.log.Error("Failed to record conversation turn", zap.Error(err))
	}
}
