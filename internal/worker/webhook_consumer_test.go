package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/mocks"
)

type stubAnswerer struct {
	answers  []string
	err      error
	received []string
}

func (s *stubAnswerer) Answer(ctx context.Context, rawText string, channel domain.Channel) (*domain.Answer, error) {
	s.received = append(s.received, rawText)
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Answer{Text: "answer to: " + rawText, Outcome: domain.OutcomeAnswer}, nil
}

type passthroughRecipient struct{}

func (passthroughRecipient) Recipient(from string) string { return from }

func encode(t *testing.T, msg domain.InboundMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}
	return data
}

func newConsumer(assistant *stubAnswerer, messenger *mocks.MockMessenger) *WebhookConsumer {
	return NewWebhookConsumer(
		assistant,
		messenger,
		&mocks.MockTranscriber{
			TranscribeFunc: func(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
				return "transcribed text", nil
			},
		},
		&mocks.MockSynthesizer{},
		passthroughRecipient{},
		zap.NewNop(),
	)
}

func TestHandle_TextMessage(t *testing.T) {
	assistant := &stubAnswerer{}
	messenger := mocks.NewMockMessenger()
	consumer := newConsumer(assistant, messenger)

	err := consumer.handle(encode(t, domain.InboundMessage{
		From: "92300111",
		Type: domain.MessageTypeText,
		Text: "asaan account benefits",
	}))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	texts := messenger.SentTexts["92300111"]
	if len(texts) != 1 || texts[0] != "answer to: asaan account benefits" {
		t.Errorf("unexpected reply texts %v", texts)
	}
	if messenger.SentAudios["92300111"] != 1 {
		t.Error("expected a spoken reply alongside the text")
	}
}

func TestHandle_AudioMessage(t *testing.T) {
	assistant := &stubAnswerer{}
	messenger := mocks.NewMockMessenger()
	consumer := newConsumer(assistant, messenger)

	err := consumer.handle(encode(t, domain.InboundMessage{
		From:      "92300111",
		Type:      domain.MessageTypeAudio,
		MediaID:   "media-1",
		MediaType: "audio/ogg",
	}))

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(assistant.received) != 1 || assistant.received[0] != "transcribed text" {
		t.Errorf("assistant must get the transcript, got %v", assistant.received)
	}
	if len(messenger.SentTexts["92300111"]) != 1 {
		t.Error("expected a text reply")
	}
}

func TestHandle_AudioSkippedWithoutTranscriber(t *testing.T) {
	assistant := &stubAnswerer{}
	messenger := mocks.NewMockMessenger()
	consumer := NewWebhookConsumer(assistant, messenger, nil, nil, passthroughRecipient{}, zap.NewNop())

	err := consumer.handle(encode(t, domain.InboundMessage{
		From:    "92300111",
		Type:    domain.MessageTypeAudio,
		MediaID: "media-1",
	}))

	if err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	if len(assistant.received) != 0 {
		t.Error("assistant must not run without a transcriber")
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	consumer := newConsumer(&stubAnswerer{}, mocks.NewMockMessenger())

	if err := consumer.handle([]byte("not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestHandle_AnswerErrorIsReturned(t *testing.T) {
	assistant := &stubAnswerer{err: errors.New("generation down")}
	messenger := mocks.NewMockMessenger()
	consumer := newConsumer(assistant, messenger)

	err := consumer.handle(encode(t, domain.InboundMessage{
		From: "92300111",
		Type: domain.MessageTypeText,
		Text: "hello there",
	}))

	if err == nil {
		t.Fatal("expected error")
	}
	if len(messenger.SentTexts) != 0 {
		t.Error("no reply must be sent when the assistant fails")
	}
}

func TestHandle_SynthesisFailureKeepsTextReply(t *testing.T) {
	assistant := &stubAnswerer{}
	messenger := mocks.NewMockMessenger()
	consumer := NewWebhookConsumer(
		assistant,
		messenger,
		nil,
		&mocks.MockSynthesizer{
			SynthesizeFunc: func(ctx context.Context, text string) ([]byte, error) {
				return nil, errors.New("tts down")
			},
		},
		passthroughRecipient{},
		zap.NewNop(),
	)

	err := consumer.handle(encode(t, domain.InboundMessage{
		From: "92300111",
		Type: domain.MessageTypeText,
		Text: "card details",
	}))

	if err != nil {
		t.Fatalf("synthesis failure must not fail the event, got %v", err)
	}
	if len(messenger.SentTexts["92300111"]) != 1 {
		t.Error("text reply must survive synthesis failure")
	}
	if messenger.SentAudios["92300111"] != 0 {
		t.Error("no audio must be sent when synthesis fails")
	}
}

func TestConsumer_SubscribesAndProcesses(t *testing.T) {
	assistant := &stubAnswerer{}
	messenger := mocks.NewMockMessenger()
	consumer := newConsumer(assistant, messenger)

	mq := mocks.NewMockMessageQueue()
	if err := consumer.Start(mq); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	mq.Deliver(SubjectInbound, encode(t, domain.InboundMessage{
		From: "92300111",
		Type: domain.MessageTypeText,
		Text: "hello",
	}))

	if len(messenger.SentTexts["92300111"]) != 1 {
		t.Error("expected the subscribed handler to reply")
	}
}
