package mocks

import (
	"context"

	"github.com/bankislami/voicebot/internal/domain"
)

// MockRetriever is a mock implementation of the Retriever interface
type MockRetriever struct {
	RetrieveFunc func(ctx context.Context, query string) (string, error)
	Calls        []string
}

func (m *MockRetriever) Retrieve(ctx context.Context, query string) (string, error) {
	m.Calls = append(m.Calls, query)
	if m.RetrieveFunc != nil {
		return m.RetrieveFunc(ctx, query)
	}
	return "", nil
}

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, userText, systemPrompt, ragContext string) (string, error)
	Calls        int
}

func (m *MockGenerator) Generate(ctx context.Context, userText, systemPrompt, ragContext string) (string, error) {
	m.Calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, userText, systemPrompt, ragContext)
	}
	return "", nil
}

// MockTranscriber is a mock implementation of the Transcriber interface
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audio []byte, filename, contentType string) (string, error)
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, filename, contentType)
	}
	return "", nil
}

// MockSynthesizer is a mock implementation of the Synthesizer interface
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text string) ([]byte, error)
	MimeType       string
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return []byte("audio:" + text), nil
}

func (m *MockSynthesizer) ContentType() string {
	if m.MimeType != "" {
		return m.MimeType
	}
	return "audio/mpeg"
}

// MockMessenger is a mock implementation of the Messenger interface
type MockMessenger struct {
	SentTexts         map[string][]string
	SentAudios        map[string]int
	SendTextFunc      func(ctx context.Context, to, body string) error
	SendAudioFunc     func(ctx context.Context, to string, audio []byte, contentType string) error
	DownloadMediaFunc func(ctx context.Context, mediaID string) ([]byte, string, error)
}

func NewMockMessenger() *MockMessenger {
	return &MockMessenger{
		SentTexts:  make(map[string][]string),
		SentAudios: make(map[string]int),
	}
}

func (m *MockMessenger) SendText(ctx context.Context, to, body string) error {
	if m.SendTextFunc != nil {
		return m.SendTextFunc(ctx, to, body)
	}
	m.SentTexts[to] = append(m.SentTexts[to], body)
	return nil
}

func (m *MockMessenger) SendAudio(ctx context.Context, to string, audio []byte, contentType string) error {
	if m.SendAudioFunc != nil {
		return m.SendAudioFunc(ctx, to, audio, contentType)
	}
	m.SentAudios[to]++
	return nil
}

func (m *MockMessenger) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	if m.DownloadMediaFunc != nil {
		return m.DownloadMediaFunc(ctx, mediaID)
	}
	return []byte("media:" + mediaID), "audio/ogg", nil
}

// MockEmailSender is a mock implementation of the EmailSender interface
type MockEmailSender struct {
	Sent     []string
	SendFunc func(ctx context.Context, to, subject, body string, isHTML bool) error
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body, isHTML)
	}
	m.Sent = append(m.Sent, subject)
	return nil
}

// MockConversationRepository is a mock implementation of ConversationRepository
type MockConversationRepository struct {
	Saved      []*domain.ConversationTurn
	SaveFunc   func(ctx context.Context, turn *domain.ConversationTurn) error
	RecentFunc func(ctx context.Context, limit int) ([]domain.ConversationTurn, error)
}

func (m *MockConversationRepository) Save(ctx context.Context, turn *domain.ConversationTurn) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, turn)
	}
	m.Saved = append(m.Saved, turn)
	return nil
}

func (m *MockConversationRepository) FindRecent(ctx context.Context, limit int) ([]domain.ConversationTurn, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	turns := make([]domain.ConversationTurn, 0, len(m.Saved))
	for _, t := range m.Saved {
		turns = append(turns, *t)
	}
	return turns, nil
}
