package ports

import (
	"context"
	"time"
)

// Cache defines the caching interface (redis or in-memory).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

// Transcriber converts user audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, contentType string) (string, error)
}

// Synthesizer converts reply text into audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	// ContentType is the MIME type of all audio this synthesizer produces.
	ContentType() string
}

// Generator produces a grounded natural-language answer. It receives the raw
// user text (not the normalized one), the configured system prompt, and the
// retrieval context.
type Generator interface {
	Generate(ctx context.Context, userText, systemPrompt, ragContext string) (string, error)
}

// Retriever looks up knowledge-base context for a query. An empty string with
// a nil error means nothing relevant was found.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, error)
}

// Embedder turns texts into vectors for the retrieval index.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Messenger sends replies over a messaging platform and fetches user media.
type Messenger interface {
	SendText(ctx context.Context, to, body string) error
	SendAudio(ctx context.Context, to string, audio []byte, contentType string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

// EmailSender delivers operational mail (handoff escalations).
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// MediaItem is a stored piece of reply audio served over HTTP.
type MediaItem struct {
	Data        []byte
	ContentType string
}

// MediaStore holds synthesized audio for link-based delivery.
type MediaStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Get(ctx context.Context, id string) (*MediaItem, error)
}
