// Package media stores synthesized reply audio so messaging platforms can
// fetch it by link.
package media

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/ports"
)

const keyPrefix = "media:"

// Store keeps audio blobs in the cache under random ids with a TTL, so
// WhatsApp has time to fetch a reply link before it expires.
type Store struct {
	cache ports.Cache
	ttl   time.Duration
	log   *zap.Logger
}

type storedItem struct {
	Data        string `json:"data"` // base64
	ContentType string `json:"content_type"`
}

// NewStore creates a media store on top of the given cache.
func NewStore(cache ports.Cache, ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Store{cache: cache, ttl: ttl, log: log}
}

// Put stores the audio and returns its id.
func (s *Store) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	id := uuid.New().String()
	payload, err := json.Marshal(storedItem{
		Data:        base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("media: marshal item: %w", err)
	}
	if err := s.cache.Set(ctx, keyPrefix+id, string(payload), s.ttl); err != nil {
		return "", fmt.Errorf("media: store item: %w", err)
	}
	return id, nil
}

// Get returns the stored audio, or an error when the id is unknown or
// expired.
func (s *Store) Get(ctx context.Context, id string) (*ports.MediaItem, error) {
	raw, err := s.cache.Get(ctx, keyPrefix+id)
	if err != nil {
		return nil, fmt.Errorf("media: item %s not found: %w", id, err)
	}

	var item storedItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("media: decode item %s: %w", id, err)
	}
	data, err := base64.StdEncoding.DecodeString(item.Data)
	if err != nil {
		return nil, fmt.Errorf("media: decode audio %s: %w", id, err)
	}

	return &ports.MediaItem{Data: data, ContentType: item.ContentType}, nil
}
