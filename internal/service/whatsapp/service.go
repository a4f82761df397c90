// Package whatsapp delivers assistant replies over the WhatsApp Business
// platform and parses inbound webhook events.
package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/domain"
	"github.com/bankislami/voicebot/internal/observability/telemetry"
	"github.com/bankislami/voicebot/internal/ports"
)

// Provider is the platform backend (Meta Cloud API or Twilio).
type Provider interface {
	SendText(ctx context.Context, to, body string) error
	// SendAudioLink sends an audio message pointing at a public URL.
	SendAudioLink(ctx context.Context, to, link string) error
	DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error)
}

// TokenDebugger is implemented by providers that can inspect their access
// token (Meta only).
type TokenDebugger interface {
	DebugToken(ctx context.Context) (map[string]interface{}, error)
}

// Config holds WhatsApp service configuration.
type Config struct {
	Provider string // meta, twilio

	// Meta Cloud API
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	APIVersion    string
	AppID         string
	AppSecret     string

	// Twilio
	AccountSID string
	AuthToken  string
	FromPhone  string

	// RecipientOverride routes every reply to a fixed number when set.
	// Used in sandbox setups where only one number is registered.
	RecipientOverride string

	// PublicBaseURL is the externally reachable base of this service, used
	// to build media links for audio replies.
	PublicBaseURL string
}

// Service implements the Messenger port and the webhook plumbing around it.
type Service struct {
	provider Provider
	media    ports.MediaStore
	cfg      Config
	log      *zap.Logger
}

// NewService creates the WhatsApp service for the configured provider.
func NewService(cfg Config, media ports.MediaStore, log *zap.Logger) (*Service, error) {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v20.0"
	}

	var (
		provider Provider
		err      error
	)
	switch cfg.Provider {
	case "meta":
		provider, err = NewMetaProvider(MetaConfig{
			AccessToken:   cfg.AccessToken,
			PhoneNumberID: cfg.PhoneNumberID,
			APIVersion:    cfg.APIVersion,
			AppID:         cfg.AppID,
			AppSecret:     cfg.AppSecret,
		}, log)
	case "twilio":
		provider, err = NewTwilioProvider(cfg.AccountSID, cfg.AuthToken, cfg.FromPhone)
	default:
		return nil, fmt.Errorf("whatsapp: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("whatsapp: create provider: %w", err)
	}

	return &Service{provider: provider, media: media, cfg: cfg, log: log}, nil
}

// Recipient applies the sandbox override when one is configured.
func (s *Service) Recipient(from string) string {
	if s.cfg.RecipientOverride != "" {
		return s.cfg.RecipientOverride
	}
	return from
}

// VerifyToken returns the webhook verification token.
func (s *Service) VerifyToken() string {
	return s.cfg.VerifyToken
}

// SendText sends a plain text message.
func (s *Service) SendText(ctx context.Context, to, body string) error {
	if err := s.provider.SendText(ctx, to, body); err != nil {
		s.log.Error("Failed to send WhatsApp text", zap.String("to", to), zap.Error(err))
		return err
	}
	telemetry.MessagesSentTotal.WithLabelValues("text").Inc()
	s.log.Info("WhatsApp text sent", zap.String("to", to))
	return nil
}

// SendAudio stores the audio and sends a link to it. Platforms fetch the
// media themselves, so the link must be publicly reachable.
func (s *Service) SendAudio(ctx context.Context, to string, audio []byte, contentType string) error {
	if s.media == nil || s.cfg.PublicBaseURL == "" {
		s.log.Warn("Audio reply skipped, media store or public base URL not configured")
		return nil
	}

	id, err := s.media.Put(ctx, audio, contentType)
	if err != nil {
		return fmt.Errorf("whatsapp: store reply audio: %w", err)
	}
	link := strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/media/" + id

	if err := s.provider.SendAudioLink(ctx, to, link); err != nil {
		s.log.Error("Failed to send WhatsApp audio", zap.String("to", to), zap.Error(err))
		return err
	}
	telemetry.MessagesSentTotal.WithLabelValues("audio").Inc()
	s.log.Info("WhatsApp audio sent", zap.String("to", to))
	return nil
}

// DownloadMedia fetches user-sent media by platform id.
func (s *Service) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	return s.provider.DownloadMedia(ctx, mediaID)
}

// Diagnose reports which credentials are present without revealing them.
func (s *Service) Diagnose(ctx context.Context, checkToken bool) map[string]interface{} {
	report := map[string]interface{}{
		"provider":            s.cfg.Provider,
		"has_access_token":    s.cfg.AccessToken != "",
		"has_phone_number_id": s.cfg.PhoneNumberID != "",
		"has_verify_token":    s.cfg.VerifyToken != "",
		"has_public_base_url": s.cfg.PublicBaseURL != "",
		"has_app_id":          s.cfg.AppID != "",
		"has_app_secret":      s.cfg.AppSecret != "",
		"has_recipient_waid":  s.cfg.RecipientOverride != "",
		"version":             s.cfg.APIVersion,
	}

	if checkToken {
		if debugger, ok := s.provider.(TokenDebugger); ok {
			debug, err := debugger.DebugToken(ctx)
			if err != nil {
				report["token_debug_error"] = err.Error()
			} else {
				report["token_debug"] = debug
			}
		} else {
			report["token_debug_error"] = "provider does not support token debug"
		}
	}
	return report
}

// webhookPayload mirrors the Meta Cloud API webhook envelope.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Type string `json:"type"`
					Text *struct {
						Body string `json:"body"`
					} `json:"text"`
					Audio *struct {
						ID       string `json:"id"`
						MimeType string `json:"mime_type"`
					} `json:"audio"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseWebhook extracts the first user message from a webhook payload.
// Status updates and other non-message events return (nil, false), as does
// a malformed body: webhook processing must never bounce an event back to
// the platform.
func ParseWebhook(body []byte) (*domain.InboundMessage, bool) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				switch msg.Type {
				case "text":
					if msg.Text == nil || msg.Text.Body == "" {
						continue
					}
					return &domain.InboundMessage{
						From: msg.From,
						Type: domain.MessageTypeText,
						Text: msg.Text.Body,
					}, true
				case "audio":
					if msg.Audio == nil || msg.Audio.ID == "" {
						continue
					}
					return &domain.InboundMessage{
						From:      msg.From,
						Type:      domain.MessageTypeAudio,
						MediaID:   msg.Audio.ID,
						MediaType: msg.Audio.MimeType,
					}, true
				}
			}
		}
	}
	return nil, false
}
