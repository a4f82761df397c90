package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/infrastructure/circuitbreaker"
)

const graphBaseURL = "https://graph.facebook.com"

// MetaConfig holds Meta Cloud API credentials.
type MetaConfig struct {
	AccessToken   string
	PhoneNumberID string
	APIVersion    string
	AppID         string
	AppSecret     string
}

// MetaProvider implements the Provider interface against the Meta Graph API.
type MetaProvider struct {
	cfg  MetaConfig
	http *circuitbreaker.HTTPClient
	log  *zap.Logger
}

// NewMetaProvider creates a Meta Cloud API provider.
func NewMetaProvider(cfg MetaConfig, log *zap.Logger) (*MetaProvider, error) {
	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("access token and phone number id are required")
	}
	return &MetaProvider{
		cfg:  cfg,
		http: circuitbreaker.NewHTTPClient("whatsapp-meta", 30*time.Second, log),
		log:  log,
	}, nil
}

func (p *MetaProvider) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", graphBaseURL, p.cfg.APIVersion, p.cfg.PhoneNumberID)
}

func (p *MetaProvider) sendMessage(ctx context.Context, body map[string]interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("meta: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.messagesURL(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("meta: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("meta: send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("meta: send message status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// SendText sends a plain text message.
func (p *MetaProvider) SendText(ctx context.Context, to, body string) error {
	return p.sendMessage(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	})
}

// SendAudioLink sends an audio message by public link.
func (p *MetaProvider) SendAudioLink(ctx context.Context, to, link string) error {
	return p.sendMessage(ctx, map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "audio",
		"audio":             map[string]string{"link": link},
	})
}

type mediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// DownloadMedia resolves a media id to its download URL, then fetches the
// bytes. Both calls need the access token.
func (p *MetaProvider) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	infoURL := fmt.Sprintf("%s/%s/%s", graphBaseURL, p.cfg.APIVersion, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("meta: create media request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("meta: resolve media %s: %w", mediaID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("meta: resolve media %s status %d", mediaID, resp.StatusCode)
	}

	var info mediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, "", fmt.Errorf("meta: decode media info: %w", err)
	}
	if info.URL == "" {
		return nil, "", fmt.Errorf("meta: media %s has no url", mediaID)
	}

	dlReq, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("meta: create download request: %w", err)
	}
	dlReq.Header.Set("Authorization", "Bearer "+p.cfg.AccessToken)

	dlResp, err := p.http.Do(dlReq)
	if err != nil {
		return nil, "", fmt.Errorf("meta: download media %s: %w", mediaID, err)
	}
	defer dlResp.Body.Close()

	if dlResp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("meta: download media %s status %d", mediaID, dlResp.StatusCode)
	}

	data, err := io.ReadAll(dlResp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("meta: read media %s: %w", mediaID, err)
	}
	return data, info.MimeType, nil
}

// DebugToken inspects the access token via the debug_token endpoint. Needs
// app id and app secret.
func (p *MetaProvider) DebugToken(ctx context.Context) (map[string]interface{}, error) {
	if p.cfg.AppID == "" || p.cfg.AppSecret == "" {
		return nil, fmt.Errorf("meta: app id and app secret are required for token debug")
	}

	q := url.Values{}
	q.Set("input_token", p.cfg.AccessToken)
	q.Set("access_token", p.cfg.AppID+"|"+p.cfg.AppSecret)
	debugURL := fmt.Sprintf("%s/%s/debug_token?%s", graphBaseURL, p.cfg.APIVersion, q.Encode())

	resp, err := p.http.Get(ctx, debugURL)
	if err != nil {
		return nil, fmt.Errorf("meta: debug token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("meta: debug token status %d", resp.StatusCode)
	}

	var result struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("meta: decode debug response: %w", err)
	}
	return result.Data, nil
}
