package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioProvider implements the Provider interface via the Twilio WhatsApp
// API. Inbound media arrives as direct URLs in Twilio webhooks, so the
// id-based DownloadMedia is not supported here.
type TwilioProvider struct {
	accountSID string
	authToken  string
	fromPhone  string
	baseURL    string
	client     *http.Client
}

type twilioMessageResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewTwilioProvider creates a Twilio WhatsApp provider.
func NewTwilioProvider(accountSID, authToken, fromPhone string) (*TwilioProvider, error) {
	if accountSID == "" || authToken == "" || fromPhone == "" {
		return nil, fmt.Errorf("accountSID, authToken, and fromPhone are required")
	}

	if !strings.HasPrefix(fromPhone, "whatsapp:") {
		fromPhone = "whatsapp:" + fromPhone
	}

	return &TwilioProvider{
		accountSID: accountSID,
		authToken:  authToken,
		fromPhone:  fromPhone,
		baseURL:    fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s", accountSID),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (p *TwilioProvider) postMessage(ctx context.Context, data url.Values) error {
	reqURL := fmt.Sprintf("%s/Messages.json", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: create request: %w", err)
	}

	req.SetBasicAuth(p.accountSID, p.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: send request: %w", err)
	}
	defer resp.Body.Close()

	var result twilioMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("twilio: decode response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio: %s (code %d)", result.ErrorMessage, result.ErrorCode)
	}
	return nil
}

// SendText sends a plain text message.
func (p *TwilioProvider) SendText(ctx context.Context, to, body string) error {
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}

	data := url.Values{}
	data.Set("From", p.fromPhone)
	data.Set("To", to)
	data.Set("Body", body)
	return p.postMessage(ctx, data)
}

// SendAudioLink sends an audio message via Twilio's MediaUrl parameter.
func (p *TwilioProvider) SendAudioLink(ctx context.Context, to, link string) error {
	if !strings.HasPrefix(to, "whatsapp:") {
		to = "whatsapp:" + to
	}

	data := url.Values{}
	data.Set("From", p.fromPhone)
	data.Set("To", to)
	data.Set("MediaUrl", link)
	return p.postMessage(ctx, data)
}

// DownloadMedia is not supported on Twilio.
func (p *TwilioProvider) DownloadMedia(ctx context.Context, mediaID string) ([]byte, string, error) {
	return nil, "", fmt.Errorf("twilio: media download by id is not supported")
}
