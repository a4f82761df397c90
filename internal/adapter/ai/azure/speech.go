// Package azure provides REST clients for the Azure Cognitive Services used
// by the assistant: Speech (STT and TTS) and Azure OpenAI (chat, embeddings).
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/infrastructure/circuitbreaker"
	"github.com/bankislami/voicebot/internal/observability/telemetry"
)

const ttsOutputFormat = "audio-16khz-128kbitrate-mono-mp3"

// SpeechConfig holds Azure Speech service settings.
type SpeechConfig struct {
	Key      string
	Region   string
	Language string // recognition language, e.g. "ur-PK"
	Voice    string // synthesis voice, e.g. "ur-PK-UzmaNeural"
	Timeout  time.Duration
}

// SpeechClient implements both Transcriber and Synthesizer against the Azure
// Speech REST API.
type SpeechClient struct {
	cfg  SpeechConfig
	http *circuitbreaker.HTTPClient
	log  *zap.Logger
}

// NewSpeechClient creates a Speech client with circuit breaker protection.
func NewSpeechClient(cfg SpeechConfig, log *zap.Logger) *SpeechClient {
	if cfg.Language == "" {
		cfg.Language = "ur-PK"
	}
	if cfg.Voice == "" {
		cfg.Voice = "ur-PK-UzmaNeural"
	}
	return &SpeechClient{
		cfg:  cfg,
		http: circuitbreaker.NewHTTPClient("azure-speech", cfg.Timeout, log),
		log:  log,
	}
}

type recognitionResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
}

// Transcribe sends user audio to the short-audio recognition endpoint and
// returns the recognized text.
func (c *SpeechClient) Transcribe(ctx context.Context, audio []byte, filename, contentType string) (string, error) {
	if c.cfg.Key == "" {
		return "", fmt.Errorf("azure speech: key not configured")
	}
	start := time.Now()

	url := fmt.Sprintf(
		"https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1?language=%s",
		c.cfg.Region, c.cfg.Language,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("azure speech: create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)
	if contentType == "" {
		contentType = "audio/wav"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure speech: recognize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azure speech: recognize status %d", resp.StatusCode)
	}

	var result recognitionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("azure speech: decode response: %w", err)
	}
	if result.RecognitionStatus != "Success" {
		return "", fmt.Errorf("azure speech: recognition failed: %s", result.RecognitionStatus)
	}

	telemetry.TranscriptionLatency.Observe(time.Since(start).Seconds())
	c.log.Debug("Transcribed audio",
		zap.String("filename", filename),
		zap.Int("bytes", len(audio)),
	)
	return result.DisplayText, nil
}

// Synthesize converts reply text into MP3 audio via the TTS endpoint.
func (c *SpeechClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.cfg.Key == "" {
		return nil, fmt.Errorf("azure speech: key not configured")
	}
	start := time.Now()

	ssml := fmt.Sprintf(
		`<speak version='1.0' xml:lang='%s'><voice name='%s'>%s</voice></speak>`,
		c.cfg.Language, c.cfg.Voice, escapeXML(text),
	)

	url := fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", c.cfg.Region)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(ssml)))
	if err != nil {
		return nil, fmt.Errorf("azure speech: create request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.cfg.Key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", ttsOutputFormat)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure speech: synthesize: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure speech: synthesize status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azure speech: read audio: %w", err)
	}

	telemetry.SynthesisLatency.Observe(time.Since(start).Seconds())
	return audio, nil
}

// ContentType reports the MIME type of synthesized audio.
func (c *SpeechClient) ContentType() string {
	return "audio/mpeg"
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
