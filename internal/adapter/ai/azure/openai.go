package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bankislami/voicebot/internal/infrastructure/circuitbreaker"
)

const apiVersion = "2024-02-15-preview"

// OpenAIConfig holds Azure OpenAI settings. Deployment names are per-resource,
// so both the chat and embedding deployments must be configured.
type OpenAIConfig struct {
	Endpoint            string // e.g. "https://myresource.openai.azure.com"
	Key                 string
	ChatDeployment      string
	EmbeddingDeployment string
	Timeout             time.Duration
}

// OpenAIClient talks to an Azure OpenAI resource. It implements Generator and
// Embedder.
type OpenAIClient struct {
	cfg  OpenAIConfig
	http *circuitbreaker.HTTPClient
	log  *zap.Logger
}

// NewOpenAIClient creates an Azure OpenAI client with circuit breaker
// protection.
func NewOpenAIClient(cfg OpenAIConfig, log *zap.Logger) *OpenAIClient {
	return &OpenAIClient{
		cfg:  cfg,
		http: circuitbreaker.NewHTTPClient("azure-openai", cfg.Timeout, log),
		log:  log,
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate produces a grounded answer from the raw user text, the configured
// system prompt and the retrieval context.
func (c *OpenAIClient) Generate(ctx context.Context, userText, systemPrompt, ragContext string) (string, error) {
	if c.cfg.Key == "" {
		return "", fmt.Errorf("azure openai: key not configured")
	}

	system := systemPrompt
	if ragContext != "" {
		system += "\n\nUse the following knowledge base context to answer:\n" + ragContext
	}

	reqBody := chatRequest{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: userText},
		},
		Temperature: 0.2,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("azure openai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.cfg.Endpoint, c.cfg.ChatDeployment, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("azure openai: create request: %w", err)
	}
	req.Header.Set("api-key", c.cfg.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("azure openai: chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("azure openai: chat status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("azure openai: decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("azure openai: no choices returned")
	}

	c.log.Debug("Generated answer",
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return result.Choices[0].Message.Content, nil
}

type embeddingsRequest struct {
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed generates embedding vectors for the given texts.
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if c.cfg.Key == "" {
		return nil, fmt.Errorf("azure openai: key not configured")
	}
	if c.cfg.EmbeddingDeployment == "" {
		return nil, fmt.Errorf("azure openai: embedding deployment not configured")
	}

	payload, err := json.Marshal(embeddingsRequest{Input: texts})
	if err != nil {
		return nil, fmt.Errorf("azure openai: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		c.cfg.Endpoint, c.cfg.EmbeddingDeployment, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("azure openai: create request: %w", err)
	}
	req.Header.Set("api-key", c.cfg.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure openai: embeddings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure openai: embeddings status %d", resp.StatusCode)
	}

	var result embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("azure openai: decode response: %w", err)
	}

	embeddings := make([][]float64, len(result.Data))
	for _, d := range result.Data {
		embeddings[d.Index] = d.Embedding
	}

	c.log.Debug("Generated embeddings",
		zap.Int("count", len(texts)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return embeddings, nil
}
