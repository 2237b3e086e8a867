package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-notecanvas/pkg/llm"
)

const (
	DefaultBaseURL = "https://api.perplexity.ai"
	DefaultModel   = "sonar-pro"
	defaultTopP    = 0.9
)

type Provider struct {
	baseURL string
	client  *http.Client
}

// Request Payload Structure (OpenAI Compatible, plus disable_search)
type chatRequest struct {
	Model         string        `json:"model"`
	Messages      []llm.Message `json:"messages"`
	Temperature   float64       `json:"temperature"`
	TopP          float64       `json:"top_p"`
	Stream        bool          `json:"stream"`
	DisableSearch bool          `json:"disable_search"`
	MaxTokens     int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewProvider(baseURL string, timeout time.Duration) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	opts := llm.Apply(llm.Options{
		Model:       DefaultModel,
		Temperature: 0.2,
		TopP:        defaultTopP,
	}, options...)

	if opts.APIKey == "" {
		return "", llm.ErrAuth
	}

	reqBody := chatRequest{
		Model:         opts.Model,
		Messages:      history,
		Temperature:   opts.Temperature,
		TopP:          opts.TopP,
		Stream:        false,
		DisableSearch: opts.DisableSearch,
		MaxTokens:     opts.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", opts.APIKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &llm.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &llm.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &llm.APIError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// An answer without choices is treated as empty text.
	if len(chatResp.Choices) == 0 {
		return "", nil
	}

	return chatResp.Choices[0].Message.Content, nil
}
