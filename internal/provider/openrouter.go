package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// OpenRouter asks a remote model through the OpenRouter chat completions API
// (OpenAI-compatible wire format).
type OpenRouter struct {
	baseURL string
	apiKey  string
	model   string
	referer string
	title   string
	client  *http.Client
	log     zerolog.Logger
}

// NewOpenRouter creates an OpenRouter provider. An empty apiKey leaves the
// provider in a degraded mode where every answer reports the missing key.
func NewOpenRouter(baseURL, apiKey, model string, log zerolog.Logger) *OpenRouter {
	return &OpenRouter{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		referer: "http://localhost:8000",
		title:   "Safe Dialog App",
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log.With().Str("component", "openrouter").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatChoice struct {
	Index   int         `json:"index"`
	Message chatMessage `json:"message"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

// Answer sends question to the remote model and returns its answer. Transport
// and protocol failures yield descriptive fallback strings, never errors.
func (o *OpenRouter) Answer(ctx context.Context, question, systemPrompt string) string {
	if o.apiKey == "" {
		o.log.Error().Msg("api key not configured")
		return "[ERROR] OpenRouter client unavailable. Check OPENROUTER_API_KEY."
	}

	messages := make([]chatMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: question})

	payload, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   4000,
		Temperature: 0.7,
		TopP:        0.9,
	})
	if err != nil {
		return fmt.Sprintf("[ERROR] OpenRouter request failed: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return fmt.Sprintf("[ERROR] OpenRouter request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("HTTP-Referer", o.referer)
	req.Header.Set("X-Title", o.title)

	resp, err := o.client.Do(req)
	if err != nil {
		o.log.Warn().Err(err).Msg("openrouter unreachable")
		return fmt.Sprintf("[ERROR] OpenRouter request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.log.Error().Int("status", resp.StatusCode).Msg("openrouter returned non-success status")
		return fmt.Sprintf("[ERROR] OpenRouter returned status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Sprintf("[ERROR] OpenRouter response unreadable: %v", err)
	}
	if len(result.Choices) == 0 {
		o.log.Error().Msg("empty answer from openrouter")
		return "[ERROR] Empty answer from OpenRouter"
	}

	if result.Usage != nil {
		o.log.Info().
			Int("prompt_tokens", result.Usage.PromptTokens).
			Int("completion_tokens", result.Usage.CompletionTokens).
			Int("total_tokens", result.Usage.TotalTokens).
			Msg("openrouter answer received")
	}
	return result.Choices[0].Message.Content
}
