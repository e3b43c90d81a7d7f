package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Fallback answers returned when the local model backend is unusable. They
// are deliberately not JSON so callers fall through to their heuristics.
const (
	ollamaFallbackStatus      = "[MOCK] Analysis complete. The text contains potentially sensitive data."
	ollamaFallbackUnreachable = "[MOCK] Analysis complete. Potential sensitive data found in the text."
	ollamaFallbackEmpty       = "[MOCK] Analysis complete. Elements requiring masking were detected."
)

// Ollama asks a local model through the Ollama generate API.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	log     zerolog.Logger
}

// NewOllama creates an Ollama provider. Requests time out after 60 seconds.
func NewOllama(baseURL, model string, log zerolog.Logger) *Ollama {
	return &Ollama{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		log:     log.With().Str("component", "ollama").Logger(),
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	System string `json:"system,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Answer sends question to the model and returns its answer. Any transport or
// protocol failure yields a fallback string instead of an error.
func (o *Ollama) Answer(ctx context.Context, question, systemPrompt string) string {
	payload, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: question,
		Stream: false,
		System: systemPrompt,
	})
	if err != nil {
		o.log.Error().Err(err).Msg("encode request failed")
		return ollamaFallbackUnreachable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		o.log.Error().Err(err).Msg("build request failed")
		return ollamaFallbackUnreachable
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		o.log.Warn().Err(err).Msg("ollama unreachable, using fallback answer")
		return ollamaFallbackUnreachable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.log.Error().Int("status", resp.StatusCode).Msg("ollama returned non-success status")
		return ollamaFallbackStatus
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		o.log.Error().Err(err).Msg("decode response failed")
		return ollamaFallbackEmpty
	}
	if result.Response == "" {
		return ollamaFallbackEmpty
	}
	return result.Response
}
