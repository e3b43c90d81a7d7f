// Package provider contains the model answer providers: adapters for a local
// Ollama backend and the remote OpenRouter API.
//
// Providers never fail for availability reasons. A connection failure or a
// non-success response yields a descriptive fallback string, so the masking
// pipeline degrades to its deterministic heuristics instead of aborting.
package provider

import "context"

// Answerer asks a model a question and returns its textual answer.
type Answerer interface {
	Answer(ctx context.Context, question, systemPrompt string) string
}

// AnswerFunc adapts a function to the Answerer interface.
type AnswerFunc func(ctx context.Context, question, systemPrompt string) string

// Answer calls f.
func (f AnswerFunc) Answer(ctx context.Context, question, systemPrompt string) string {
	return f(ctx, question, systemPrompt)
}

// Static is an Answerer that always returns the same response, used in tests
// and as a stand-in when no model backend is configured.
type Static struct {
	Response string
}

// Answer returns the fixed response.
func (s *Static) Answer(_ context.Context, _, _ string) string {
	return s.Response
}
