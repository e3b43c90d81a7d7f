// Package server exposes the Safe Dialog REST API consumed by the frontend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/lexesus93/safe-dialog/internal/catalog"
	"github.com/lexesus93/safe-dialog/internal/mask"
	"github.com/lexesus93/safe-dialog/internal/provider"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// defaultSystemPrompt is used when no prompt file exists yet.
const defaultSystemPrompt = "Ты — вежливый и дружелюбный ассистент. Приводи чётко структурированный ответ."

// Config holds API server configuration
type Config struct {
	// Listen is the address to listen on (e.g., ":8000")
	Listen string

	// AllowedOrigins are the origins permitted by CORS
	AllowedOrigins []string

	// PromptPath is the file holding the default system prompt
	PromptPath string

	// MetricsEnabled exposes Prometheus metrics when set
	MetricsEnabled bool

	// MetricsEndpoint is the path for Prometheus metrics
	MetricsEndpoint string
}

// Server serves the REST API over a standard ServeMux
type Server struct {
	server    *http.Server
	mux       *http.ServeMux
	cfg       Config
	catalog   *catalog.Service
	masker    *mask.Engine
	processor provider.Answerer
	log       zerolog.Logger
}

// New creates an API server. The processor answers /api/process-openrouter
// requests; masking and demasking go through the engine.
func New(cfg Config, cat *catalog.Service, masker *mask.Engine, processor provider.Answerer, log zerolog.Logger) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		cfg:       cfg,
		catalog:   cat,
		masker:    masker,
		processor: processor,
		log:       log.With().Str("component", "server").Logger(),
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/mask-text", s.handleMaskText)
	s.mux.HandleFunc("POST /api/demask-text", s.handleDemaskText)
	s.mux.HandleFunc("POST /api/process-openrouter", s.handleProcess)
	s.mux.HandleFunc("GET /api/sensitive-entities", s.handleListEntities)
	s.mux.HandleFunc("POST /api/sensitive-entities", s.handleCreateEntity)
	s.mux.HandleFunc("PUT /api/sensitive-entities/{id}", s.handleUpdateEntity)
	s.mux.HandleFunc("DELETE /api/sensitive-entities/{id}", s.handleDeleteEntity)
	s.mux.HandleFunc("GET /api/system-prompt", s.handleGetSystemPrompt)
	s.mux.HandleFunc("PUT /api/system-prompt", s.handlePutSystemPrompt)
	if cfg.MetricsEnabled {
		endpoint := cfg.MetricsEndpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		s.mux.Handle("GET "+endpoint, promhttp.Handler())
	}

	s.server = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.withCORS(s.mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // model-backed masking can be slow
	}

	return s
}

// Start starts the API server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("api server listening")
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.mux)
}

// withCORS allows the configured frontend origins
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range s.cfg.AllowedOrigins {
			if origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "*")
				break
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type maskRequest struct {
	Text string `json:"text"`
}

type maskResponse struct {
	MaskedText     string                `json:"masked_text"`
	EntitiesFound  []catalog.ListedEntry `json:"entities_found"`
	ProcessingTime float64               `json:"processing_time"`
}

type demaskRequest struct {
	MaskedText string `json:"maskedText"`
}

type processRequest struct {
	Text         string `json:"text"`
	SystemPrompt string `json:"system_prompt"`

	// SystemPromptCamel mirrors the camelCase field the frontend sends
	SystemPromptCamel string `json:"systemPrompt"`
}

type entityRequest struct {
	Name        string `json:"name"`
	Placeholder string `json:"placeholder"`
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
	})
}

func (s *Server) handleMaskText(w http.ResponseWriter, r *http.Request) {
	var req maskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	start := time.Now()
	s.log.Info().Int("text_length", len(req.Text)).Msg("masking started")

	masked := s.masker.MaskWithCatalogThenModel(r.Context(), req.Text)

	elapsed := time.Since(start)
	s.log.Info().Dur("elapsed", elapsed).Msg("masking finished")

	writeJSON(w, http.StatusOK, maskResponse{
		MaskedText:     masked,
		EntitiesFound:  s.catalog.List(),
		ProcessingTime: elapsed.Seconds(),
	})
}

func (s *Server) handleDemaskText(w http.ResponseWriter, r *http.Request) {
	var req demaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MaskedText == "" {
		writeError(w, http.StatusBadRequest, "empty text to demask")
		return
	}

	// The frontend expects the restored text as a bare JSON string.
	writeJSON(w, http.StatusOK, s.masker.Demask(req.MaskedText))
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prompt := req.SystemPrompt
	if prompt == "" {
		prompt = req.SystemPromptCamel
	}
	if prompt == "" {
		prompt = s.loadSystemPrompt()
	}

	start := time.Now()
	s.log.Info().Int("text_length", len(req.Text)).Msg("processing started")

	answer := s.processor.Answer(r.Context(), req.Text, prompt)

	s.log.Info().Dur("elapsed", time.Since(start)).Msg("processing finished")
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleListEntities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request) {
	var req entityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Placeholder) == "" {
		writeError(w, http.StatusBadRequest, "placeholder must not be empty")
		return
	}

	id, err := s.catalog.AddOrUpdate(req.Name, req.Placeholder)
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyName) {
			writeError(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		s.log.Error().Err(err).Msg("failed to create entity")
		writeError(w, http.StatusInternalServerError, "failed to save entry")
		return
	}

	writeJSON(w, http.StatusOK, catalog.ListedEntry{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Placeholder: strings.TrimSpace(req.Placeholder),
	})
}

func (s *Server) handleUpdateEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req entityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Placeholder) == "" {
		writeError(w, http.StatusBadRequest, "placeholder must not be empty")
		return
	}

	if err := s.catalog.Update(id, req.Name, req.Placeholder); err != nil {
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			writeError(w, http.StatusNotFound, "entry not found")
		case errors.Is(err, catalog.ErrEmptyName):
			writeError(w, http.StatusBadRequest, "name must not be empty")
		default:
			s.log.Error().Err(err).Str("id", id).Msg("failed to update entity")
			writeError(w, http.StatusInternalServerError, "failed to save entry")
		}
		return
	}

	writeJSON(w, http.StatusOK, catalog.ListedEntry{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Placeholder: strings.TrimSpace(req.Placeholder),
	})
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.catalog.Delete(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		s.log.Error().Err(err).Str("id", id).Msg("failed to delete entity")
		writeError(w, http.StatusInternalServerError, "failed to save catalog")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}

func (s *Server) handleGetSystemPrompt(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"data": s.loadSystemPrompt()})
}

func (s *Server) handlePutSystemPrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := os.WriteFile(s.cfg.PromptPath, []byte(req.Prompt), 0600); err != nil {
		s.log.Error().Err(err).Str("path", s.cfg.PromptPath).Msg("failed to save system prompt")
		writeError(w, http.StatusInternalServerError, "failed to save system prompt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"data": req.Prompt})
}

// loadSystemPrompt reads the prompt file, falling back to the built-in
// default when the file is missing or empty.
func (s *Server) loadSystemPrompt() string {
	data, err := os.ReadFile(s.cfg.PromptPath)
	if err != nil {
		return defaultSystemPrompt
	}
	if prompt := strings.TrimSpace(string(data)); prompt != "" {
		return prompt
	}
	return defaultSystemPrompt
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent, nothing to do but note it.
		return
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
