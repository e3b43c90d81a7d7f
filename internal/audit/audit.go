// Package audit records masking pipeline decisions: catalog mutations, value
// substitutions, and block restorations. Secret values themselves are never
// written to the audit trail, only ids, categories, and counts.
package audit

import (
	"sync"

	"github.com/rs/zerolog"
)

// EventType represents the type of audit event
type EventType string

const (
	EventEntityCreated EventType = "entity_created"
	EventValueMasked   EventType = "value_masked"
	EventBlockRestored EventType = "block_restored"
	EventMaskPass      EventType = "mask_pass"
	EventDemaskPass    EventType = "demask_pass"
)

// Config holds audit logger configuration
type Config struct {
	// Enabled enables/disables audit logging
	Enabled bool `yaml:"enabled"`

	// Level controls what events are logged
	// "minimal" - only entity creations and substitutions
	// "standard" - minimal plus whole mask/demask passes
	Level string `yaml:"level"`
}

// DefaultConfig returns the default audit configuration
func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Level:   "standard",
	}
}

// Logger writes audit events through zerolog
type Logger struct {
	mu      sync.RWMutex
	log     zerolog.Logger
	level   string
	enabled bool
}

// NewLogger creates an audit logger on top of a zerolog logger
func NewLogger(cfg *Config, log zerolog.Logger) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Logger{
		log:     log.With().Str("component", "audit").Logger(),
		level:   cfg.Level,
		enabled: cfg.Enabled,
	}
}

// NewNopLogger creates a disabled audit logger
func NewNopLogger() *Logger {
	return &Logger{log: zerolog.Nop()}
}

func (l *Logger) shouldLog(eventType EventType) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if !l.enabled {
		return false
	}
	if l.level == "minimal" {
		return eventType == EventEntityCreated ||
			eventType == EventValueMasked ||
			eventType == EventBlockRestored
	}
	return true
}

// EntityCreated records a new catalog entry created by the oracle
func (l *Logger) EntityCreated(id, category string) {
	if !l.shouldLog(EventEntityCreated) {
		return
	}
	l.log.Info().
		Str("type", string(EventEntityCreated)).
		Str("entity_id", id).
		Str("category", category).
		Msg("audit")
}

// ValueMasked records a value substituted with its block
func (l *Logger) ValueMasked(id string, occurrences int) {
	if !l.shouldLog(EventValueMasked) {
		return
	}
	l.log.Info().
		Str("type", string(EventValueMasked)).
		Str("entity_id", id).
		Int("occurrences", occurrences).
		Msg("audit")
}

// BlocksRestored records blocks resolved back to their original values
func (l *Logger) BlocksRestored(restored, unresolved int) {
	if !l.shouldLog(EventBlockRestored) {
		return
	}
	l.log.Info().
		Str("type", string(EventBlockRestored)).
		Int("restored", restored).
		Int("unresolved", unresolved).
		Msg("audit")
}

// MaskPass records one whole masking pass
func (l *Logger) MaskPass(candidates, masked int, durationMs float64) {
	if !l.shouldLog(EventMaskPass) {
		return
	}
	l.log.Info().
		Str("type", string(EventMaskPass)).
		Int("candidates", candidates).
		Int("masked", masked).
		Float64("duration_ms", durationMs).
		Msg("audit")
}

// DemaskPass records one whole demasking pass
func (l *Logger) DemaskPass(durationMs float64) {
	if !l.shouldLog(EventDemaskPass) {
		return
	}
	l.log.Info().
		Str("type", string(EventDemaskPass)).
		Float64("duration_ms", durationMs).
		Msg("audit")
}

// Enable enables audit logging
func (l *Logger) Enable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = true
}

// Disable disables audit logging
func (l *Logger) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
}
