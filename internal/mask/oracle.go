// Package mask implements the masking pipeline: the sensitivity oracle, the
// segment-aware masking engine, and the demasking engine.
package mask

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lexesus93/safe-dialog/internal/audit"
	"github.com/lexesus93/safe-dialog/internal/catalog"
	"github.com/lexesus93/safe-dialog/internal/classify"
	"github.com/lexesus93/safe-dialog/internal/metrics"
	"github.com/lexesus93/safe-dialog/internal/provider"
	"github.com/lexesus93/safe-dialog/pkg/block"
)

const decisionSystemPrompt = "You determine whether data is sensitive (a company, product, person, " +
	"geographic name, phone, email, or social account/link). " +
	`Answer strictly as JSON: {"is_proper": true|false}.`

// decisionSource records how a sensitivity decision was reached.
type decisionSource int

const (
	// decisionModel means the model answered with parseable JSON.
	decisionModel decisionSource = iota
	// decisionHeuristic means the model answer was unusable and the
	// deterministic fallback decided.
	decisionHeuristic
)

// decision is the outcome of a model consultation with its provenance.
type decision struct {
	proper bool
	source decisionSource
}

type properAnswer struct {
	IsProper bool `json:"is_proper"`
}

// heuristicProperRe matches a capitalized token sequence, the shape of a
// proper name. Cyrillic capitals are included alongside Latin.
var heuristicProperRe = regexp.MustCompile(`^[A-ZА-ЯЁ][\p{L}\p{N}_\-. ]+$`)

// decideProper interprets a raw model answer about candidate. If the answer
// parses as the expected JSON object the model's verdict is trusted;
// otherwise the fallback treats candidate as sensitive only when it starts
// with an uppercase letter and has at most five words.
func decideProper(raw, candidate string) decision {
	var answer properAnswer
	if err := json.Unmarshal([]byte(raw), &answer); err == nil {
		return decision{proper: answer.IsProper, source: decisionModel}
	}
	proper := heuristicProperRe.MatchString(candidate) && len(strings.Fields(candidate)) <= 5
	return decision{proper: proper, source: decisionHeuristic}
}

// Oracle decides whether a candidate string is sensitive: first by catalog
// membership, then by hard pattern categories, and finally by consulting the
// model with a deterministic fallback.
type Oracle struct {
	catalog *catalog.Service
	model   provider.Answerer
	audit   *audit.Logger
	log     zerolog.Logger
}

// NewOracle creates a sensitivity oracle.
func NewOracle(cat *catalog.Service, model provider.Answerer, auditLog *audit.Logger, log zerolog.Logger) *Oracle {
	return &Oracle{
		catalog: cat,
		model:   model,
		audit:   auditLog,
		log:     log.With().Str("component", "oracle").Logger(),
	}
}

// IsSensitive reports whether candidate is sensitive. When it is, the second
// return value is the masked block referencing the catalog entry for the
// candidate; a new entry is created and persisted if none exists yet.
func (o *Oracle) IsSensitive(ctx context.Context, candidate string) (bool, string) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false, ""
	}

	// Known values resolve to their existing entry without a model call.
	c := o.catalog.Load()
	if id, ok := c.FindByName(candidate); ok {
		return true, block.Format(id, c[id].Placeholder)
	}

	// Hard categories are sensitive unconditionally.
	category := classify.Classify(candidate)
	if category == classify.CategoryPhone || category == classify.CategoryEmail || category == classify.CategorySocial {
		return o.register(candidate, category)
	}

	question := fmt.Sprintf("Phrase: '%s'. Is this sensitive data? Return only JSON.", candidate)
	raw := o.model.Answer(ctx, question, decisionSystemPrompt)

	d := decideProper(raw, candidate)
	metrics.RecordModelCall("decision", d.source == decisionModel)
	if d.source == decisionHeuristic {
		o.log.Debug().Msg("model answer unparsable, heuristic fallback used")
	}
	if !d.proper {
		return false, ""
	}

	return o.register(candidate, category)
}

// register creates (or updates) the catalog entry for candidate and returns
// its block. A persistence failure leaves the candidate unmasked.
func (o *Oracle) register(candidate string, category classify.Category) (bool, string) {
	placeholder := classify.DerivePlaceholder(candidate)
	id, err := o.catalog.AddOrUpdate(candidate, placeholder)
	if err != nil {
		o.log.Error().Err(err).Msg("catalog persist failed, candidate left unmasked")
		return false, ""
	}

	o.audit.EntityCreated(id, string(category))
	metrics.RecordEntityMasked(string(category))
	return true, block.Format(id, placeholder)
}
