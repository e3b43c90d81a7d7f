package mask

import (
	"context"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lexesus93/safe-dialog/internal/audit"
	"github.com/lexesus93/safe-dialog/internal/catalog"
	"github.com/lexesus93/safe-dialog/internal/metrics"
	"github.com/lexesus93/safe-dialog/internal/pattern"
	"github.com/lexesus93/safe-dialog/internal/provider"
	"github.com/lexesus93/safe-dialog/pkg/block"
)

const extractionSystemPrompt = "You extract possible sensitive data (companies, products, people, " +
	"organizations, phones, emails, social accounts/links) from text. " +
	"Return strictly a JSON array of unique exact fragments from the text " +
	`(case unchanged), for example: ["Ivan Ivanov", "Acme LLC"].`

// capitalizedSeqRe captures multi-word capitalized sequences, the fallback
// candidate set when the model's extraction answer is unparsable.
var capitalizedSeqRe = regexp.MustCompile(`[A-ZА-ЯЁ][\p{L}\p{N}_\-]+(?:\s+[A-ZА-ЯЁ][\p{L}\p{N}_\-]+)+`)

// Engine rewrites text by substituting sensitive fragments with masked blocks
// and reverses those substitutions during demasking.
type Engine struct {
	catalog   *catalog.Service
	oracle    *Oracle
	extractor *pattern.Extractor
	model     provider.Answerer
	audit     *audit.Logger
	log       zerolog.Logger
}

// NewEngine creates a masking engine. The model is consulted once per masking
// pass for bulk candidate extraction and once per candidate by the oracle.
func NewEngine(cat *catalog.Service, model provider.Answerer, auditLog *audit.Logger, log zerolog.Logger) *Engine {
	return &Engine{
		catalog:   cat,
		oracle:    NewOracle(cat, model, auditLog, log),
		extractor: pattern.NewExtractor(),
		model:     model,
		audit:     auditLog,
		log:       log.With().Str("component", "mask").Logger(),
	}
}

// MaskByCatalog substitutes every exact occurrence of a known catalog name
// with its block, longest name first so that no entry pre-empts a longer one
// it is a substring of. No model calls, no new entries.
func (e *Engine) MaskByCatalog(text string) string {
	if text == "" {
		return text
	}

	c := e.catalog.Load()
	type entryRef struct {
		name, id, placeholder string
	}
	entries := make([]entryRef, 0, len(c))
	for id, entry := range c {
		if entry.Name == "" {
			continue
		}
		entries = append(entries, entryRef{name: entry.Name, id: id, placeholder: entry.Placeholder})
	}
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].name) != len(entries[j].name) {
			return len(entries[i].name) > len(entries[j].name)
		}
		return entries[i].name < entries[j].name
	})

	masked := text
	for _, entry := range entries {
		masked = strings.ReplaceAll(masked, entry.name, block.Format(entry.id, entry.placeholder))
	}
	return masked
}

// MaskWithCatalogThenModel runs the catalog pass first and the full detection
// pass on its result.
func (e *Engine) MaskWithCatalogThenModel(ctx context.Context, text string) string {
	return e.MaskText(ctx, e.MaskByCatalog(text))
}

// MaskText is the core rewriting pass. It segments the input into
// already-masked blocks and plain text, gathers candidates from the plain
// text only, consults the oracle per candidate, and substitutes matches
// without ever touching block segments.
func (e *Engine) MaskText(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	metrics.MaskRequestsTotal.Inc()
	start := time.Now()

	segments := block.Split(text)

	var plainBuilder strings.Builder
	for _, seg := range segments {
		if seg.Kind == block.KindPlain {
			plainBuilder.WriteString(seg.Text)
		}
	}
	plain := plainBuilder.String()
	if strings.TrimSpace(plain) == "" {
		return text
	}

	candidates := e.collectCandidates(ctx, plain)

	masked := 0
	for _, candidate := range candidates {
		ok, blk := e.oracle.IsSensitive(ctx, candidate)
		if !ok || blk == "" {
			continue
		}

		occurrences := 0
		for i := range segments {
			if segments[i].Kind != block.KindPlain || segments[i].Text == "" {
				continue
			}
			if n := strings.Count(segments[i].Text, candidate); n > 0 {
				segments[i].Text = strings.ReplaceAll(segments[i].Text, candidate, blk)
				occurrences += n
			}
		}
		if occurrences > 0 {
			masked++
			if parsed := block.Split(blk); len(parsed) == 1 {
				e.audit.ValueMasked(parsed[0].ID, occurrences)
			}
		}
	}

	elapsed := time.Since(start)
	metrics.RecordOperationDuration("mask", elapsed.Seconds())
	e.audit.MaskPass(len(candidates), masked, float64(elapsed.Milliseconds()))
	e.log.Info().
		Int("candidates", len(candidates)).
		Int("masked", masked).
		Dur("elapsed", elapsed).
		Msg("masking pass complete")

	return block.Join(segments)
}

// collectCandidates unions the pattern-extractor candidates with the model's
// bulk extraction (or its regex fallback), deduplicated and sorted longest
// first so a short candidate cannot pre-empt a longer overlapping one.
func (e *Engine) collectCandidates(ctx context.Context, plain string) []string {
	seen := make(map[string]struct{})
	var candidates []string
	add := func(s string) {
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		candidates = append(candidates, s)
	}

	for _, c := range e.extractor.Extract(plain) {
		add(c)
	}

	question := "Text:\n" + plain + "\nExtract the sensitive data and return only a JSON array of strings."
	raw := e.model.Answer(ctx, question, extractionSystemPrompt)

	modelCandidates, parsed := parseCandidateList(raw)
	metrics.RecordModelCall("extraction", parsed)
	if parsed {
		for _, c := range modelCandidates {
			add(c)
		}
	} else {
		e.log.Debug().Msg("extraction answer unparsable, capitalized-sequence fallback used")
		for _, c := range capitalizedSeqRe.FindAllString(plain, -1) {
			add(c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	return candidates
}

// parseCandidateList reads a JSON array answer, keeping only string entries.
// The second return value reports whether the answer was a parseable array.
func parseCandidateList(raw string) ([]string, bool) {
	var items []any
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	var candidates []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			candidates = append(candidates, s)
		}
	}
	return candidates, true
}
