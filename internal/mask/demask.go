package mask

import (
	"sort"
	"strings"
	"time"

	"github.com/lexesus93/safe-dialog/internal/metrics"
	"github.com/lexesus93/safe-dialog/pkg/block"
)

// Demask restores original values in text. Canonical masked blocks resolve by
// entry id; legacy {UPPER_SNAKE} tokens resolve by matching the normalized
// placeholder or name of an entry. Unresolvable blocks and tokens are left
// verbatim.
func (e *Engine) Demask(text string) string {
	if text == "" {
		return text
	}

	start := time.Now()
	c := e.catalog.Load()

	restored := 0
	unresolved := 0
	result := block.ReplaceAll(text, func(id, _ string) (string, bool) {
		if entry, ok := c[id]; ok {
			restored++
			return entry.Name, true
		}
		unresolved++
		return "", false
	})

	// Stable id order keeps legacy resolution deterministic when several
	// entries normalize to the same token.
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result = block.ReplaceLegacy(result, func(token string) (string, bool) {
		for _, id := range ids {
			entry := c[id]
			if upperSnake(entry.Placeholder) == token || upperSnake(entry.Name) == token {
				restored++
				return entry.Name, true
			}
		}
		return "", false
	})

	elapsed := time.Since(start)
	metrics.BlocksRestoredTotal.Add(float64(restored))
	metrics.BlocksUnresolvedTotal.Add(float64(unresolved))
	metrics.RecordOperationDuration("demask", elapsed.Seconds())
	e.audit.BlocksRestored(restored, unresolved)
	e.audit.DemaskPass(float64(elapsed.Milliseconds()))

	return result
}

// StripToPlaceholder replaces each masked block with only its placeholder
// label, discarding the id. The result is for display and is not reversible.
func (e *Engine) StripToPlaceholder(text string) string {
	return block.ReplaceAll(text, func(_, placeholder string) (string, bool) {
		return placeholder, true
	})
}

func upperSnake(s string) string {
	return strings.ReplaceAll(strings.ToUpper(s), " ", "_")
}
