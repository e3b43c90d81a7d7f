package mask

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lexesus93/safe-dialog/internal/audit"
	"github.com/lexesus93/safe-dialog/internal/catalog"
	"github.com/lexesus93/safe-dialog/internal/provider"
)

func newTestOracle(t *testing.T, model provider.Answerer) (*Oracle, *catalog.Service) {
	t.Helper()
	svc := catalog.NewService(catalog.NewMemoryStore(), zerolog.Nop())
	return NewOracle(svc, model, audit.NewNopLogger(), zerolog.Nop()), svc
}

// failingModel fails the test when consulted.
func failingModel(t *testing.T) provider.Answerer {
	t.Helper()
	return provider.AnswerFunc(func(_ context.Context, question, _ string) string {
		t.Errorf("unexpected model call: %q", question)
		return ""
	})
}

func TestOracle_EmptyCandidate(t *testing.T) {
	o, _ := newTestOracle(t, failingModel(t))

	ok, blk := o.IsSensitive(context.Background(), "   ")
	if ok || blk != "" {
		t.Errorf("IsSensitive() = %v, %q", ok, blk)
	}
}

func TestOracle_CatalogHit(t *testing.T) {
	o, svc := newTestOracle(t, failingModel(t))
	id, _ := svc.AddOrUpdate("Acme Corp", "Company 1")

	ok, blk := o.IsSensitive(context.Background(), "Acme Corp")
	if !ok {
		t.Fatal("IsSensitive() = false for catalog member")
	}
	want := "{ID=" + id + ", TXT='Company 1'}"
	if blk != want {
		t.Errorf("block = %q, want %q", blk, want)
	}
	if got := len(svc.Load()); got != 1 {
		t.Errorf("catalog has %d entries, want 1 (no duplicate created)", got)
	}
}

func TestOracle_HardCategorySkipsModel(t *testing.T) {
	o, svc := newTestOracle(t, failingModel(t))

	ok, blk := o.IsSensitive(context.Background(), "ivan@test.com")
	if !ok {
		t.Fatal("IsSensitive() = false for email")
	}
	if !strings.Contains(blk, "TXT='Email'") {
		t.Errorf("block = %q, want Email placeholder", blk)
	}

	c := svc.Load()
	if len(c) != 1 {
		t.Fatalf("catalog has %d entries, want 1", len(c))
	}
	if _, ok := c.FindByName("ivan@test.com"); !ok {
		t.Error("entry not persisted under candidate name")
	}
}

func TestOracle_ModelDecision(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		candidate string
		want      bool
	}{
		{"model says sensitive", `{"is_proper": true}`, "Acme Holdings", true},
		{"model says not sensitive", `{"is_proper": false}`, "Acme Holdings", false},
		{"fallback accepts capitalized short phrase", "[MOCK] backend unavailable", "Acme Holdings", true},
		{"fallback rejects lowercase", "[MOCK] backend unavailable", "just some words", false},
		{"fallback rejects long phrase", "not json", "One Two Three Four Five Six", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, svc := newTestOracle(t, &provider.Static{Response: tt.answer})

			ok, blk := o.IsSensitive(context.Background(), tt.candidate)
			if ok != tt.want {
				t.Errorf("IsSensitive(%q) = %v, want %v", tt.candidate, ok, tt.want)
			}
			if tt.want && blk == "" {
				t.Error("sensitive candidate returned empty block")
			}
			if !tt.want && len(svc.Load()) != 0 {
				t.Error("non-sensitive decision must not mutate the catalog")
			}
		})
	}
}

func TestDecideProper(t *testing.T) {
	d := decideProper(`{"is_proper": true}`, "whatever")
	if !d.proper || d.source != decisionModel {
		t.Errorf("decideProper() = %+v, want model-sourced true", d)
	}

	d = decideProper("garbage", "Иван Петров")
	if !d.proper || d.source != decisionHeuristic {
		t.Errorf("decideProper() = %+v, want heuristic true", d)
	}

	d = decideProper("garbage", "lowercase name")
	if d.proper || d.source != decisionHeuristic {
		t.Errorf("decideProper() = %+v, want heuristic false", d)
	}
}
