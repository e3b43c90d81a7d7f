package audit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferLogger() (*bytes.Buffer, zerolog.Logger) {
	var buf bytes.Buffer
	return &buf, zerolog.New(&buf)
}

func TestLogger_EntityCreated(t *testing.T) {
	buf, zl := newBufferLogger()
	l := NewLogger(DefaultConfig(), zl)

	l.EntityCreated("id-1", "email")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("audit output is not JSON: %v", err)
	}
	if event["type"] != string(EventEntityCreated) {
		t.Errorf("type = %v", event["type"])
	}
	if event["entity_id"] != "id-1" || event["category"] != "email" {
		t.Errorf("event = %v", event)
	}
}

func TestLogger_Disabled(t *testing.T) {
	buf, zl := newBufferLogger()
	l := NewLogger(&Config{Enabled: false, Level: "standard"}, zl)

	l.EntityCreated("id-1", "email")
	l.MaskPass(3, 2, 1.5)

	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote output: %s", buf.String())
	}
}

func TestLogger_MinimalLevel(t *testing.T) {
	buf, zl := newBufferLogger()
	l := NewLogger(&Config{Enabled: true, Level: "minimal"}, zl)

	l.MaskPass(3, 2, 1.5)
	if buf.Len() != 0 {
		t.Errorf("minimal level logged a pass event: %s", buf.String())
	}

	l.ValueMasked("id-1", 2)
	if !strings.Contains(buf.String(), string(EventValueMasked)) {
		t.Error("minimal level must log substitution events")
	}
}

func TestLogger_EnableDisable(t *testing.T) {
	buf, zl := newBufferLogger()
	l := NewLogger(DefaultConfig(), zl)

	l.Disable()
	l.BlocksRestored(1, 0)
	if buf.Len() != 0 {
		t.Error("event logged while disabled")
	}

	l.Enable()
	l.BlocksRestored(1, 0)
	if buf.Len() == 0 {
		t.Error("no event logged after enabling")
	}
}
