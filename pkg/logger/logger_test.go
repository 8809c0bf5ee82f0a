package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug")
	l.Info("scored",
		String("instrument_id", "005930"),
		Int("rows", 3),
		Float64("score", 0.25),
		Bool("cached", true),
		Duration("duration_ms", 1500*time.Millisecond),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got["message"] != "scored" || got["instrument_id"] != "005930" {
		t.Fatalf("unexpected entry: %v", got)
	}
	if got["rows"].(float64) != 3 || got["score"].(float64) != 0.25 || got["duration_ms"].(float64) != 1500 {
		t.Fatalf("numeric fields wrong: %v", got)
	}
	if got["error"] != "boom" {
		t.Fatalf("error field wrong: %v", got["error"])
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Info("hidden")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if buf.Len() == 0 {
		t.Fatalf("warn must be written")
	}
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info").With(String("component", "analogs"))
	l.Info("x")
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"analogs"`)) {
		t.Fatalf("missing inherited field: %s", buf.String())
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected invalid level error")
	}
}
