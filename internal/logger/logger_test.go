package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_VerboseGate(t *testing.T) {
	var buf bytes.Buffer
	verbose := false

	log, err := NewWithOptions("session", &callbackChecker{callback: func() bool { return verbose }}, Options{Output: &buf})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("shown warn %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debug/Info should be suppressed when not verbose, got %q", out)
	}
	if !strings.Contains(out, "shown warn 1") {
		t.Errorf("Warn should always be written, got %q", out)
	}
	if !strings.Contains(out, "session") {
		t.Errorf("Expected component name in output, got %q", out)
	}

	buf.Reset()
	verbose = true
	log.Info("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Errorf("Info should be written when verbose, got %q", buf.String())
	}
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewWithOptions("client", nil, Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}

	log.ErrorWithFields("fetch failed", []Field{
		F("endpoint", "http://localhost/analyze/run"),
		Count(3),
		Duration(1500 * time.Millisecond),
		Error(errors.New("boom")),
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a JSON line, got %q: %v", buf.String(), err)
	}

	checks := map[string]interface{}{
		"msg":       "fetch failed",
		"level":     "error",
		"component": "client",
		"endpoint":  "http://localhost/analyze/run",
		"count":     float64(3),
		"duration":  "1.5s",
		"error":     "boom",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("entry[%q] = %v, want %v", key, entry[key], want)
		}
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewWithOptions("root", nil, Options{Output: &buf})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}

	log.WithComponent("handoff").Warn("slot empty")
	if !strings.Contains(buf.String(), "handoff") {
		t.Errorf("Expected derived component name, got %q", buf.String())
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewWithOptions("cli", nil, Options{Level: "error", Output: &buf})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}

	log.Warn("filtered")
	log.Error("kept")

	if strings.Contains(buf.String(), "filtered") {
		t.Errorf("Warn should be below the error level, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("Error should be written, got %q", buf.String())
	}
}

func TestNewWithOptions_Invalid(t *testing.T) {
	if _, err := NewWithOptions("x", nil, Options{Level: "loud"}); err == nil {
		t.Error("Expected error for invalid level")
	}
	if _, err := NewWithOptions("x", nil, Options{Format: "xml"}); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error("discarded")
	log.WithComponent("x").WarnWithFields("discarded", []Field{F("k", "v")})
}
