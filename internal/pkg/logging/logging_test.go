package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/samirrijal/lapwatch/internal/pkg/logging"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := logging.ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New("info", "json", &buf)
	log.Debug("hidden")
	log.Info("drove one more lap", "lap_count", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "drove one more lap" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
	if rec["lap_count"] != float64(2) {
		t.Errorf("unexpected lap_count %v", rec["lap_count"])
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	logging.New("debug", "text", &buf).Debug("sample", "distance_m", 12.5)
	if !strings.Contains(buf.String(), "distance_m=12.5") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}
