package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tagwater/internal/config"
	"tagwater/internal/logging"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg, false)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "tagwater.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "INFO hello") {
		t.Fatalf("expected info line, got %q", content)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := logging.WithRunID(context.Background(), "run-1")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "ingest")).
		Info("script committed", logging.Int("files", 3), logging.String("path", "a b.png"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"INFO ingest: script committed", "run_id=run-1", "files=3", `path="a b.png"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("filtered")
	logger.Warn("kept", logging.Int64(logging.FieldEntryID, 7))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), content)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &payload); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if payload["level"] != "warn" || payload["msg"] != "kept" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %#v", payload)
	}
	if payload[logging.FieldEntryID] != float64(7) {
		t.Fatalf("expected entry_id 7, got %#v", payload[logging.FieldEntryID])
	}
}

func TestNewRejectsUnknownFormatAndLevel(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("expected no-op logger to be disabled")
	}
}
