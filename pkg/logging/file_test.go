package logging

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, format Format, level Level) (*FileLogger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:   path,
		Format: format,
		Level:  level,
	})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	return logger, path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestFileLogger_Text(t *testing.T) {
	logger, path := newTestLogger(t, FormatText, InfoLevel)
	ctx := context.Background()

	logger.Info(ctx, "scan started", Fields{"folder": "/photos"})
	logger.Close()

	lines := readLines(t, path)
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if !strings.Contains(lines[0], "[INFO]") || !strings.Contains(lines[0], "scan started") {
		t.Errorf("unexpected line: %s", lines[0])
	}
	if !strings.Contains(lines[0], "folder=/photos") {
		t.Errorf("missing field: %s", lines[0])
	}
}

func TestFileLogger_JSON(t *testing.T) {
	logger, path := newTestLogger(t, FormatJSON, InfoLevel)
	ctx := context.Background()

	logger.Error(ctx, "move failed", os.ErrPermission, Fields{"file": "a.jpg"})
	logger.Close()

	lines := readLines(t, path)
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if entry["level"] != "ERROR" || entry["message"] != "move failed" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["file"] != "a.jpg" {
		t.Errorf("missing field: %v", entry)
	}
	if entry["error"] == nil {
		t.Errorf("missing error: %v", entry)
	}
}

func TestFileLogger_LevelFiltering(t *testing.T) {
	logger, path := newTestLogger(t, FormatText, WarnLevel)
	ctx := context.Background()

	logger.Debug(ctx, "debug msg", nil)
	logger.Info(ctx, "info msg", nil)
	logger.Warn(ctx, "warn msg", nil)
	logger.Error(ctx, "error msg", nil, nil)
	logger.Close()

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2 (warn+error): %v", len(lines), lines)
	}
}

func TestFileLogger_WithFields(t *testing.T) {
	logger, path := newTestLogger(t, FormatText, InfoLevel)
	scoped := logger.WithFields(Fields{"operation_id": "abc123"})

	scoped.Info(context.Background(), "committed", Fields{"key": "sub"})
	logger.Close()

	lines := readLines(t, path)
	if !strings.Contains(lines[0], "operation_id=abc123") || !strings.Contains(lines[0], "key=sub") {
		t.Errorf("fields not merged: %s", lines[0])
	}
}

func TestFileLogger_Rotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.log")
	logger, err := NewFileLogger(FileLoggerConfig{
		Path:       path,
		Format:     FormatText,
		Level:      InfoLevel,
		MaxSize:    64,
		MaxBackups: 2,
	})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		logger.Info(ctx, "a reasonably long log message to trigger rotation", nil)
	}
	logger.Close()

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Error("expected rotated backup file")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
