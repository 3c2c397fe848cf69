package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mockapi/internal/config"
)

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(false, "warn", &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("expected warn record, got %s", out)
	}

	buf.Reset()
	debug := NewLogger(true, "error", &buf)
	debug.Debug().Msg("dbg")
	if !strings.Contains(buf.String(), "dbg") {
		t.Fatalf("debug flag should override level, got %s", buf.String())
	}
}

func TestNewLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(NewLogger(false, "", &buf), "students")
	logger.Info().Int("student_id", 1).Msg("lookup")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	for _, key := range []string{"time", "caller", "component", "student_id"} {
		if _, ok := rec[key]; !ok {
			t.Fatalf("missing %s in %v", key, rec)
		}
	}
	if rec["component"] != "students" {
		t.Fatalf("unexpected component %v", rec["component"])
	}
}

func TestSetupWritesToRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mockapi.log")
	var stderr bytes.Buffer
	logger, closer := Setup(config.LogConfig{
		Level:       "info",
		LogToFile:   true,
		LogFilePath: path,
		MaxSize:     1,
	}, false, &stderr)
	logger.Info().Msg("file-only record")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "file-only record") {
		t.Fatalf("expected record in file, got %s", data)
	}
	if strings.Contains(stderr.String(), "file-only record") {
		t.Fatalf("non-debug file logging should not echo to stderr")
	}
	if !strings.Contains(stderr.String(), "logging to file") {
		t.Fatalf("expected startup notice on stderr, got %s", stderr.String())
	}
}
