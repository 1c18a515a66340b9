package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/raysh454/ssoprobe/internal/logging"
)

func TestNewLogger_JSONIncludesComponentAndFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger("probe", logging.Config{Format: logging.FormatJSON, Output: &buf})

	logger.Info("echo reply received", logging.Field{Key: "payload", Value: "ping"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (line: %s)", err, buf.String())
	}
	if entry["msg"] != "echo reply received" {
		t.Errorf("expected msg, got %v", entry["msg"])
	}
	if entry["component"] != "probe" {
		t.Errorf("expected component probe, got %v", entry["component"])
	}
	if entry["payload"] != "ping" {
		t.Errorf("expected payload field, got %v", entry["payload"])
	}
}

func TestNewLogger_LevelFiltersDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger("", logging.Config{Level: "warn", Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	logger.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn line, got %q", buf.String())
	}
}

func TestNewLogger_ECSFormat(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger("server", logging.Config{Format: logging.FormatECS, Output: &buf})

	logger.Error("boom")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal ecs line: %v", err)
	}
	if entry["message"] != "boom" {
		t.Errorf("expected ecs message key, got %v", entry)
	}
}

func TestWith_CarriesPersistentFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger("", logging.Config{Output: &buf}).
		With(logging.Field{Key: "probe", Value: "token"})

	logger.Info("composed command")

	if !strings.Contains(buf.String(), `"probe":"token"`) {
		t.Errorf("expected child field in output, got %q", buf.String())
	}
}
