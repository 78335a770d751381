package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, s string) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v\nOutput: %s", err, s)
	}
	return entry
}

// TestLogger_BaseFields verifies timestamp, level and msg are present.
func TestLogger_BaseFields(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Info(context.Background(), "resolved")

	entry := decodeLine(t, buf.String())
	if entry["msg"] != "resolved" || entry["level"] != "info" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["timestamp"].(string); !ok {
		t.Errorf("expected timestamp, got %v", entry["timestamp"])
	}
}

// TestLogger_WithAddsFields verifies With attaches fields to every entry.
func TestLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf).With(F("provider", "properties"))

	logger.Warn(context.Background(), "file unreadable", F("path", "key.properties"))

	entry := decodeLine(t, buf.String())
	if entry["provider"] != "properties" || entry["path"] != "key.properties" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["level"] != "warn" {
		t.Errorf("expected level=warn, got %v", entry["level"])
	}
}

// TestLogger_ErrorValuesAreStrings verifies error fields are rendered as text.
func TestLogger_ErrorValuesAreStrings(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter("info", &buf).Error(context.Background(), "failed", F("error", errors.New("boom")))

	entry := decodeLine(t, buf.String())
	if entry["error"] != "boom" {
		t.Errorf("expected error='boom', got %v", entry["error"])
	}
}

// TestLogger_SensitiveFieldsRedacted verifies secret-bearing keys never reach output.
func TestLogger_SensitiveFieldsRedacted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("debug", &buf).With(F("token", "hvs.abc"))

	logger.Debug(context.Background(), "lookup",
		F("value", "envpass"),
		F("password", "filepass"),
		F("secret.name", "keystore_password"),
	)

	out := buf.String()
	for _, leaked := range []string{"envpass", "filepass", "hvs.abc"} {
		if strings.Contains(out, leaked) {
			t.Errorf("output leaks %q: %s", leaked, out)
		}
	}
	entry := decodeLine(t, out)
	if entry["value"] != "[REDACTED]" {
		t.Errorf("expected value redacted, got %v", entry["value"])
	}
	if entry["secret.name"] != "keystore_password" {
		t.Errorf("secret names are not sensitive, got %v", entry["secret.name"])
	}
}

// TestLogger_LevelFiltering verifies log level filtering.
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)

	logger.Info(context.Background(), "info message")
	logger.Debug(context.Background(), "debug message")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got: %s", buf.String())
	}

	logger.Error(context.Background(), "error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Error("error message should pass through when level is warn")
	}
}

// TestParseLogLevel verifies string parsing and round trip.
func TestParseLogLevel(t *testing.T) {
	for _, s := range []string{"debug", "info", "warn", "error"} {
		if got := ParseLogLevel(s).String(); got != s {
			t.Errorf("ParseLogLevel(%q).String() = %q", s, got)
		}
	}
	if ParseLogLevel("verbose") != LevelInfo {
		t.Error("unknown level should default to info")
	}
}
