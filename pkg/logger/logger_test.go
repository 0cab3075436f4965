package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, true); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Info(context.Background(), "test message", String("k", "v"), Int("n", 3))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "test message" || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
	source, _ := rec["source"].(string)
	if !strings.Contains(source, "logger_test.go") {
		t.Fatalf("source should point at the caller, got %q", source)
	}
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, false); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Get().Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered at info level, got %q", buf.String())
	}

	if err := SetLevelString("DEBUG"); err != nil {
		t.Fatalf("set level: %v", err)
	}
	Get().Debug(context.Background(), "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug should be written after SetLevelString, got %q", buf.String())
	}

	if err := SetLevelString("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerNamedWith(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithWriter(&buf, false); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	Named("pipeline").With(String("run_id", "abc")).Info(context.Background(), "test message")

	out := buf.String()
	if !strings.Contains(out, "logger=pipeline") || !strings.Contains(out, "run_id=abc") {
		t.Fatalf("named/with attributes missing: %q", out)
	}
}
