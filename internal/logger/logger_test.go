package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("WARN")
	defer SetLevel("INFO")

	Info("hidden %d", 1)
	Warn("shown %d", 2)

	got := buf.String()
	if strings.Contains(got, "hidden") {
		t.Errorf("INFO line should be filtered at WARN level: %q", got)
	}
	if !strings.Contains(got, "[WARN] shown 2") {
		t.Errorf("expected WARN line, got %q", got)
	}
}

func TestJSONFormat(t *testing.T) {
	if err := Configure("json", "stdout"); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	defer func() { _ = Configure("text", "stdout") }()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("DEBUG")
	defer SetLevel("INFO")

	Debug("navigated to %s", "root")

	var line jsonLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if line.Level != "DEBUG" || line.Msg != "navigated to root" {
		t.Errorf("unexpected line: %+v", line)
	}
}

func TestSetLevelIgnoresUnknown(t *testing.T) {
	SetLevel("ERROR")
	SetLevel("verbose")
	defer SetLevel("INFO")

	if IsDebug() {
		t.Error("unknown level must not enable debug")
	}
}
