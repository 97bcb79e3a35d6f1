package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newJSONLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(Config{Level: level, Format: "json"}, "test", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	line := strings.TrimSpace(buf.String())
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json log line %q: %v", line, err)
	}
	return m
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "debug")
	l.Info("hello", Fields("method", "GET", "status", 200))

	m := decodeLine(t, &buf)
	if m["message"] != "hello" {
		t.Errorf("expected message hello, got %v", m["message"])
	}
	if m[FieldComponent] != "test" {
		t.Errorf("expected component test, got %v", m[FieldComponent])
	}
	if m["method"] != "GET" {
		t.Errorf("expected method GET, got %v", m["method"])
	}
	if m["status"] != float64(200) {
		t.Errorf("expected status 200, got %v", m["status"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "warn")
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn output, got %q", buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "nope")
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug to be filtered, got %q", buf.String())
	}
	l.Info("shown")
	if buf.Len() == 0 {
		t.Error("expected info output")
	}
}

func TestWithComponentAndError(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info").WithComponent("transport").WithError(errors.New("boom"))
	if l.Component() != "transport" {
		t.Errorf("expected component transport, got %q", l.Component())
	}
	l.Error("failed")
	m := decodeLine(t, &buf)
	if m[FieldComponent] != "transport" {
		t.Errorf("expected component transport, got %v", m[FieldComponent])
	}
	if m["error"] != "boom" {
		t.Errorf("expected error boom, got %v", m["error"])
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, "info").WithFields(Fields(FieldHost, "localhost")).Info("x")
	if m := decodeLine(t, &buf); m[FieldHost] != "localhost" {
		t.Errorf("expected host field, got %v", m[FieldHost])
	}
}

func TestFields_SkipsNonStringKeys(t *testing.T) {
	m := Fields("a", 1, 2, "b", "c")
	if len(m) != 1 || m["a"] != 1 {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestErrorFieldsAndDuration(t *testing.T) {
	f := ErrorFields("send", errors.New("bad"))
	if f[FieldError] != "bad" || f["operation"] != "send" {
		t.Errorf("unexpected %v", f)
	}
	d := WithDuration(nil, 1500*time.Millisecond)
	if d[FieldDuration] != int64(1500) {
		t.Errorf("expected 1500ms, got %v", d[FieldDuration])
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	bad := Config{Level: "loud", Format: "json"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid level")
	}
	bad = Config{Level: "info", Format: "xml"}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestRegistry(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(&buf, "info")
	Register("custom", l)
	if Get("custom") != l {
		t.Error("expected registered logger")
	}
	if got := Get("other"); got.Component() != "other" {
		t.Errorf("expected fallback tagged other, got %q", got.Component())
	}
}

func TestNop(t *testing.T) {
	Nop().Error("nothing")
}
