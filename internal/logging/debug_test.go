package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestDebugEnabled(t *testing.T) {
	// Test with TODO_DEBUG set to empty string
	t.Setenv(DebugEnv, "")
	if DebugEnabled() {
		t.Error("DebugEnabled() should return false when TODO_DEBUG is empty")
	}

	// Test with TODO_DEBUG set to any value
	t.Setenv(DebugEnv, "1")
	if !DebugEnabled() {
		t.Error("DebugEnabled() should return true when TODO_DEBUG is set")
	}

	t.Setenv(DebugEnv, "true")
	if !DebugEnabled() {
		t.Error("DebugEnabled() should return true when TODO_DEBUG is 'true'")
	}
}

func TestDebugf(t *testing.T) {
	// Only checks that Debugf does not panic either way
	t.Setenv(DebugEnv, "")
	Debugf("This should not appear: %s", "test")

	t.Setenv(DebugEnv, "1")
	Debugf("This should appear: %s\n", "test")
}

func TestDebugln(t *testing.T) {
	t.Setenv(DebugEnv, "")
	Debugln("This should not appear")

	t.Setenv(DebugEnv, "1")
	Debugln("This should appear")
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "api")

	logger.Printf("listening on %s", ":8080")

	out := buf.String()
	if !strings.HasPrefix(out, "[api] ") {
		t.Errorf("log line %q should start with the prefix", out)
	}
	if !strings.HasSuffix(out, "listening on :8080\n") {
		t.Errorf("log line %q is missing the message", out)
	}
}

func TestNew(t *testing.T) {
	if New("todo") == nil {
		t.Fatal("New() returned nil")
	}
	if got := New("todo").Prefix(); got != "[todo] " {
		t.Errorf("Prefix() = %q, want %q", got, "[todo] ")
	}
}
