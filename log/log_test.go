// log/log_test.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter("warn", &buf)

	lg.Debug("debug message")
	lg.Infof("info %d", 1)
	if buf.Len() != 0 {
		t.Errorf("messages below the level were logged: %s", buf.String())
	}

	lg.Warnf("warning %d", 2)
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log record is not JSON: %v", err)
	}
	if rec["msg"] != "warning 2" || rec["level"] != "WARN" {
		t.Errorf("unexpected record %v", rec)
	}
	if cs, ok := rec["callstack"].(string); !ok || !strings.HasPrefix(cs, "log_test.go:") {
		t.Errorf("callstack %v doesn't start at the logging call", rec["callstack"])
	}
}

func TestParseLevel(t *testing.T) {
	for _, l := range []string{"debug", "info", "warn", "error"} {
		if _, err := ParseLevel(l); err != nil {
			t.Errorf("%s: unexpected error %v", l, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Errorf("expected error for invalid level")
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger
	// None of these should crash.
	lg.Debug("x")
	lg.Infof("x %d", 1)
	if lg.With("a", 1) != nil {
		t.Errorf("With on a nil logger should return nil")
	}
}

func TestCallstack(t *testing.T) {
	fr := Callstack(0)
	if len(fr) == 0 {
		t.Fatalf("empty callstack")
	}
	if !strings.HasSuffix(fr[0].File, "_test.go") {
		t.Errorf("got %s, expected the test file at the top of the stack", fr[0])
	}
	for _, f := range fr {
		if strings.HasPrefix(f.Function, "testing.") || strings.HasPrefix(f.Function, "runtime.") {
			t.Errorf("stack runs past the test entry point: %s", fr)
		}
		if strings.HasPrefix(f.Function, "github.com/") {
			t.Errorf("module path wasn't trimmed from %q", f.Function)
		}
	}
}

func TestStackValue(t *testing.T) {
	s := Stack{
		{File: "scene.go", Line: 12, Function: "scene.(*Scene).AddLine"},
		{File: "main.go", Line: 40, Function: "main"},
	}
	expected := "scene.go:12 scene.(*Scene).AddLine <- main.go:40 main"
	if s.String() != expected {
		t.Errorf("got %q, expected %q", s.String(), expected)
	}
	if v := s.LogValue(); v.Kind() != slog.KindString || v.String() != expected {
		t.Errorf("got log value %v, expected the string %q", v, expected)
	}
	if (Stack{}).String() != "" {
		t.Errorf("empty stack should print as nothing")
	}
}
