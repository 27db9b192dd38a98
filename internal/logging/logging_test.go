package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil || err.Error() != "unsupported log level: loud" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew(t *testing.T) {
	l, err := New(Config{Level: "debug", Format: "console", ServiceName: "textsafety"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug should be enabled")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for xml format")
	}
}
