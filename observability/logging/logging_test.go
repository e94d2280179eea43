package logging

import (
	"log/slog"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		raw  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.raw); got != tc.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestRenameCoreAttrs(t *testing.T) {
	attr := renameCoreAttrs(nil, slog.Time(slog.TimeKey, time.Now()))
	if attr.Key != "timestamp" {
		t.Fatalf("time key renamed to %q", attr.Key)
	}
	attr = renameCoreAttrs(nil, slog.Any(slog.LevelKey, slog.LevelWarn))
	if attr.Key != "severity" || attr.Value.String() != "WARN" {
		t.Fatalf("level attr: %v", attr)
	}
	attr = renameCoreAttrs(nil, slog.String(slog.MessageKey, "hello"))
	if attr.Key != "message" || attr.Value.String() != "hello" {
		t.Fatalf("message attr: %v", attr)
	}
	attr = renameCoreAttrs(nil, slog.String("custom", "kept"))
	if attr.Key != "custom" {
		t.Fatalf("custom key renamed to %q", attr.Key)
	}
}
