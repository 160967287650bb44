package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestLoggerWritesTraceID(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelInfo, "cartflow", func(context.Context) string { return "abc123" })

	log.Info(context.Background(), "cart loaded", "items", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record: %v (%s)", err, buf.String())
	}
	if rec["msg"] != "cart loaded" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}
	if rec["trace_id"] != "abc123" {
		t.Fatalf("expected trace_id, got %v", rec["trace_id"])
	}
	if rec["service"] != "cartflow" {
		t.Fatalf("expected service field, got %v", rec["service"])
	}
	if rec["items"] != float64(3) {
		t.Fatalf("expected items=3, got %v", rec["items"])
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, "cartflow", nil)

	log.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %s", buf.String())
	}
	log.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatal("expected warn record")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNop()
	log.Error(context.Background(), "nothing", "k", "v")

	var nilLog *Logger
	nilLog.Info(context.Background(), "also nothing")
}
