package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/theoremus-urban-solutions/departure-sensor/monitor"
)

func TestEventLogger_Levels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewEventLogger(zap.New(core).Sugar(), "BVG")

	tests := []struct {
		kind  monitor.EventKind
		level zapcore.Level
	}{
		{monitor.EventConnectionLost, zapcore.WarnLevel},
		{monitor.EventReconnected, zapcore.InfoLevel},
		{monitor.EventCacheWriteFailed, zapcore.ErrorLevel},
		{monitor.EventCacheReadFailed, zapcore.ErrorLevel},
		{monitor.EventNoMatch, zapcore.DebugLevel},
		{monitor.EventStaleData, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		l.Observe(monitor.Event{Kind: tt.kind, StopID: "900000100003", TickID: "t1", At: time.Now()})
	}

	entries := logs.All()
	if len(entries) != len(tests) {
		t.Fatalf("logged %d entries, want %d", len(entries), len(tests))
	}
	for i, tt := range tests {
		if entries[i].Level != tt.level {
			t.Errorf("%s logged at %s, want %s", tt.kind, entries[i].Level, tt.level)
		}
		fields := entries[i].ContextMap()
		if fields["event"] != tt.kind.String() || fields["stop"] != "900000100003" || fields["sensor"] != "BVG" {
			t.Errorf("%s fields = %v", tt.kind, fields)
		}
	}
	t.Logf("✓ Logged %d events", len(entries))
}

func TestEventLogger_IncludesError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewEventLogger(zap.New(core).Sugar(), "BVG")

	l.Observe(monitor.Event{Kind: monitor.EventCacheWriteFailed, Err: errors.New("disk full")})

	entry := logs.All()[0]
	if got := entry.ContextMap()["error"]; got != "disk full" {
		t.Errorf("error field = %v, want disk full", got)
	}
}

func TestEventLogger_StaleFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewEventLogger(zap.New(core).Sugar(), "BVG")

	l.Observe(monitor.Event{Kind: monitor.EventStaleData, Age: 70 * time.Minute, Threshold: time.Hour})

	fields := logs.All()[0].ContextMap()
	if fields["age"] != 70*time.Minute || fields["threshold"] != time.Hour {
		t.Errorf("fields = %v", fields)
	}
}

func TestLogger_Shared(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	a := Logger()
	b := Logger()
	if a == nil || a != b {
		t.Error("Logger should return the same shared instance")
	}
	Sync()
}
