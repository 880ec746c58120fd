package render

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestFrameStats(t *testing.T) {
	var s FrameStats
	if s.Mean() != 0 {
		t.Errorf("Mean() of empty stats = %v, want 0", s.Mean())
	}

	for _, d := range []time.Duration{4 * time.Millisecond, 16 * time.Millisecond, 10 * time.Millisecond} {
		s.Add(d)
	}

	if s.Count != 3 {
		t.Errorf("Count = %d, want 3", s.Count)
	}
	if s.Total != 30*time.Millisecond {
		t.Errorf("Total = %v, want 30ms", s.Total)
	}
	if s.Max != 16*time.Millisecond {
		t.Errorf("Max = %v, want 16ms", s.Max)
	}
	if s.Mean() != 10*time.Millisecond {
		t.Errorf("Mean() = %v, want 10ms", s.Mean())
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	l := NewLoop(&stopAfter{n: 2, event: Event{Kind: EventClose}}, &fakeDevice{}, &fakeDevice{}, DefaultFrame())
	if err := l.Run(); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "render loop stopped") || !strings.Contains(out, "frames=2") {
		t.Errorf("log output missing loop summary:\n%s", out)
	}
	if !strings.Contains(out, "stop requested") {
		t.Errorf("log output missing stop request:\n%s", out)
	}

	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}
