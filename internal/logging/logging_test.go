package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/backmassage/dvdpress/internal/term"
)

func newTestLogger(buf *bytes.Buffer, level string) *slog.Logger {
	term.Configure(term.ModeNever)
	lv := new(slog.LevelVar)
	lv.Set(parseLevel(level))
	return slog.New(newConsoleHandler(buf, lv))
}

func TestConsoleHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "info")

	log.Info("new file found", File("movie.vob"))

	line := buf.String()
	if !strings.Contains(line, "[INFO]") {
		t.Errorf("missing level label: %q", line)
	}
	if !strings.Contains(line, "new file found") {
		t.Errorf("missing message: %q", line)
	}
	if !strings.Contains(line, "file=movie.vob") {
		t.Errorf("missing attr: %q", line)
	}
	if !strings.HasSuffix(line, "\n") {
		t.Errorf("line not newline terminated: %q", line)
	}
}

func TestConsoleHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "warn")

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestConsoleHandler_QuotesSpacedValues(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "info")

	log.Error("encode failed", Err(errors.New("exit status 1")))

	if !strings.Contains(buf.String(), `error="exit status 1"`) {
		t.Errorf("spaced value not quoted: %q", buf.String())
	}
}

func TestConsoleHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "info").With(slog.String("run_id", "abc123"))

	log.Info("batch start")

	if !strings.Contains(buf.String(), "run_id=abc123") {
		t.Errorf("logger-level attr missing: %q", buf.String())
	}
}

func TestErr_NilYieldsEmptyAttr(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, "info")

	log.Info("done", Err(nil))

	if strings.Contains(buf.String(), "error=") {
		t.Errorf("nil error should not emit attr: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
