package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level log.Level
		debug bool
	}{
		{log.InfoLevel, false},
		{log.DebugLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)

			logger.Debug("layout computed")
			if got := strings.Contains(buf.String(), "layout computed"); got != tt.debug {
				t.Errorf("debug line written = %v, want %v", got, tt.debug)
			}
			logger.Info("rendered outputs")
			if !strings.Contains(buf.String(), "rendered outputs") {
				t.Errorf("info line missing: %q", buf.String())
			}
		})
	}
}

func TestStopwatch(t *testing.T) {
	var buf bytes.Buffer
	done := stopwatch(newLogger(&buf, log.InfoLevel))
	done("placed lineup", "players", 12)

	out := buf.String()
	for _, want := range []string{"placed lineup", "players=12", "took="} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogFrom(t *testing.T) {
	if logFrom(context.Background()) != log.Default() {
		t.Error("bare context should fall back to log.Default")
	}

	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	if logFrom(ctx) != logger {
		t.Fatal("logFrom should return the attached logger")
	}
	if logFrom(withLogger(context.Background(), nil)) != log.Default() {
		t.Error("nil logger should fall back to log.Default")
	}
}
