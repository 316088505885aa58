package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/renoma/pkg/observability"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	if logger == nil {
		t.Fatal("newLogger() returned nil")
	}

	// Test that it can log
	logger.Info("test message")

	if buf.Len() == 0 {
		t.Error("logger should have written output")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("test") },
			wantLog: true,
		},
		{
			name:    "debug at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: false,
		},
		{
			name:    "debug at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("test") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)
			tt.logFunc(logger)

			gotLog := buf.Len() > 0
			if gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	prog := newProgress(logger)
	if prog == nil {
		t.Fatal("newProgress() returned nil")
	}

	time.Sleep(10 * time.Millisecond)
	prog.done("Crawled 3 packages")

	output := buf.String()
	if output == "" {
		t.Error("progress.done() should produce output")
	}

	if !bytes.Contains(buf.Bytes(), []byte("Crawled 3 packages (")) {
		t.Error("progress.done() output should contain message")
	}
}

func TestSetLogLevelRegistersDebugHooks(t *testing.T) {
	defer observability.Reset()

	var buf bytes.Buffer
	c := &CLI{Logger: newLogger(&buf, log.InfoLevel)}
	c.SetLogLevel(LogDebug)

	observability.Cache().OnCacheHit(context.Background(), "memo")
	observability.Scan().OnAnalyze(context.Background(), "a@1.0.0", 2, time.Millisecond, nil)

	out := buf.String()
	if !strings.Contains(out, "cache hit") || !strings.Contains(out, "cache=memo") {
		t.Errorf("missing cache event in %q", out)
	}
	if !strings.Contains(out, "pkg=a@1.0.0") || !strings.Contains(out, "diagnostics=2") {
		t.Errorf("missing analyze event in %q", out)
	}
}
