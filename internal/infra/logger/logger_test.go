package logger

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_ENCODING", "")
	t.Setenv("SERVICE_NAME", "")

	cfg := FromEnv()
	if cfg.Development || cfg.Level != "warn" || cfg.Encoding != "" {
		t.Fatalf("unexpected production config %+v", cfg)
	}
	if cfg.Service != "powerqr" {
		t.Fatalf("expected default service, got %q", cfg.Service)
	}

	t.Setenv("APP_ENV", "")
	t.Setenv("SERVICE_NAME", "powerqr-worker")
	cfg = FromEnv()
	if !cfg.Development || cfg.Encoding != "console" || cfg.Service != "powerqr-worker" {
		t.Fatalf("unexpected development config %+v", cfg)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "chatty"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNew_Console(t *testing.T) {
	l, err := New(Config{Development: true, Encoding: "console", Level: "DEBUG"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}
}

func TestEncoderConfig_JSONIsUTC(t *testing.T) {
	enc := zapcore.NewJSONEncoder(encoderConfig(false, false))
	at := time.Date(2026, 3, 1, 20, 0, 0, 0, time.FixedZone("CST", 8*3600))

	buf, err := enc.EncodeEntry(zapcore.Entry{Level: zapcore.WarnLevel, Time: at, Message: "scan recorded"},
		[]zapcore.Field{zap.String("service", "powerqr")})
	if err != nil {
		t.Fatalf("EncodeEntry: %v", err)
	}
	line := buf.String()
	for _, want := range []string{`"ts":"2026-03-01T12:00:00Z"`, `"level":"warn"`, `"service":"powerqr"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
}

func TestEncoderConfig_ConsolePadsLevel(t *testing.T) {
	enc := zapcore.NewConsoleEncoder(encoderConfig(true, false))
	buf, err := enc.EncodeEntry(zapcore.Entry{Level: zapcore.InfoLevel, Time: time.Unix(0, 0), Message: "ready"}, nil)
	if err != nil {
		t.Fatalf("EncodeEntry: %v", err)
	}
	if !strings.Contains(buf.String(), "INFO  | ready") {
		t.Fatalf("unexpected console line %q", buf.String())
	}
}

func TestL_BeforeInit(t *testing.T) {
	if L() == nil {
		t.Fatal("expected a usable logger before Init")
	}
}
