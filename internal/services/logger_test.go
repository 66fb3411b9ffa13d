package services

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"info":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewZapLogger(t *testing.T) {
	for _, env := range []string{"development", "production"} {
		l, err := NewZapLogger("test", env, "debug")
		if err != nil {
			t.Fatalf("%s: %v", env, err)
		}
		l.With("request_id", "r1").Debug("hello", "k", "v")
	}
}

func TestNewLoggerInTests(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	if _, ok := NewLogger("svc").(*NoOpLogger); !ok {
		t.Fatal("expected NoOpLogger under GO_ENV=test")
	}
}
