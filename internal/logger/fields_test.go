package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  provider  ", Value: "  Gemini  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "provider" || fields[0].String != "Gemini" {
		t.Fatalf("unexpected provider field: %+v", fields[0])
	}

	if empty := StringFields(); len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFieldsNilLogger(t *testing.T) {
	enriched := WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	enriched.Info("another log")
}

func TestEnrichedLoggers(t *testing.T) {
	cases := []struct {
		name   string
		enrich func(*zap.Logger) *zap.Logger
		expect map[string]string
		absent []string
		named  string
	}{
		{
			name:   "common fields",
			enrich: func(l *zap.Logger) *zap.Logger { return WithCommonFields(l, "gemini", "model-x") },
			expect: map[string]string{FieldProvider: "gemini", FieldModel: "model-x"},
			named:  ComponentAI,
		},
		{
			name:   "gateway fields",
			enrich: func(l *zap.Logger) *zap.Logger { return WithGatewayFields(l, "online", "http://localhost:8080") },
			expect: map[string]string{FieldMode: "online", FieldBackend: "http://localhost:8080"},
			named:  ComponentGateway,
		},
		{
			name:   "offline gateway without backend",
			enrich: func(l *zap.Logger) *zap.Logger { return WithGatewayFields(l, "offline", " ") },
			expect: map[string]string{FieldMode: "offline"},
			absent: []string{FieldBackend},
			named:  ComponentGateway,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.InfoLevel)
			tc.enrich(zap.New(core)).Info("test log")

			entries := observed.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}

			if entries[0].LoggerName != tc.named {
				t.Fatalf("expected logger %q, got %q", tc.named, entries[0].LoggerName)
			}

			ctx := entries[0].ContextMap()
			for key, value := range tc.expect {
				if ctx[key] != value {
					t.Fatalf("expected %s to be %q, got %v", key, value, ctx[key])
				}
			}
			for _, key := range tc.absent {
				if _, ok := ctx[key]; ok {
					t.Fatalf("expected %s to be omitted", key)
				}
			}
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New("collabspace", true, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be enabled")
	}

	l, err = New("collabspace", false, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be disabled")
	}
}

func TestConfig(t *testing.T) {
	cfg := config("collabspace", true, false)

	if cfg.Encoding != "json" {
		t.Fatalf("expected json encoding, got %s", cfg.Encoding)
	}
	if cfg.InitialFields[FieldApp] != "collabspace" {
		t.Fatalf("expected %s field, got %v", FieldApp, cfg.InitialFields)
	}
	if cfg.EncoderConfig.NameKey != FieldComponent {
		t.Fatalf("expected logger names under %q, got %q", FieldComponent, cfg.EncoderConfig.NameKey)
	}

	if bare := config("", false, false); bare.InitialFields != nil || bare.Encoding != "console" {
		t.Fatalf("expected no initial fields and console encoding, got %+v", bare)
	}
}
