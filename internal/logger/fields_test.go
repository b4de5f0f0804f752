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

func TestWithCommonFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)

	WithCommonFields(zap.New(core), "gemini", " ").Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider field to be gemini, got %q", ctx[FieldProvider])
	}
	if _, ok := ctx[FieldModel]; ok {
		t.Fatalf("expected blank model to be omitted")
	}
}

func TestWithRunAndCandidate(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	runLogger := WithRun(zap.New(core), "run-1", "Backend Engineer")
	runLogger.Debug("candidate analyzed", Candidate("c-7"), Strategy("deterministic"))
	runLogger.Warn("candidate skipped", Candidate(""))

	entries := observed.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldRunID] != "run-1" || ctx[FieldPosition] != "Backend Engineer" {
		t.Fatalf("unexpected run fields: %v", ctx)
	}
	if ctx[FieldCandidate] != "c-7" || ctx[FieldStrategy] != "deterministic" {
		t.Fatalf("unexpected candidate fields: %v", ctx)
	}

	if id, ok := entries[1].ContextMap()[FieldCandidate]; !ok || id != "" {
		t.Fatalf("expected empty candidate id to be logged, got %v", id)
	}
}

func TestNewLogger(t *testing.T) {
	for _, json := range []bool{true, false} {
		l, err := New(json, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !l.Core().Enabled(zapcore.DebugLevel) {
			t.Fatalf("expected debug level to be enabled")
		}
	}

	l, err := New(false, false)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug level to be disabled")
	}
}
