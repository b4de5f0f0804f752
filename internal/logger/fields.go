package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"

	FieldRunID     = "run_id"
	FieldCandidate = "candidate_id"
	FieldStrategy  = "strategy"
	FieldPosition  = "position"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches the fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns standard zap fields that describe the AI provider and model.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// WithRun tags every entry of a batch run with its id and the position title.
func WithRun(logger *zap.Logger, runID, position string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldRunID, Value: runID},
		StringField{Key: FieldPosition, Value: position},
	)...)
}

// Candidate is the field identifying the candidate an entry is about.
// The key is kept even for an empty id so malformed records stay visible.
func Candidate(id string) zap.Field {
	return zap.String(FieldCandidate, id)
}

func Strategy(name string) zap.Field {
	return zap.String(FieldStrategy, name)
}
