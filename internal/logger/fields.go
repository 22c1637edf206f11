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
	// FieldMode is the structured log field key for the matching mode.
	FieldMode = "matching_mode"
	// FieldBackend is the structured log field key for the scoring backend URL.
	FieldBackend = "backend_url"
)

// Logger names used as the component of enriched loggers.
const (
	ComponentAI      = "ai"
	ComponentGateway = "gateway"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace
// and omitting entries with empty keys or values.
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

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describes the AI provider and model.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields names logger after the AI component and attaches the
// provider and model.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...).Named(ComponentAI)
}

// GatewayFields describes how the matching gateway reaches its backend.
func GatewayFields(mode, backendURL string) []zap.Field {
	return StringFields(
		StringField{Key: FieldMode, Value: mode},
		StringField{Key: FieldBackend, Value: backendURL},
	)
}

// WithGatewayFields names logger after the matching gateway and attaches the
// mode and backend URL.
func WithGatewayFields(logger *zap.Logger, mode, backendURL string) *zap.Logger {
	return WithFields(logger, GatewayFields(mode, backendURL)...).Named(ComponentGateway)
}
