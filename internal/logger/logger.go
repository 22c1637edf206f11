package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FieldApp tags every entry with the binary that wrote it, so gateway and
// scorer logs can be told apart once shipped to one place.
const FieldApp = "app"

// FieldComponent carries the logger name set by WithGatewayFields and
// WithCommonFields.
const FieldComponent = "component"

// New builds the process logger for app. Logs go to stderr so that command
// output on stdout stays machine readable.
func New(app string, json bool, debug bool) (*zap.Logger, error) {
	return config(app, json, debug).Build()
}

func config(app string, json bool, debug bool) zap.Config {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			NameKey: FieldComponent,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	if app != "" {
		cfg.InitialFields = map[string]any{FieldApp: app}
	}

	return cfg
}
