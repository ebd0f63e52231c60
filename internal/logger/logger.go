package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the CLI logger. Logs go to stderr so listing output on stdout
// stays readable. fields are attached to every entry.
func New(json bool, debug bool, fields ...zap.Field) (*zap.Logger, error) {
	cfg := config(json, debug)

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(fields...), nil
}

func config(json bool, debug bool) zap.Config {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	encoder := zapcore.EncoderConfig{
		MessageKey: "msg",

		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.RFC3339TimeEncoder,

		EncodeDuration: zapcore.StringDurationEncoder,
	}

	if debug {
		encoder.CallerKey = "caller"
		encoder.EncodeCaller = zapcore.ShortCallerEncoder
	}

	return zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoder,
	}
}
