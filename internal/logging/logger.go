package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a production ready structured logger.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	return cfg.Build()
}

// NewDevelopmentLogger builds a human readable logger writing to the given paths.
// The terminal dashboard uses it with a log file so output does not tear the screen.
func NewDevelopmentLogger(outputPaths ...string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if len(outputPaths) > 0 {
		cfg.OutputPaths = outputPaths
		cfg.ErrorOutputPaths = outputPaths
	}
	return cfg.Build()
}

// WithOperation enriches the logger with the operation and the preview reference it concerns.
func WithOperation(logger *zap.Logger, operation, previewRef string) *zap.Logger {
	fields := []zap.Field{zap.String("operation", operation)}
	if previewRef != "" {
		fields = append(fields, zap.String("preview_ref", previewRef))
	}
	return logger.With(fields...)
}
