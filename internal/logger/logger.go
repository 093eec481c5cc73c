package logger

import (
	"fmt"

	"github.com/evcrm/charger-crm/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. JSON output is used in production or
// when logging.format is "json"; otherwise a colored console encoder.
// Output goes to stderr so command output on stdout stays clean.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig, opts ...zap.Option) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

// WithRequest adds request context to logger
func WithRequest(logger *zap.Logger, method, path, requestID string) *zap.Logger {
	return logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)
}

// WithUser adds the acting user to logger
func WithUser(logger *zap.Logger, userID, fullName, role string) *zap.Logger {
	return logger.With(
		zap.String("user_id", userID),
		zap.String("user_name", fullName),
		zap.String("user_role", role),
	)
}

// WithCustomer adds the customer being worked on to logger
func WithCustomer(logger *zap.Logger, customerID string) *zap.Logger {
	return logger.With(zap.String("customer_id", customerID))
}
