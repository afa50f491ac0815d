package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. "prod" and "production" select JSON output at info
// level; anything else selects the colored development console at debug level.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg.Build()
}

// Writer adapts l to an io.Writer, logging each write as one info entry.
// Trailing newlines are trimmed.
type Writer struct {
	l *zap.Logger
}

func NewWriter(l *zap.Logger) *Writer {
	return &Writer{l: l}
}

func (w *Writer) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if msg != "" {
		w.l.Info(msg)
	}
	return len(p), nil
}
