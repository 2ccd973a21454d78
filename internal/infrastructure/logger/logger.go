package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger that writes human-readable lines to stdout and JSON
// lines to logFile. The log file is opened in append mode and rotated by size.
func New(logLevel, logFile string) (*Logger, error) {
	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	level := zapcore.InfoLevel
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level)

	core := consoleCore
	if logFile != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
		core = zapcore.NewTee(
			consoleCore,
			zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level),
		)
	}

	return Wrap(zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.DPanicLevel))), nil
}

// Wrap adapts an existing zap logger, e.g. one built on an observer core in
// tests.
func Wrap(l *zap.Logger) *Logger {
	return &Logger{l.Sugar()}
}

// Criticalf logs a condition that stops the run from making progress. zap has
// no critical level, so these are error entries tagged severity=critical.
func (l *Logger) Criticalf(template string, args ...interface{}) {
	l.Desugar().WithOptions(zap.AddCallerSkip(1)).Sugar().
		With("severity", "critical").
		Errorf(template, args...)
}

func (l *Logger) Close() {
	_ = l.Sync()
}
