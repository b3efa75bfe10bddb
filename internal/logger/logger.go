package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// FileName is the rotating log file written under the log directory.
	FileName = "meetnotes.log"

	maxFileSizeMB = 10
	maxAgeDays    = 7
)

type implLogger struct {
	sugar *zap.SugaredLogger
}

// New creates a console Logger at the given level
func New(level string) Logger {
	return &implLogger{sugar: zap.New(consoleCore(level, "console")).Sugar()}
}

// NewWithFile logs to the console at level and to a rotating file under dir at debug level.
func NewWithFile(level, format, dir string) (Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEnc),
		zapcore.AddSync(&lumberjack.Logger{
			Filename: filepath.Join(dir, FileName),
			MaxSize:  maxFileSizeMB,
			MaxAge:   maxAgeDays,
		}),
		zapcore.DebugLevel,
	)

	core := zapcore.NewTee(consoleCore(level, format), fileCore)
	return &implLogger{sugar: zap.New(core).Sugar()}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &implLogger{sugar: zap.NewNop().Sugar()}
}

// NewZap wraps an existing zap logger, mostly for tests using zaptest/observer.
func NewZap(l *zap.Logger) Logger {
	return &implLogger{sugar: l.Sugar()}
}

func consoleCore(level, format string) zapcore.Core {
	var enc zapcore.Encoder
	if format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.CallerKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewCore(enc, zapcore.Lock(os.Stderr), parseLevel(level))
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Debugf(msg, args...)
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Infof(msg, args...)
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Warnf(msg, args...)
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.sugar.Errorf(msg, args...)
}
