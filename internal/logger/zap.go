package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

const defaultZapLevel = zapcore.DebugLevel

func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// newCore builds a console core on stdout, teed into the log file when a
// path is given. A file that cannot be opened is skipped; the console sink
// always works.
func newCore(level zapcore.Level, file string) zapcore.Core {
	enc := zapcore.NewConsoleEncoder(encoderConfig())
	atom := zap.NewAtomicLevelAt(level)

	cores := []zapcore.Core{
		zapcore.NewCore(enc, zapcore.AddSync(zapcore.Lock(os.Stdout)), atom),
	}
	if file != "" {
		if f, err := os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			cores = append(cores, zapcore.NewCore(enc, zapcore.AddSync(f), atom))
		}
	}
	return zapcore.NewTee(cores...)
}

func newZapLogger(levelStr, file string) *Logger {
	core := newCore(toZapLevel(levelStr), file)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
	}
}
