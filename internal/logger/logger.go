// Package logger builds the zap logger used by the command line tool.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

// DefaultConfig returns the configuration used when nothing is configured.
// Logs go to stderr so that command output on stdout stays machine readable.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
}

// New creates a zap logger with the given configuration.
func New(cfg *Config) (*zap.Logger, error) {
	writer, err := createWriter(cfg.Output)
	if err != nil {
		return nil, err
	}

	return NewWithWriter(cfg, writer), nil
}

// NewWithWriter creates a zap logger writing to w.
func NewWithWriter(cfg *Config, w io.Writer) *zap.Logger {
	core := zapcore.NewCore(createEncoder(cfg), zapcore.AddSync(w), parseLevel(cfg.Level))

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func createEncoder(cfg *Config) zapcore.Encoder {
	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = DefaultConfig().TimeFormat
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeFormat),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	return zapcore.NewJSONEncoder(encoderConfig)
}

func createWriter(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}

		return file, nil
	}
}
