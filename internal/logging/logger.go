package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "NEXUP_LOG_LEVEL"

// LogFileEnvVar overrides the log file location. The TUI owns the terminal,
// so zap output always goes to a file, never to stdout/stderr.
const LogFileEnvVar = "NEXUP_LOG_FILE"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks NEXUP_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(level string) error {
	if level == "" {
		level = os.Getenv(LogLevelEnvVar)
	}

	if level == "" {
		logger = zap.NewNop()
		return nil
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{logFilePath()},
		ErrorOutputPaths: []string{logFilePath()},
	}

	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// InitializeFromEnv initializes the logger from the NEXUP_LOG_LEVEL
// environment variable. This is the recommended way to initialize logging:
// silent by default so the curated TUI output stays clean.
func InitializeFromEnv() error {
	return Initialize("")
}

// logFilePath returns the log destination: NEXUP_LOG_FILE when set, else
// nexup.log in the user cache dir, else nexup.log in the temp dir.
func logFilePath() string {
	if path := os.Getenv(LogFileEnvVar); path != "" {
		return path
	}
	if cacheDir, err := os.UserCacheDir(); err == nil {
		dir := filepath.Join(cacheDir, "nexup")
		if err := os.MkdirAll(dir, 0700); err == nil {
			return filepath.Join(dir, "nexup.log")
		}
	}
	return filepath.Join(os.TempDir(), "nexup.log")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// LogJobStart logs the launch of an updater job
func LogJobStart(script string, args []string, envCount int) {
	Info("Updater job starting",
		zap.String("script", script),
		zap.Strings("args", args),
		zap.Int("env_vars", envCount),
	)
}

// LogJobExit logs the terminal outcome of an updater job
func LogJobExit(exitCode int, duration time.Duration) {
	Info("Updater job finished",
		zap.Int("exit_code", exitCode),
		zap.Duration("duration", duration),
	)
}

// LogDetection logs a detection-helper probe result
func LogDetection(source, key string, found bool) {
	Debug("Detection probe",
		zap.String("source", source),
		zap.String("key", key),
		zap.Bool("found", found),
	)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
