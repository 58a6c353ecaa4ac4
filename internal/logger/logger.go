package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sqlbridge-mcp/internal/config"
)

// The server speaks MCP over stdout, so console logging always goes to
// stderr. File output is optional and size-rotated.

type Config struct {
	Level      slog.Level
	OutputFile string
	MaxSize    int64 // MB
	Console    bool
}

func ParseLevel(level string) slog.Level {
	switch level {
	case "DEBUG", "debug":
		return slog.LevelDebug
	case "WARN", "warn", "WARNING", "warning":
		return slog.LevelWarn
	case "ERROR", "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func FromLoggingConfig(logCfg config.LoggingConfig) Config {
	return Config{
		Level:      ParseLevel(logCfg.Level),
		OutputFile: logCfg.OutputFile,
		MaxSize:    logCfg.MaxSizeMB,
		Console:    logCfg.Console,
	}
}

type Logger struct {
	slogger *slog.Logger
	logFile *os.File
}

var globalLogger *Logger

func Initialize(cfg Config) error {
	l, err := NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	globalLogger = l
	return nil
}

func NewLogger(cfg Config) (*Logger, error) {
	logger := &Logger{}

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stderr)
	}

	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}

		if err := rotateLogIfNeeded(cfg.OutputFile, cfg.MaxSize*1024*1024); err != nil {
			return nil, fmt.Errorf("failed to rotate log: %w", err)
		}

		file, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.logFile = file
		writers = append(writers, file)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: cfg.Level})
	logger.slogger = slog.New(handler)
	return logger, nil
}

func rotateLogIfNeeded(filename string, maxSize int64) error {
	info, err := os.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if maxSize > 0 && info.Size() >= maxSize {
		backupName := fmt.Sprintf("%s.%s", filename, time.Now().Format("20060102-150405"))
		if err := os.Rename(filename, backupName); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}
	return nil
}

func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func (l *Logger) Debug(msg string, args ...any) { l.slogger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slogger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slogger.Warn(msg, args...) }

func (l *Logger) Error(msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err.Error())
	}
	l.slogger.Error(msg, args...)
}

func Debug(msg string, args ...any) {
	if globalLogger != nil {
		globalLogger.Debug(msg, args...)
	}
}

func Info(msg string, args ...any) {
	if globalLogger != nil {
		globalLogger.Info(msg, args...)
	}
}

func Warn(msg string, args ...any) {
	if globalLogger != nil {
		globalLogger.Warn(msg, args...)
	}
}

func Error(msg string, err error, args ...any) {
	if globalLogger != nil {
		globalLogger.Error(msg, err, args...)
	}
}

// LogToolCall records a completed tool invocation with its request id.
func LogToolCall(toolName, requestID string, elapsed time.Duration, err error) {
	if err != nil {
		Error("tool call failed", err, "tool", toolName, "request_id", requestID, "elapsed", elapsed)
	} else {
		Info("tool call completed", "tool", toolName, "request_id", requestID, "elapsed", elapsed)
	}
}

// LogDatabaseOperation records a statement execution, truncating long SQL.
func LogDatabaseOperation(operation, query string, rowsAffected int64, err error) {
	if len(query) > 100 {
		query = query[:100] + "..."
	}
	if err != nil {
		Error("database operation failed", err, "op", operation, "query", query)
	} else {
		Info("database operation completed", "op", operation, "query", query, "rows", rowsAffected)
	}
}

func Shutdown() error {
	if globalLogger != nil {
		return globalLogger.Close()
	}
	return nil
}
