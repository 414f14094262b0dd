package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"birdfinder-server-go/src/configs"
)

// LogLevel log severity
type LogLevel string

const (
	DebugLevel LogLevel = "debug"
	InfoLevel  LogLevel = "info"
	WarnLevel  LogLevel = "warn"
	ErrorLevel LogLevel = "error"
)

// Logger writes JSON lines to the log file and a short line to the console
type Logger struct {
	level   LogLevel
	logFile *os.File
	console io.Writer
	mu      sync.Mutex
}

// LogEntry one JSON line in the log file
type LogEntry struct {
	Time    string      `json:"time"`
	Level   LogLevel    `json:"level"`
	Tag     string      `json:"tag,omitempty"`
	Message string      `json:"message"`
	Fields  interface{} `json:"fields,omitempty"`
}

// NewLogger creates a logger from config. An empty log_dir logs to the console only.
func NewLogger(config *configs.Config) (*Logger, error) {
	logger := &Logger{
		level:   LogLevel(strings.ToLower(config.Log.LogLevel)),
		console: os.Stdout,
	}

	if config.Log.LogDir == "" {
		return logger, nil
	}

	if err := os.MkdirAll(config.Log.LogDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(config.Log.LogDir, config.Log.LogFile)
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.logFile = file

	return logger, nil
}

// NewConsoleLogger logger without a file, used by tests and tools
func NewConsoleLogger(level LogLevel, w io.Writer) *Logger {
	return &Logger{level: level, console: w}
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func (l *Logger) log(level LogLevel, tag string, msg string, fields ...interface{}) {
	nowString := time.Now().Format("2006-01-02 15:04:05.000")
	entry := LogEntry{
		Time:    nowString,
		Level:   level,
		Tag:     tag,
		Message: msg,
	}

	if len(fields) > 0 {
		entry.Fields = fields[0]
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		data, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal log entry: %v\n", err)
			return
		}
		if _, err := l.logFile.Write(append(data, '\n')); err != nil {
			fmt.Fprintf(os.Stderr, "write log: %s %v\n", msg, err)
		}
	}

	if l.console != nil {
		if tag != "" {
			fmt.Fprintf(l.console, "[%s] [%s] [%s] %s\n", nowString, level, tag, msg)
		} else {
			fmt.Fprintf(l.console, "[%s] [%s] %s\n", nowString, level, msg)
		}
	}
}

// Debug only emitted when log_level is debug
func (l *Logger) Debug(msg string, fields ...interface{}) {
	if l.level == DebugLevel {
		l.log(DebugLevel, "", msg, fields...)
	}
}

// Info log
func (l *Logger) Info(msg string, fields ...interface{}) {
	l.log(InfoLevel, "", msg, fields...)
}

// Warn log
func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.log(WarnLevel, "", msg, fields...)
}

// Error log
func (l *Logger) Error(msg string, fields ...interface{}) {
	l.log(ErrorLevel, "", msg, fields...)
}

// TaggedLogger prefixes every entry with a component tag
type TaggedLogger struct {
	*Logger
	tag string
}

// WithTag creates a tagged logger sharing the same sinks
func (l *Logger) WithTag(tag string) *TaggedLogger {
	return &TaggedLogger{
		Logger: l,
		tag:    tag,
	}
}

func (l *TaggedLogger) Debug(msg string, fields ...interface{}) {
	if l.level == DebugLevel {
		l.log(DebugLevel, l.tag, msg, fields...)
	}
}

func (l *TaggedLogger) Info(msg string, fields ...interface{}) {
	l.log(InfoLevel, l.tag, msg, fields...)
}

func (l *TaggedLogger) Warn(msg string, fields ...interface{}) {
	l.log(WarnLevel, l.tag, msg, fields...)
}

func (l *TaggedLogger) Error(msg string, fields ...interface{}) {
	l.log(ErrorLevel, l.tag, msg, fields...)
}
