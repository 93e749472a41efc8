package logger

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level is a log severity. Messages below the configured level are dropped.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. Unknown values default to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes leveled, printf-style log lines to a single destination.
type Logger struct {
	mu    sync.Mutex
	level Level
	out   *log.Logger
}

var global = &Logger{
	level: INFO,
	out:   log.New(os.Stdout, "", log.LstdFlags),
}

// Init configures the global logger. A nil output keeps stdout.
func Init(level Level, output io.Writer) {
	if output == nil {
		output = os.Stdout
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	global.level = level
	global.out = log.New(output, "", log.LstdFlags)
}

// SetLevel changes the global log level.
func SetLevel(level Level) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.level = level
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	l.mu.Lock()
	enabled := level >= l.level
	out := l.out
	l.mu.Unlock()

	if !enabled {
		return
	}
	out.Printf("["+level.String()+"] "+format, v...)
}

func (l *Logger) Debug(format string, v ...interface{})   { l.logf(DEBUG, format, v...) }
func (l *Logger) Info(format string, v ...interface{})    { l.logf(INFO, format, v...) }
func (l *Logger) Warning(format string, v ...interface{}) { l.logf(WARNING, format, v...) }
func (l *Logger) Error(format string, v ...interface{})   { l.logf(ERROR, format, v...) }

// Fatal logs at ERROR and exits.
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
	os.Exit(1)
}

// Package-level helpers writing through the global logger.

func Debug(format string, v ...interface{})   { global.Debug(format, v...) }
func Info(format string, v ...interface{})    { global.Info(format, v...) }
func Warning(format string, v ...interface{}) { global.Warning(format, v...) }
func Error(format string, v ...interface{})   { global.Error(format, v...) }
func Fatal(format string, v ...interface{})   { global.Fatal(format, v...) }
