// Package logger provides the process-wide leveled logger. It wraps the
// standard log package with level filtering; call Init once at startup.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Level orders log severities from debug (lowest) to error (highest).
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

type Logger struct {
	level  Level
	logger *log.Logger
}

var defaultLogger *Logger

// Init configures the default logger. Format "text" adds caller file:line
// to each entry; anything else keeps timestamps only.
func Init(level string, format string) {
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}
	defaultLogger = &Logger{
		level:  ParseLevel(level),
		logger: log.New(os.Stderr, "", flags),
	}
}

// SetOutput redirects the default logger, mainly for tests.
func SetOutput(w io.Writer) {
	if defaultLogger != nil {
		defaultLogger.logger.SetOutput(w)
	}
}

func output(level Level, tag, format string, args ...interface{}) {
	if defaultLogger == nil || defaultLogger.level > level {
		return
	}
	_ = defaultLogger.logger.Output(3, fmt.Sprintf(tag+format, args...))
}

func Debug(format string, args ...interface{}) { output(DebugLevel, "[DEBUG] ", format, args...) }

func Info(format string, args ...interface{}) { output(InfoLevel, "[INFO] ", format, args...) }

func Warn(format string, args ...interface{}) { output(WarnLevel, "[WARN] ", format, args...) }

func Error(format string, args ...interface{}) { output(ErrorLevel, "[ERROR] ", format, args...) }

// Fatal logs the message and terminates the process.
func Fatal(format string, args ...interface{}) {
	msg := fmt.Sprintf("[FATAL] "+format, args...)
	if defaultLogger != nil {
		_ = defaultLogger.logger.Output(3, msg)
	} else {
		log.Print(msg)
	}
	os.Exit(1)
}
