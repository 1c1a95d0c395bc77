// Package logger provides console logging with severity markers and project prefixes
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger interface for abstracted logging
type Logger interface {
	Info(message string, fields ...Field)
	Error(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Debug(message string, fields ...Field)
	Success(message string, fields ...Field)
	WithProject(project string) Logger
}

// Field represents a structured logging field
type Field struct {
	Key   string
	Value interface{}
}

// WithField creates a new field
func WithField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Severity markers printed in front of every line. Build server log parsers
// match on these.
const (
	MarkerInfo    = "{+}"
	MarkerWarning = "{!}"
	MarkerError   = "{!!!}"
	MarkerDebug   = "{.}"
)

// ProjectLogger implements Logger with project awareness
type ProjectLogger struct {
	logger  *logrus.Logger
	project string
	mu      sync.RWMutex
}

// CustomFormatter formats logs with severity markers and optional colors
type CustomFormatter struct {
	TimestampFormat string
	DisableColors   bool
}

// Format implements logrus.Formatter
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	timestamp := entry.Time.Format(f.TimestampFormat)

	var levelColor *color.Color
	var marker string

	switch entry.Level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		levelColor = color.New(color.FgRed, color.Bold)
		marker = MarkerError
	case logrus.WarnLevel:
		levelColor = color.New(color.FgYellow, color.Bold)
		marker = MarkerWarning
	case logrus.DebugLevel, logrus.TraceLevel:
		levelColor = color.New(color.FgWhite, color.Faint)
		marker = MarkerDebug
	default:
		levelColor = color.New(color.FgCyan)
		marker = MarkerInfo
	}

	projectPrefix := ""
	if project, ok := entry.Data["project"]; ok {
		if f.DisableColors {
			projectPrefix = fmt.Sprintf("[%s] ", project)
		} else {
			projectPrefix = fmt.Sprintf("[%s] ", color.New(color.FgBlue).Sprint(project))
		}
	}

	var output string
	if f.DisableColors {
		output = fmt.Sprintf("%s [%s] %s%s", marker, timestamp, projectPrefix, entry.Message)
	} else {
		output = fmt.Sprintf("%s [%s] %s%s", levelColor.Sprint(marker), timestamp, projectPrefix, entry.Message)
	}

	// Remaining fields, sorted for stable output
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != "project" {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		fields := " {"
		for i, k := range keys {
			if i > 0 {
				fields += ", "
			}
			fields += fmt.Sprintf("%s=%v", k, entry.Data[k])
		}
		fields += "}"
		if f.DisableColors {
			output += fields
		} else {
			output += color.New(color.FgWhite, color.Faint).Sprint(fields)
		}
	}

	return []byte(output + "\n"), nil
}

// CreateLogger creates a logger writing to stdout and, when logFile is set, to that file
func CreateLogger(logFile string, logLevel string) Logger {
	var output io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			output = io.MultiWriter(os.Stdout, file)
		}
	}
	return newLogger(logLevel, output, color.NoColor)
}

// CreateLoggerWithOutput creates a logger with custom output (for testing)
func CreateLoggerWithOutput(logLevel string, output io.Writer) Logger {
	return newLogger(logLevel, output, true)
}

// Discard returns a logger that drops everything
func Discard() Logger {
	return newLogger("error", io.Discard, true)
}

func newLogger(logLevel string, output io.Writer, disableColors bool) Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&CustomFormatter{
		TimestampFormat: "15:04:05",
		DisableColors:   disableColors,
	})
	log.SetOutput(output)

	return &ProjectLogger{logger: log}
}

// WithProject creates a new logger with project context
func (l *ProjectLogger) WithProject(project string) Logger {
	return &ProjectLogger{
		logger:  l.logger,
		project: project,
	}
}

// convertFields converts Field slice to logrus.Fields
func (l *ProjectLogger) convertFields(fields []Field) logrus.Fields {
	result := make(logrus.Fields, len(fields)+1)
	if l.project != "" {
		result["project"] = l.project
	}
	for _, f := range fields {
		result[f.Key] = f.Value
	}
	return result
}

// Info logs an info message
func (l *ProjectLogger) Info(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Info(message)
}

// Error logs an error message
func (l *ProjectLogger) Error(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Error(message)
}

// Warn logs a warning message
func (l *ProjectLogger) Warn(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Warn(message)
}

// Debug logs a debug message
func (l *ProjectLogger) Debug(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Debug(message)
}

// Success logs a success message (info level with special formatting)
func (l *ProjectLogger) Success(message string, fields ...Field) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.WithFields(l.convertFields(fields)).Info("✅ " + message)
}
