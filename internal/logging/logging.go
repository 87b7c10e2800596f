package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Logger is a deliberately small, framework-agnostic logging interface so
// components can be tested with an in-memory recorder.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value interface{}
}

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return levelDebug
	case "WARN", "WARNING":
		return levelWarn
	case "ERROR":
		return levelError
	default:
		return levelInfo
	}
}

// StdoutLogger prints JSON lines to stdout. The minimum level comes from the
// LOG_LEVEL environment variable (default INFO).
type StdoutLogger struct {
	component string
	min       level
}

// NewStdoutLogger creates a StdoutLogger. component is optional and is
// included on every line.
func NewStdoutLogger(component string) *StdoutLogger {
	return &StdoutLogger{component: component, min: parseLevel(os.Getenv("LOG_LEVEL"))}
}

func (s *StdoutLogger) log(lv level, name string, msg string, fields ...Field) {
	if lv < s.min {
		return
	}
	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any)
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	entry := outEntry{
		Level:     name,
		Msg:       msg,
		Component: s.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(entry)
	if err != nil {
		// Fallback simple formatting to stdout if JSON marshal fails
		fmt.Fprintf(os.Stdout, "%s %s %v\n", name, msg, m)
		return
	}
	fmt.Fprintln(os.Stdout, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) { s.log(levelDebug, "debug", msg, fields...) }
func (s *StdoutLogger) Info(msg string, fields ...Field)  { s.log(levelInfo, "info", msg, fields...) }
func (s *StdoutLogger) Warn(msg string, fields ...Field)  { s.log(levelWarn, "warn", msg, fields...) }
func (s *StdoutLogger) Error(msg string, fields ...Field) { s.log(levelError, "error", msg, fields...) }

func (s *StdoutLogger) With(fields ...Field) Logger {
	child := &StdoutLogger{component: s.component, min: s.min}
	// If fields include a component key, prefer that as the component name
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
			}
		}
	}
	return child
}
