package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	log *logrus.Logger

	// used before Init: only errors reach stderr
	fallback = newFallback()
)

func newFallback() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// Init configures the process logger. An empty level means info.
func Init(level, format string) error {
	lvl := logrus.InfoLevel
	if level = strings.TrimSpace(level); level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	l := logrus.New()
	l.SetLevel(lvl)
	switch format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	l.SetOutput(os.Stdout)

	log = l
	return nil
}

func std() *logrus.Logger {
	if log == nil {
		return fallback
	}
	return log
}

// SetOutput redirects the logger. The stdio MCP server needs it because
// stdout carries the protocol.
func SetOutput(w io.Writer) {
	std().SetOutput(w)
}

func WithFields(fields map[string]interface{}) *logrus.Entry {
	return std().WithFields(fields)
}

func Debug(args ...interface{})                 { std().Debug(args...) }
func Debugf(format string, args ...interface{}) { std().Debugf(format, args...) }
func Info(args ...interface{})                  { std().Info(args...) }
func Infof(format string, args ...interface{})  { std().Infof(format, args...) }
func Warn(args ...interface{})                  { std().Warn(args...) }
func Warnf(format string, args ...interface{})  { std().Warnf(format, args...) }
func Error(args ...interface{})                 { std().Error(args...) }
func Errorf(format string, args ...interface{}) { std().Errorf(format, args...) }
func Fatalf(format string, args ...interface{}) { std().Fatalf(format, args...) }
