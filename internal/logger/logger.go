package logger

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Fields = logrus.Fields

type Logger struct {
	entry *logrus.Entry
}

// New builds a logger tagged with the service name. LOG_LEVEL and LOG_FORMAT
// (text or json) are read from the environment.
func New(service string) *Logger {
	return NewWithOutput(service, os.Stdout)
}

func NewWithOutput(service string, out io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
			DisableColors:   os.Getenv("LOG_COLORS") == "false",
		})
	}

	return &Logger{entry: base.WithField("service", service)}
}

func parseLevel(value string) logrus.Level {
	level, err := logrus.ParseLevel(strings.ToLower(value))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (l *Logger) WithFields(fields Fields) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{entry: l.entry.WithError(err)}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.entry.Fatalf(format, args...)
}

// SetStdLog redirects standard log package to use this logger
func (l *Logger) SetStdLog() {
	log.SetOutput(l.entry.WriterLevel(logrus.InfoLevel))
	log.SetFlags(0)
}
