// Package log wraps logrus behind a small Logger interface so the rest of the
// codebase does not depend on a concrete logging implementation.
package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Level is a log severity level.
type Level = logrus.Level

// Log levels, from most to least verbose.
const (
	TraceLevel = logrus.TraceLevel
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// Fields is a set of structured fields attached to a log entry.
type Fields map[string]any

// Logger is the logging interface threaded through the application.
type Logger interface {
	// WithField returns a Logger that includes the given field on every entry.
	WithField(key string, value any) Logger

	// WithFields returns a Logger that includes all given fields on every entry.
	WithFields(fields Fields) Logger

	// WithError returns a Logger that includes the given error as a field.
	WithError(err error) Logger

	// Logf logs a formatted message at the given level.
	Logf(level Level, format string, args ...any)

	Tracef(format string, args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	Trace(args ...any)
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)

	// Level returns the current log level.
	Level() Level

	// SetLevel parses and sets the log level, e.g. "debug".
	SetLevel(str string) error
}

type logger struct {
	entry *logrus.Entry
}

// Option configures a Logger at construction time.
type Option func(*logrus.Logger)

// WithOutput directs log output to the given writer.
func WithOutput(w io.Writer) Option {
	return func(l *logrus.Logger) {
		l.SetOutput(w)
	}
}

// WithLevel sets the initial log level.
func WithLevel(level Level) Option {
	return func(l *logrus.Logger) {
		l.SetLevel(level)
	}
}

// WithFormatter sets the logrus formatter.
func WithFormatter(formatter logrus.Formatter) Option {
	return func(l *logrus.Logger) {
		l.SetFormatter(formatter)
	}
}

// New returns a Logger backed by a fresh logrus instance.
func New(opts ...Option) Logger {
	base := logrus.New()
	base.SetLevel(InfoLevel)
	base.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})

	for _, opt := range opts {
		opt(base)
	}

	return &logger{entry: logrus.NewEntry(base)}
}

func (l *logger) WithField(key string, value any) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}

func (l *logger) WithFields(fields Fields) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logger) WithError(err error) Logger {
	return &logger{entry: l.entry.WithError(err)}
}

func (l *logger) Logf(level Level, format string, args ...any) {
	l.entry.Logf(level, format, args...)
}

func (l *logger) Tracef(format string, args ...any) { l.entry.Tracef(format, args...) }
func (l *logger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

func (l *logger) Trace(args ...any) { l.entry.Trace(args...) }
func (l *logger) Debug(args ...any) { l.entry.Debug(args...) }
func (l *logger) Info(args ...any)  { l.entry.Info(args...) }
func (l *logger) Warn(args ...any)  { l.entry.Warn(args...) }
func (l *logger) Error(args ...any) { l.entry.Error(args...) }

func (l *logger) Level() Level {
	return l.entry.Logger.GetLevel()
}

func (l *logger) SetLevel(str string) error {
	level, err := logrus.ParseLevel(str)
	if err != nil {
		return err
	}

	l.entry.Logger.SetLevel(level)

	return nil
}
