// Package logging adapts logrus to the Nakama runtime.Logger interface so
// the same logger type is used inside and outside the Nakama server.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/sirupsen/logrus"
)

type logrusLogger struct {
	entry *logrus.Entry
}

var _ runtime.Logger = (*logrusLogger)(nil)

// New builds a logger writing to stderr. format is "json" or "text".
func New(level, format string) runtime.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(w io.Writer, level, format string) runtime.Logger {
	l := logrus.New()
	l.SetOutput(w)
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		l.SetLevel(lvl)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(format string, v ...interface{}) { l.entry.Debugf(format, v...) }
func (l *logrusLogger) Info(format string, v ...interface{})  { l.entry.Infof(format, v...) }
func (l *logrusLogger) Warn(format string, v ...interface{})  { l.entry.Warnf(format, v...) }
func (l *logrusLogger) Error(format string, v ...interface{}) { l.entry.Errorf(format, v...) }

func (l *logrusLogger) WithField(key string, v interface{}) runtime.Logger {
	return &logrusLogger{entry: l.entry.WithField(key, v)}
}

func (l *logrusLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}

func (l *logrusLogger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.entry.Data))
	for k, v := range l.entry.Data {
		out[k] = v
	}
	return out
}

type nopLogger struct{}

// Nop returns a logger that discards everything.
func Nop() runtime.Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...interface{})                   {}
func (nopLogger) Info(string, ...interface{})                    {}
func (nopLogger) Warn(string, ...interface{})                    {}
func (nopLogger) Error(string, ...interface{})                   {}
func (nopLogger) WithField(string, interface{}) runtime.Logger    { return nopLogger{} }
func (nopLogger) WithFields(map[string]interface{}) runtime.Logger { return nopLogger{} }
func (nopLogger) Fields() map[string]interface{}                 { return nil }
