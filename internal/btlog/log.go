// Package btlog provides the structured logger shared by every component
// of the ACL manager, following the same package-level logger pattern the
// teacher stack uses for its host BLE implementation.
package btlog

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the structured logging surface every component depends on.
type Logger interface {
	Info(...interface{})
	Debug(...interface{})
	Error(...interface{})
	Warn(...interface{})

	Infof(string, ...interface{})
	Debugf(string, ...interface{})
	Errorf(string, ...interface{})
	Warnf(string, ...interface{})

	// With returns a child logger carrying the given fields on every line,
	// used to tag log output with a connection handle or address.
	With(fields map[string]interface{}) Logger
}

var (
	mu  sync.Mutex
	log Logger
)

// Set installs a process-wide logger, primarily for tests that want to
// capture or silence output.
func Set(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// Get returns the process-wide logger, building the default one on first use.
func Get() Logger {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		log = newDefault()
	}
	return log
}

type logrusLogger struct {
	*logrus.Entry
}

func newDefault() Logger {
	l := &logrus.Logger{
		Formatter: &logrus.TextFormatter{DisableTimestamp: false},
		Level:     logrus.InfoLevel,
		Out:       os.Stderr,
		Hooks:     make(logrus.LevelHooks),
	}
	return &logrusLogger{Entry: l.WithFields(logrus.Fields{"component": "acl"})}
}

func (l *logrusLogger) With(fields map[string]interface{}) Logger {
	return &logrusLogger{Entry: l.Entry.WithFields(fields)}
}
