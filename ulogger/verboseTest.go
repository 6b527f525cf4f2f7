package ulogger

import (
	"sync"
)

// TestingT is the subset of testing.TB the verbose logger writes to.
type TestingT interface {
	Logf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// VerboseTestLogger forwards every line to the test log, prefixed with the service name.
type VerboseTestLogger struct {
	t       TestingT
	service string
	mutex   *sync.Mutex
}

func NewVerboseTestLogger(t TestingT) *VerboseTestLogger {
	return &VerboseTestLogger{t: t, mutex: &sync.Mutex{}}
}

func (l *VerboseTestLogger) LogLevel() int {
	return 0
}

func (l *VerboseTestLogger) SetLogLevel(string) {}

func (l *VerboseTestLogger) New(service string, _ ...Option) Logger {
	return &VerboseTestLogger{t: l.t, service: service, mutex: l.mutex}
}

func (l *VerboseTestLogger) Duplicate(_ ...Option) Logger {
	return &VerboseTestLogger{t: l.t, service: l.service, mutex: l.mutex}
}

func (l *VerboseTestLogger) Debugf(format string, args ...interface{}) {
	l.logf("DEBUG", format, args...)
}

func (l *VerboseTestLogger) Infof(format string, args ...interface{}) {
	l.logf("INFO", format, args...)
}

func (l *VerboseTestLogger) Warnf(format string, args ...interface{}) {
	l.logf("WARN", format, args...)
}

func (l *VerboseTestLogger) Errorf(format string, args ...interface{}) {
	l.logf("ERROR", format, args...)
}

func (l *VerboseTestLogger) Fatalf(format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.t.Fatalf("[FATAL] "+l.prefix()+format, args...)
}

func (l *VerboseTestLogger) logf(level, format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.t.Logf("["+level+"] "+l.prefix()+format, args...)
}

func (l *VerboseTestLogger) prefix() string {
	if l.service == "" {
		return ""
	}

	return "[" + l.service + "] "
}
