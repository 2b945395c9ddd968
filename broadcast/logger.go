package broadcast

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/charmbracelet/log"
)

// loggerAdapter bridges a charmbracelet logger onto watermill's
// LoggerAdapter interface so the embedded gochannel logs through the
// same logger as the rest of the bus.
type loggerAdapter struct {
	l *log.Logger
}

// NewLoggerAdapter wraps a charmbracelet logger for watermill.
func NewLoggerAdapter(l *log.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{l: l}
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.l.Error(msg, append([]any{"err", err}, flatten(fields)...)...)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.l.Info(msg, flatten(fields)...)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.l.Debug(msg, flatten(fields)...)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.l.Debug(msg, flatten(fields)...)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{l: a.l.With(flatten(fields)...)}
}

// flatten converts watermill's field map to charmbracelet keyvals.
func flatten(fields watermill.LogFields) []any {
	kv := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
