package main

import (
	"fmt"
	"io"

	charmlog "github.com/charmbracelet/log"
	"github.com/npillmayer/schuko/tracing"
)

// charmTracer implements tracing.Trace on top of a charmbracelet logger.
type charmTracer struct {
	log   *charmlog.Logger
	level tracing.TraceLevel
}

func newCharmTracer(w io.Writer, level tracing.TraceLevel) *charmTracer {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
	})
	t := &charmTracer{log: l}
	t.SetTraceLevel(level)
	return t
}

// Errorf is part of interface tracing.Trace.
func (t *charmTracer) Errorf(s string, args ...interface{}) {
	t.log.Error(fmt.Sprintf(s, args...))
}

// Infof is part of interface tracing.Trace.
func (t *charmTracer) Infof(s string, args ...interface{}) {
	t.log.Info(fmt.Sprintf(s, args...))
}

// Debugf is part of interface tracing.Trace.
func (t *charmTracer) Debugf(s string, args ...interface{}) {
	t.log.Debug(fmt.Sprintf(s, args...))
}

// P is part of interface tracing.Trace.
func (t *charmTracer) P(key string, val interface{}) tracing.Trace {
	return &charmTracer{log: t.log.With(key, val), level: t.level}
}

// SetTraceLevel is part of interface tracing.Trace.
func (t *charmTracer) SetTraceLevel(l tracing.TraceLevel) {
	t.level = l
	switch l {
	case tracing.LevelDebug:
		t.log.SetLevel(charmlog.DebugLevel)
	case tracing.LevelInfo:
		t.log.SetLevel(charmlog.InfoLevel)
	default:
		t.log.SetLevel(charmlog.ErrorLevel)
	}
}

// GetTraceLevel is part of interface tracing.Trace.
func (t *charmTracer) GetTraceLevel() tracing.TraceLevel {
	return t.level
}

// SetOutput is part of interface tracing.Trace.
func (t *charmTracer) SetOutput(w io.Writer) {
	t.log.SetOutput(w)
}

var _ tracing.Trace = &charmTracer{}
