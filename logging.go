package submit

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is the interface the pipeline logs through. The sink is chosen once
// at startup and never swapped afterwards.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// NopLogger logs nothing.
type NopLogger struct{}

// Printf does nothing.
func (NopLogger) Printf(format string, v ...interface{}) {}

// Debugf does nothing.
func (NopLogger) Debugf(format string, v ...interface{}) {}

// LogrusLogger adapts a logrus.Logger to the Logger interface, mapping
// Printf to info level.
type LogrusLogger struct {
	L *logrus.Logger
}

// NewLogrusLogger wraps l.
func NewLogrusLogger(l *logrus.Logger) LogrusLogger {
	return LogrusLogger{L: l}
}

// Printf implements Logger.
func (s LogrusLogger) Printf(format string, v ...interface{}) {
	s.L.Infof(format, v...)
}

// Debugf implements Logger.
func (s LogrusLogger) Debugf(format string, v ...interface{}) {
	s.L.Debugf(format, v...)
}

// Statter is the interface stats collectors implement to get counters and
// timings out of the pipeline.
type Statter interface {
	Count(name string, value int64, rate float64, tags ...string)
	Timing(name string, value time.Duration, rate float64, tags ...string)
}

// NopStatter does nothing.
type NopStatter struct{}

// Count does nothing.
func (NopStatter) Count(name string, value int64, rate float64, tags ...string) {}

// Timing does nothing.
func (NopStatter) Timing(name string, value time.Duration, rate float64, tags ...string) {}
