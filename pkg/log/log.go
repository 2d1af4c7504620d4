// Package log provides a small structured-logging facade over zerolog,
// keyed by component name, matching the conventions used throughout
// gbtreecore's training core (GetLoggerWithName per package/component,
// key-value pairs for structured fields).
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the structured logging contract consumed by the training core.
// Fields are passed as alternating key/value pairs, mirroring zerolog's
// conventions without leaking the zerolog type into call sites.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

type zerologLogger struct {
	name string
	zl   zerolog.Logger
}

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
	level            = zerolog.InfoLevel
)

// SetOutput redirects loggers obtained from GetLoggerWithName after this
// call to w; loggers obtained earlier keep the writer they were built with.
// Intended for tests that want to capture or silence log output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLevel sets the minimum level emitted by loggers obtained from
// GetLoggerWithName going forward.
func SetLevel(l zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLoggerWithName returns a Logger that stamps every record with a
// "component" field set to name.
func GetLoggerWithName(name string) Logger {
	mu.Lock()
	w, lvl := output, level
	mu.Unlock()

	zl := zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("component", name).
		Logger()

	return &zerologLogger{name: name, zl: zl}
}

func attach(e *zerolog.Event, kv []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			e = e.Str(key, v)
		case int:
			e = e.Int(key, v)
		case int64:
			e = e.Int64(key, v)
		case float64:
			e = e.Float64(key, v)
		case bool:
			e = e.Bool(key, v)
		case time.Duration:
			e = e.Dur(key, v)
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}

func (l *zerologLogger) Debug(msg string, kv ...interface{}) {
	attach(l.zl.Debug(), kv).Msg(msg)
}

func (l *zerologLogger) Info(msg string, kv ...interface{}) {
	attach(l.zl.Info(), kv).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, kv ...interface{}) {
	attach(l.zl.Warn(), kv).Msg(msg)
}

func (l *zerologLogger) Error(msg string, kv ...interface{}) {
	attach(l.zl.Error(), kv).Msg(msg)
}
