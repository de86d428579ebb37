package logging

import (
	"io"

	"github.com/kataras/golog"
)

// DefaultPrefix is prepended to every line written by the CLI logger
const DefaultPrefix = "[logicflow] "

var gologLevels = map[LogLevel]golog.Level{
	LogLevelDebug: golog.DebugLevel,
	LogLevelInfo:  golog.InfoLevel,
	LogLevelWarn:  golog.WarnLevel,
	LogLevelError: golog.ErrorLevel,
	LogLevelNone:  golog.DisableLevel,
}

// Options configures a golog-backed logger
type Options struct {
	Prefix string
	Level  LogLevel
	// Debug forces LogLevelDebug regardless of Level
	Debug bool
	// TimeFormat overrides golog's timestamp layout when set
	TimeFormat string
}

// GologLogger writes leveled lines through kataras/golog.
// Filtering happens in golog; the wrapper only tracks the level it was given.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
}

var _ Logger = (*GologLogger)(nil)

// New creates a logger writing to out with the given prefix and level
func New(out io.Writer, prefix string, level LogLevel) *GologLogger {
	return NewWithOptions(out, Options{Prefix: prefix, Level: level})
}

// NewWithOptions creates a logger writing to out
func NewWithOptions(out io.Writer, opts Options) *GologLogger {
	g := golog.New()
	g.SetOutput(out)
	if opts.Prefix != "" {
		g.SetPrefix(opts.Prefix)
	}
	if opts.TimeFormat != "" {
		g.SetTimeFormat(opts.TimeFormat)
	}

	level := opts.Level
	if opts.Debug {
		level = LogLevelDebug
	}
	l := &GologLogger{logger: g}
	l.SetLevel(level)
	return l
}

// Wrap adapts an existing golog.Logger, keeping its level
func Wrap(g *golog.Logger) *GologLogger {
	l := &GologLogger{logger: g, level: LogLevelInfo}
	for level, gl := range gologLevels {
		if gl == g.Level {
			l.level = level
			break
		}
	}
	if g.Level == golog.FatalLevel {
		l.level = LogLevelError
	}
	return l
}

func (l *GologLogger) Debug(format string, v ...any) { l.logger.Debugf(format, v...) }
func (l *GologLogger) Info(format string, v ...any)  { l.logger.Infof(format, v...) }
func (l *GologLogger) Warn(format string, v ...any)  { l.logger.Warnf(format, v...) }
func (l *GologLogger) Error(format string, v ...any) { l.logger.Errorf(format, v...) }

// Named returns a child logger whose lines carry component after the parent prefix.
// Children share the parent's output and start at its level.
func (l *GologLogger) Named(component string) *GologLogger {
	return &GologLogger{logger: l.logger.Child(component), level: l.level}
}

// SetLevel changes the level of this logger
func (l *GologLogger) SetLevel(level LogLevel) {
	gl, ok := gologLevels[level]
	if !ok {
		level, gl = LogLevelInfo, golog.InfoLevel
	}
	l.level = level
	l.logger.SetLevel(golog.Levels[gl].Name)
}

// Level returns the current level
func (l *GologLogger) Level() LogLevel {
	return l.level
}

// Named tags l with component when it supports it and returns l unchanged otherwise
func Named(l Logger, component string) Logger {
	if g, ok := l.(*GologLogger); ok {
		return g.Named(component)
	}
	return OrNoOp(l)
}
