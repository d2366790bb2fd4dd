package logger

type Level int8

const (
	Disabled   Level = -1   // Disabled turns logging off.
	TraceLevel Level = iota // TraceLevel is used for request/response dumps.
	DebugLevel              // DebugLevel is used for cache hits, retries and similar detail.
	InfoLevel               // InfoLevel is used for informational messages.
	WarnLevel               // WarnLevel is used for degraded but recoverable states.
	ErrorLevel              // ErrorLevel is used for failed requests and renders.
	FatalLevel              // FatalLevel logs and then exits the program.
	NoLevel                 // NoLevel is used when the level is unknown.
)

// Logger is the logging surface used across the dashboard packages.
type Logger interface {
	WithField(key string, value any) Logger
	WithFields(fields map[string]any) Logger
	WithError(err error) Logger

	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Fatal(args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)

	SetLevel(level Level)
	GetLevel() Level
}

// ParseLevel maps a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(name string) Level {
	switch name {
	case "disabled", "off":
		return Disabled
	case "trace":
		return TraceLevel
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}
