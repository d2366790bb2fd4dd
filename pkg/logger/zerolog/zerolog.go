package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options controls the console output of New.
type Options struct {
	Level      string
	TimeFormat string
	Colored    bool
	JSON       bool
	Out        io.Writer
}

// New builds a zerolog logger writing either JSON lines or an aligned,
// optionally coloured, console format.
func New(opts Options) (*zerolog.Logger, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	if opts.JSON {
		log := zerolog.New(out).Level(level).With().Timestamp().Logger()
		return &log, nil
	}

	output := zerolog.ConsoleWriter{
		Out:             out,
		NoColor:         !opts.Colored,
		TimeFormat:      opts.TimeFormat,
		FormatMessage:   formatMessage,
		FormatCaller:    formatCaller,
		FormatLevel:     levelFormatter(opts.Colored),
		FormatTimestamp: timestampFormatter(opts.TimeFormat, opts.Colored),
	}

	log := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return &log, nil
}

func paint(colored bool, colour func(string, ...interface{}) string, format string, args ...interface{}) string {
	if !colored {
		return fmt.Sprintf(format, args...)
	}
	return colour(format, args...)
}

func levelFormatter(colored bool) zerolog.Formatter {
	return func(i interface{}) string {
		level, _ := i.(string)
		switch level {
		case zerolog.LevelTraceValue:
			return paint(colored, term.Cyanf, "[TRC]")
		case zerolog.LevelDebugValue:
			return paint(colored, term.Cyanf, "[DBG]")
		case zerolog.LevelInfoValue:
			return paint(colored, term.Greenf, "[INF]")
		case zerolog.LevelWarnValue:
			return paint(colored, term.Yellowf, "[WAR]")
		case zerolog.LevelErrorValue:
			return paint(colored, term.Redf, "[ERR]")
		case zerolog.LevelFatalValue:
			return paint(colored, term.Redf, "[FTL]")
		default:
			return paint(colored, term.Whitef, "[UNK]")
		}
	}
}

func formatMessage(i interface{}) string {
	const maxSize = 80

	msg, ok := i.(string)
	if !ok || len(msg) == 0 {
		return ">"
	}

	if len(msg) > maxSize {
		msg = msg[:maxSize]
	}

	return "> " + msg + strings.Repeat(" ", maxSize-len(msg))
}

func formatCaller(i interface{}) string {
	const maxFileSize = 18
	const maxLineSize = 4

	fname, ok := i.(string)
	if !ok || len(fname) == 0 {
		return ""
	}

	caller := filepath.Base(fname)
	fileBase, line, found := strings.Cut(caller, ":")
	if !found {
		return caller
	}

	if len(fileBase) > maxFileSize {
		fileBase = fileBase[:maxFileSize]
	}
	if len(line) > maxLineSize {
		line = line[len(line)-maxLineSize:]
	}

	return fmt.Sprintf("[%-*s:%*s]", maxFileSize, fileBase, maxLineSize, line)
}

func timestampFormatter(layout string, colored bool) zerolog.Formatter {
	return func(i interface{}) string {
		strTime, ok := i.(string)
		if !ok {
			return paint(colored, term.Cyanf, "[%v]", i)
		}

		if ts, err := time.ParseInLocation(time.RFC3339, strTime, time.Local); err == nil {
			strTime = ts.In(time.Local).Format(layout)
		}

		return paint(colored, term.Cyanf, "[%s]", strTime)
	}
}
