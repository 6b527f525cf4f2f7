package ulogger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ordishs/gocore"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// callerWidth is the column width of the caller in pretty output.
const callerWidth = 32

var levelColors = map[string]int{
	"debug": colorBlue,
	"info":  colorGreen,
	"warn":  colorYellow,
	"error": colorRed,
	"fatal": colorRed,
	"panic": colorRed,
}

var zerologLevels = map[string]zerolog.Level{
	"DEBUG": zerolog.DebugLevel,
	"INFO":  zerolog.InfoLevel,
	"WARN":  zerolog.WarnLevel,
	"ERROR": zerolog.ErrorLevel,
	"FATAL": zerolog.FatalLevel,
	"PANIC": zerolog.PanicLevel,
}

type ZLoggerWrapper struct {
	zerolog.Logger
	service string
	w       io.Writer
	pretty  bool
}

func NewZeroLogger(service string, options ...Option) *ZLoggerWrapper {
	if service == "" {
		service = "headerchain"
	}

	opts := DefaultOptions()
	for _, o := range options {
		o(opts)
	}

	pretty := gocore.Config().GetBool("PRETTY_LOGS", true)
	if opts.pretty != nil {
		pretty = *opts.pretty
	}

	z := &ZLoggerWrapper{
		service: service,
		w:       opts.writer,
		pretty:  pretty,
	}

	if pretty {
		z.Logger = zerolog.New(consoleWriter(opts.writer, service)).With().
			CallerWithSkipFrameCount(zerolog.CallerSkipFrameCount + 1).
			Timestamp().
			Logger()
	} else {
		z.Logger = zerolog.New(opts.writer).With().
			Str("service", service).
			Timestamp().
			Logger()
	}

	z.SetLogLevel(opts.logLevel)

	return z
}

func consoleWriter(w io.Writer, service string) zerolog.ConsoleWriter {
	noColor := true
	if f, ok := w.(*os.File); ok && os.Getenv("NO_COLOR") == "" {
		noColor = !term.IsTerminal(int(f.Fd()))
	}

	paint := func(s string, c int) string {
		if noColor || c == 0 {
			return s
		}

		return fmt.Sprintf("\x1b[%dm%s\x1b[0m", c, s)
	}

	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: "15:04:05",
		FormatLevel: func(i interface{}) string {
			level, _ := i.(string)
			c, ok := levelColors[level]
			if !ok {
				c = colorWhite
			}

			return "| " + paint(strings.ToUpper(fmt.Sprintf("%-6s", level)), c) + "|"
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("| %-6s| %s", service, i)
		},
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s:", i)
		},
		FormatCaller: func(i interface{}) string {
			caller, _ := i.(string)
			if caller == "" {
				return ""
			}

			return paint(fmt.Sprintf("%-*s", callerWidth, shortCaller(caller)), colorBold)
		},
	}
}

// shortCaller keeps as many trailing path elements of file:line as fit in
// callerWidth.
func shortCaller(caller string) string {
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, caller); err == nil {
			caller = rel
		}
	}

	parts := strings.Split(filepath.ToSlash(caller), "/")
	short := parts[len(parts)-1]

	for i := len(parts) - 2; i >= 0; i-- {
		if len(short)+len(parts[i])+1 > callerWidth {
			break
		}

		short = parts[i] + "/" + short
	}

	return short
}

func (z *ZLoggerWrapper) New(service string, options ...Option) Logger {
	pretty := z.pretty

	// inherit the parent's writer, level and format unless overridden
	o := []Option{
		WithWriter(z.w),
		WithLevel(z.Logger.GetLevel().String()),
		WithPretty(pretty),
	}

	return NewZeroLogger(service, append(o, options...)...)
}

func (z *ZLoggerWrapper) Duplicate(options ...Option) Logger {
	return z.New(z.service, options...)
}

func (z *ZLoggerWrapper) SetLogLevel(logLevel string) {
	level, ok := zerologLevels[strings.ToUpper(logLevel)]
	if !ok {
		level = zerolog.InfoLevel
	}

	z.Logger = z.Logger.Level(level)
}

func (z *ZLoggerWrapper) LogLevel() int {
	switch z.Logger.GetLevel() {
	case zerolog.DebugLevel:
		return int(gocore.DEBUG)
	case zerolog.WarnLevel:
		return int(gocore.WARN)
	case zerolog.ErrorLevel:
		return int(gocore.ERROR)
	case zerolog.FatalLevel:
		return int(gocore.FATAL)
	default:
		return int(gocore.INFO)
	}
}

func (z *ZLoggerWrapper) Debugf(format string, args ...interface{}) {
	z.Logger.Debug().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Infof(format string, args ...interface{}) {
	z.Logger.Info().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Warnf(format string, args ...interface{}) {
	z.Logger.Warn().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Errorf(format string, args ...interface{}) {
	z.Logger.Error().Msgf(format, args...)
}

func (z *ZLoggerWrapper) Fatalf(format string, args ...interface{}) {
	z.Logger.Fatal().Msgf(format, args...)
}
