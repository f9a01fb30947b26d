package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

const serviceName = "page-comments-api"

// Options controls where and how the root logger writes
type Options struct {
	Level      string
	Pretty     bool
	File       string // rotating log file, empty disables
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// FromEnv reads options the same way the service always has: LOG_LEVEL and ENV
func FromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("ENV") == "development",
		File:   os.Getenv("LOG_FILE"),
	}
}

// New creates a new zerolog logger with structured output
func New() zerolog.Logger {
	return NewWithOptions(FromEnv())
}

// NewWithOptions builds the root logger. Stdout is always written; a rotating
// file is added when File is set.
func NewWithOptions(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, newFileWriter(opts))
	}

	ctx := zerolog.New(out).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp()
	if opts.Pretty {
		ctx = ctx.Caller()
	}
	return ctx.Str("service", serviceName).Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func newFileWriter(opts Options) io.Writer {
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
}
