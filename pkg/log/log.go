package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Logger is the global logger instance
	Logger zerolog.Logger
)

// Level represents log level
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
}

// Init initializes the global logger
func Init(cfg Config) {
	// Set log level
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case InfoLevel:
		level = zerolog.InfoLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Use JSON or console output
	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent creates a child logger with component field
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// Shard builds a child logger scoped to one shard's rank, the context every
// graph operation runs under once a command has opened its datastore. It
// returns a *ScopedLogger rather than a bare zerolog.Logger so that
// WithGraph/WithSeries can keep narrowing the same line of fields without
// the caller re-threading rank at every step.
func Shard(rank int) *ScopedLogger {
	return &ScopedLogger{l: Logger.With().Int("shard_rank", rank).Logger()}
}

// ScopedLogger narrows a zerolog.Logger one field at a time, tracking the
// shard/graph/series context an operation is running under so a single
// log line can be produced with all of it attached.
type ScopedLogger struct {
	l zerolog.Logger
}

// WithGraph narrows to one graph key.
func (s *ScopedLogger) WithGraph(graphKey string) *ScopedLogger {
	return &ScopedLogger{l: s.l.With().Str("graph", graphKey).Logger()}
}

// WithSeries narrows to one qualified series name.
func (s *ScopedLogger) WithSeries(qname string) *ScopedLogger {
	return &ScopedLogger{l: s.l.With().Str("series", qname).Logger()}
}

// Logger returns the underlying zerolog.Logger for Info()/Error()/etc calls.
func (s *ScopedLogger) Logger() zerolog.Logger {
	return s.l
}

// Helper functions for common logging patterns
func Info(msg string) {
	Logger.Info().Msg(msg)
}

func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

func Warn(msg string) {
	Logger.Warn().Msg(msg)
}

func Error(msg string) {
	Logger.Error().Msg(msg)
}

func Errorf(format string, err error) {
	Logger.Error().Err(err).Msg(format)
}

func Fatal(msg string) {
	Logger.Fatal().Msg(msg)
}
