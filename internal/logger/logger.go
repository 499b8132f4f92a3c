package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Conf struct {
	Out    io.Writer
	Level  string
	Format string // console | json
}

type Logger struct {
	l zerolog.Logger
}

func New(conf Conf) *Logger {
	out := conf.Out
	if out == nil {
		out = os.Stdout
	}

	if !strings.EqualFold(conf.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(conf.Level))
	if err != nil || conf.Level == "" {
		level = zerolog.InfoLevel
	}

	return &Logger{l: zerolog.New(out).Level(level).With().Timestamp().Logger()}
}

// Nop discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{l: zerolog.Nop()}
}

func (l *Logger) With(key string, value any) *Logger {
	return &Logger{l: l.l.With().Interface(key, value).Logger()}
}

// StdLogger adapts the logger for components that only accept *log.Logger.
func (l *Logger) StdLogger() *log.Logger {
	return log.New(l.l.With().Str("component", "stdlib").Logger(), "", 0)
}

func (l *Logger) LogErrorf(format string, v ...any) {
	l.l.Error().Msg(fmt.Sprintf(format, v...))
}

func (l *Logger) LogWarnf(format string, v ...any) {
	l.l.Warn().Msg(fmt.Sprintf(format, v...))
}

func (l *Logger) LogInfo(format string, v ...any) {
	l.l.Info().Msg(fmt.Sprintf(format, v...))
}

func (l *Logger) LogDebugf(format string, v ...any) {
	l.l.Debug().Msg(fmt.Sprintf(format, v...))
}
