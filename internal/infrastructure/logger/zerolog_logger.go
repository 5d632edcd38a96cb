package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"lac1tool/internal/domain/ports"
)

// ZerologLogger реализует ports.Logger поверх zerolog. Используется CLI.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger создает логгер с человекочитаемым выводом в stderr.
// level - "debug", "info", "warn", "error"; пустое значение означает info.
func NewZerologLogger(level string) (*ZerologLogger, error) {
	return NewZerologLoggerTo(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, level)
}

// NewZerologLoggerTo создает логгер поверх w без форматирования (JSON-строки).
func NewZerologLoggerTo(w io.Writer, level string) (*ZerologLogger, error) {
	lvl := zerolog.InfoLevel
	if level != "" {
		var err error
		lvl, err = zerolog.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("неизвестный уровень журнала %q: %w", level, err)
		}
	}
	return &ZerologLogger{
		log: zerolog.New(w).Level(lvl).With().Timestamp().Logger(),
	}, nil
}

// With возвращает логгер с дополнительным полем во всех записях.
func (l *ZerologLogger) With(key, value string) *ZerologLogger {
	return &ZerologLogger{log: l.log.With().Str(key, value).Logger()}
}

func (l *ZerologLogger) Debug(msg string, args ...interface{}) {
	l.log.Debug().Msgf(msg, args...)
}

func (l *ZerologLogger) Info(msg string, args ...interface{}) {
	l.log.Info().Msgf(msg, args...)
}

func (l *ZerologLogger) Warn(msg string, args ...interface{}) {
	l.log.Warn().Msgf(msg, args...)
}

func (l *ZerologLogger) Error(msg string, args ...interface{}) {
	l.log.Error().Msgf(msg, args...)
}

func (l *ZerologLogger) Fatal(msg string, args ...interface{}) {
	l.log.Fatal().Msgf(msg, args...)
}

// Printf пишет трассировку обмена на уровне trace.
func (l *ZerologLogger) Printf(format string, args ...interface{}) {
	l.log.Trace().Msgf(format, args...)
}

var _ ports.Logger = (*ZerologLogger)(nil)
var _ ports.Logger = (*StdLogger)(nil)
