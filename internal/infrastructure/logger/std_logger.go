package logger

import (
	"io"
	"log"
	"os"

	"lac1tool/internal/domain/ports"
)

// StdLogger реализует интерфейс ports.Logger с использованием стандартной библиотеки log.
// Используется GUI-приложением, где журнал уходит в файл рядом с exe.
type StdLogger struct {
	logger *log.Logger
	debug  bool
}

// NewStdLogger создает новый экземпляр StdLogger с заданным префиксом, пишущий в stderr.
func NewStdLogger(prefix string) ports.Logger {
	return NewStdLoggerTo(os.Stderr, prefix, false)
}

// NewStdLoggerTo создает StdLogger поверх w. При debug=false сообщения Debug отбрасываются.
func NewStdLoggerTo(w io.Writer, prefix string, debug bool) *StdLogger {
	return &StdLogger{
		logger: log.New(w, prefix, log.LstdFlags),
		debug:  debug,
	}
}

// Debug выводит отладочную информацию.
func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.logger.Printf("[DEBUG] "+msg, args...)
}

// Info выводит информационные сообщения.
func (l *StdLogger) Info(msg string, args ...interface{}) {
	l.logger.Printf("[INFO] "+msg, args...)
}

// Warn выводит предупреждения.
func (l *StdLogger) Warn(msg string, args ...interface{}) {
	l.logger.Printf("[WARN] "+msg, args...)
}

// Error выводит ошибки.
func (l *StdLogger) Error(msg string, args ...interface{}) {
	l.logger.Printf("[ERROR] "+msg, args...)
}

// Fatal выводит критические ошибки и завершает программу.
func (l *StdLogger) Fatal(msg string, args ...interface{}) {
	l.logger.Fatalf("[FATAL] "+msg, args...)
}

// Printf форматированный вывод (трассировка обмена).
func (l *StdLogger) Printf(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.logger.Printf(format, args...)
}
