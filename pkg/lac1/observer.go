package lac1

import (
	"time"
)

// Level - вид записи журнала операции.
type Level int

const (
	LevelInfo Level = iota
	LevelTX
	LevelRX
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelTX:
		return "tx"
	case LevelRX:
		return "rx"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// LogEntry - одна строка журнала операции.
type LogEntry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Observer получает прогресс (0..1) и журнал операции. Вызывается из
// горутины операции.
type Observer interface {
	Progress(fraction float64)
	Log(entry LogEntry)
}

// ObserverFuncs адаптирует пару callback-функций к Observer.
type ObserverFuncs struct {
	OnProgress func(fraction float64)
	OnLog      func(entry LogEntry)
}

func (o ObserverFuncs) Progress(fraction float64) {
	if o.OnProgress != nil {
		o.OnProgress(fraction)
	}
}

func (o ObserverFuncs) Log(entry LogEntry) {
	if o.OnLog != nil {
		o.OnLog(entry)
	}
}

type nopObserver struct{}

func (nopObserver) Progress(float64) {}
func (nopObserver) Log(LogEntry)     {}

func orNop(obs Observer) Observer {
	if obs == nil {
		return nopObserver{}
	}
	return obs
}

func logEntry(level Level, msg string) LogEntry {
	return LogEntry{Time: time.Now(), Level: level, Message: msg}
}
