package driver

import (
	"strings"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/domain/ports"
	"lac1tool/pkg/lac1"
)

// ProfileToConfig преобразует доменный профиль в конфигурацию lac1.
func ProfileToConfig(p models.ConnectionProfile, opts Options) lac1.Config {
	return lac1.Config{
		ConnectionType: int32(p.ConnectionType),
		ComName:        p.ComName,
		BaudRate:       int32(p.BaudRate),
		IPAddress:      p.IPAddress,
		TCPPort:        int32(p.TCPPort),
		Charset:        opts.Charset,
		Timing:         opts.Timing,
		Limits:         opts.Limits,
		Logger:         opts.Trace,
	}
}

// MapError переводит ошибку lac1 в models.OperationError.
func MapError(op models.Operation, err error) error {
	if err == nil {
		return nil
	}
	return &models.OperationError{Kind: mapKind(lac1.KindOf(err)), Op: op, Err: err}
}

func mapKind(k lac1.Kind) models.ErrorKind {
	switch k {
	case lac1.KindConnectionUnavailable:
		return models.ErrConnectionUnavailable
	case lac1.KindDeviceNotResponding:
		return models.ErrDeviceNotResponding
	case lac1.KindIOFailure:
		return models.ErrIOFailure
	case lac1.KindCanceled:
		return models.ErrCanceled
	default:
		return models.ErrUnknown
	}
}

func mapLevel(l lac1.Level) models.LogLevel {
	switch l {
	case lac1.LevelTX:
		return models.LogTX
	case lac1.LevelRX:
		return models.LogRX
	case lac1.LevelError:
		return models.LogError
	default:
		return models.LogInfo
	}
}

// ConvertLogEntry преобразует запись журнала lac1 в доменную.
func ConvertLogEntry(e lac1.LogEntry) models.LogEntry {
	return models.LogEntry{Time: e.Time, Level: mapLevel(e.Level), Message: e.Message}
}

// StatusFromLog выводит строку состояния из информационной записи:
// "Backing up macros (TM-1)..." -> "Backing up macros...".
// Для записей без многоточия возвращает "".
func StatusFromLog(msg string) string {
	if !strings.HasSuffix(msg, "...") {
		return ""
	}
	if i := strings.Index(msg, " ("); i > 0 {
		return msg[:i] + "..."
	}
	return msg
}

// sinkObserver адаптирует ports.ProgressSink к lac1.Observer.
type sinkObserver struct {
	sink ports.ProgressSink
}

func newSinkObserver(sink ports.ProgressSink) lac1.Observer {
	if sink == nil {
		return nil
	}
	return sinkObserver{sink: sink}
}

func (o sinkObserver) Progress(fraction float64) {
	o.sink.Progress(fraction)
}

func (o sinkObserver) Log(e lac1.LogEntry) {
	o.sink.Log(ConvertLogEntry(e))
	if e.Level == lac1.LevelInfo {
		if status := StatusFromLog(e.Message); status != "" {
			o.sink.Status(status)
		}
	}
}
