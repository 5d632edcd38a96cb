package models

import (
	"errors"
	"fmt"
	"time"
)

// Operation - вид сервисной операции над контроллером.
type Operation string

const (
	OperationBackup  Operation = "backup"
	OperationRestore Operation = "restore"
)

// LogLevel - уровень записи журнала операции.
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogTX
	LogRX
	LogError
)

func (l LogLevel) String() string {
	switch l {
	case LogTX:
		return "tx"
	case LogRX:
		return "rx"
	case LogError:
		return "error"
	default:
		return "info"
	}
}

// LogEntry - строка журнала, которую показывает интерфейс.
type LogEntry struct {
	Time    time.Time
	Level   LogLevel
	Message string
}

// Тексты строки состояния.
const (
	StatusReady            = "Ready"
	StatusConnecting       = "Connecting..."
	StatusBackingUp        = "Backing up..."
	StatusRestoring        = "Restoring..."
	StatusBackupCompleted  = "Backup completed."
	StatusRestoreCompleted = "Restore completed."
	StatusError            = "Error"
)

// ErrorKind классифицирует ошибку операции для пользователя.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrConnectionUnavailable
	ErrDeviceNotResponding
	ErrIOFailure
	ErrFileAccess
	ErrBusy
	ErrCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrConnectionUnavailable:
		return "ConnectionUnavailable"
	case ErrDeviceNotResponding:
		return "DeviceNotResponding"
	case ErrIOFailure:
		return "IOFailure"
	case ErrFileAccess:
		return "FileAccess"
	case ErrBusy:
		return "Busy"
	case ErrCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// OperationError - единый результат неудачной операции.
type OperationError struct {
	Kind ErrorKind
	Op   Operation
	Err  error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is сравнивает по Kind с ошибкой, созданной KindError.
func (e *OperationError) Is(target error) bool {
	t, ok := target.(*OperationError)
	return ok && t.Err == nil && t.Kind == e.Kind
}

// KindError - образец для errors.Is(err, models.KindError(models.ErrBusy)).
func KindError(kind ErrorKind) error {
	return &OperationError{Kind: kind}
}

// KindOf возвращает вид ошибки операции.
func KindOf(err error) ErrorKind {
	var e *OperationError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrUnknown
}
