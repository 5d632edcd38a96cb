package lac1

import (
	"context"
	"errors"
)

// Kind классифицирует ошибку протокола.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConnectionUnavailable - порт не удалось открыть
	KindConnectionUnavailable
	// KindDeviceNotResponding - нет приглашения '>' после ESC
	KindDeviceNotResponding
	// KindIOFailure - ошибка чтения/записи в середине операции
	KindIOFailure
	// KindCanceled - операция прервана через context
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindConnectionUnavailable:
		return "connection unavailable"
	case KindDeviceNotResponding:
		return "device not responding"
	case KindIOFailure:
		return "i/o failure"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error - ошибка протокола LAC-1 с указанием вида и операции.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Сентинелы для errors.Is. Сравнение идёт только по Kind.
var (
	ErrConnectionUnavailable = &Error{Kind: KindConnectionUnavailable}
	ErrDeviceNotResponding   = &Error{Kind: KindDeviceNotResponding}
	ErrIOFailure             = &Error{Kind: KindIOFailure}
	ErrCanceled              = &Error{Kind: KindCanceled}
)

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindConnectionUnavailable:
		msg = "порт недоступен"
	case KindDeviceNotResponding:
		msg = "нет ответа от LAC-1 (нет приглашения '>')"
	case KindIOFailure:
		msg = "ошибка обмена с LAC-1"
	case KindCanceled:
		msg = "операция прервана"
	default:
		msg = "ошибка LAC-1"
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is позволяет сравнивать с сентинелами ErrXxx по виду ошибки.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf возвращает вид ошибки протокола или KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// ioError оборачивает ошибку обмена; отмена контекста получает свой вид.
func ioError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return newError(KindCanceled, op, err)
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return newError(KindIOFailure, op, err)
}
