package ports

import (
	"context"
	"io"

	"lac1tool/internal/domain/models"
)

// ProgressSink получает события операции. Вызывается из горутины операции;
// реализация сама переносит их в поток интерфейса.
type ProgressSink interface {
	Progress(fraction float64)
	Log(entry models.LogEntry)
	Status(text string)
}

// Controller - открытое соединение с LAC-1 после рукопожатия.
type Controller interface {
	Backup(ctx context.Context, w io.Writer, sink ProgressSink) error
	Restore(ctx context.Context, r io.Reader, sink ProgressSink) error
	Close() error
}

// ControllerDialer открывает соединение по профилю.
type ControllerDialer interface {
	Dial(ctx context.Context, profile models.ConnectionProfile) (Controller, error)
}
