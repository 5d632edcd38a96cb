package maintenance

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/domain/ports"
)

// BackupTimeLayout - формат отметки времени в имени файла резервной копии.
const BackupTimeLayout = "2006-01-02_15-04-05"

// DefaultBackupName возвращает имя файла резервной копии для момента t.
func DefaultBackupName(t time.Time) string {
	return fmt.Sprintf("lac1_backup_%s.txt", t.Format(BackupTimeLayout))
}

// Connector открывает соединение с контроллером (реализует ConnectionService).
type Connector interface {
	Connect(ctx context.Context, profile models.ConnectionProfile) (ports.Controller, error)
}

// Result - итог успешной операции.
type Result struct {
	OperationID string
	Operation   models.Operation
	Path        string
	Duration    time.Duration
}

// Service выполняет резервное копирование и восстановление LAC-1.
type Service struct {
	conn   Connector
	guard  *Guard
	logger ports.Logger
	now    func() time.Time
}

// NewService создает сервис. guard разделяется всеми потребителями процесса.
func NewService(conn Connector, guard *Guard, logger ports.Logger) *Service {
	return &Service{
		conn:   conn,
		guard:  guard,
		logger: logger,
		now:    time.Now,
	}
}

// Backup снимает резервную копию в path. Файл создаётся заново; после
// ошибки частично записанный файл остаётся на диске.
func (s *Service) Backup(ctx context.Context, profile models.ConnectionProfile, path string, sink ports.ProgressSink) (*Result, error) {
	sink = orNopSink(sink)
	return s.run(ctx, models.OperationBackup, profile, path, sink, func(ctrl ports.Controller) error {
		f, err := os.Create(path)
		if err != nil {
			return &models.OperationError{Kind: models.ErrFileAccess, Op: models.OperationBackup, Err: err}
		}
		defer f.Close()

		w := bufio.NewWriter(f)
		runErr := ctrl.Backup(ctx, w, sink)
		if err := w.Flush(); err != nil && runErr == nil {
			runErr = &models.OperationError{Kind: models.ErrFileAccess, Op: models.OperationBackup, Err: err}
		}
		if err := f.Close(); err != nil && runErr == nil {
			runErr = &models.OperationError{Kind: models.ErrFileAccess, Op: models.OperationBackup, Err: err}
		}
		return runErr
	})
}

// Restore воспроизводит файл path на контроллере. Файл открывается до
// подключения, чтобы не ждать рукопожатия при неверном пути.
func (s *Service) Restore(ctx context.Context, profile models.ConnectionProfile, path string, sink ports.ProgressSink) (*Result, error) {
	sink = orNopSink(sink)
	f, err := os.Open(path)
	if err != nil {
		err = &models.OperationError{Kind: models.ErrFileAccess, Op: models.OperationRestore, Err: err}
		s.fail(sink, err)
		return nil, err
	}
	defer f.Close()

	return s.run(ctx, models.OperationRestore, profile, path, sink, func(ctrl ports.Controller) error {
		return ctrl.Restore(ctx, bufio.NewReader(f), sink)
	})
}

func (s *Service) run(ctx context.Context, op models.Operation, profile models.ConnectionProfile, path string,
	sink ports.ProgressSink, body func(ports.Controller) error) (*Result, error) {

	id := uuid.NewString()
	start := s.now()

	release, err := s.guard.Acquire(op, profile.Key())
	if err != nil {
		s.fail(sink, err)
		return nil, err
	}
	defer release()

	s.logger.Info("[%s] %s: %s -> %s", id, op, profile.Address(), filepath.Base(path))
	sink.Status(models.StatusConnecting)
	sink.Log(s.entry(models.LogInfo, fmt.Sprintf("Connecting to %s...", profile.Address())))

	ctrl, err := s.conn.Connect(ctx, profile)
	if err != nil {
		s.logger.Error("[%s] %v", id, err)
		s.fail(sink, err)
		return nil, err
	}
	defer ctrl.Close()

	if err := body(ctrl); err != nil {
		s.logger.Error("[%s] %v", id, err)
		// ошибки обмена контроллер уже записал в журнал операции
		switch models.KindOf(err) {
		case models.ErrIOFailure, models.ErrCanceled:
			sink.Status(models.StatusError)
		default:
			s.fail(sink, err)
		}
		return nil, err
	}
	if err := ctrl.Close(); err != nil {
		s.logger.Warn("[%s] ошибка закрытия порта: %v", id, err)
	}

	res := &Result{OperationID: id, Operation: op, Path: path, Duration: s.now().Sub(start)}
	switch op {
	case models.OperationBackup:
		sink.Status(models.StatusBackupCompleted)
		sink.Log(s.entry(models.LogInfo, "Backup saved as "+path))
	case models.OperationRestore:
		sink.Status(models.StatusRestoreCompleted)
		sink.Log(s.entry(models.LogInfo, "Restored from "+path))
	}
	s.logger.Info("[%s] %s завершено за %s", id, op, res.Duration.Round(time.Millisecond))
	return res, nil
}

func (s *Service) fail(sink ports.ProgressSink, err error) {
	sink.Log(s.entry(models.LogError, "Error: "+err.Error()))
	sink.Status(models.StatusError)
}

func (s *Service) entry(level models.LogLevel, msg string) models.LogEntry {
	return models.LogEntry{Time: s.now(), Level: level, Message: msg}
}

type nopSink struct{}

func (nopSink) Progress(float64)    {}
func (nopSink) Log(models.LogEntry) {}
func (nopSink) Status(string)       {}

func orNopSink(sink ports.ProgressSink) ports.ProgressSink {
	if sink == nil {
		return nopSink{}
	}
	return sink
}
