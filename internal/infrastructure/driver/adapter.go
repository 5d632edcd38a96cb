package driver

import (
	"context"
	"io"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/domain/ports"
	"lac1tool/internal/simulator"
	"lac1tool/pkg/lac1"
)

// Options - параметры протокола, общие для всех подключений.
type Options struct {
	Charset string
	Timing  lac1.Timing
	Limits  lac1.Limits
	// Trace получает сырой обмен (>> TX / << RX). Может быть nil.
	Trace func(msg string)
}

// LAC1Dialer открывает реальные соединения (COM или TCP-мост).
type LAC1Dialer struct {
	opts Options
}

// NewLAC1Dialer создает новый экземпляр LAC1Dialer.
func NewLAC1Dialer(opts Options) ports.ControllerDialer {
	return &LAC1Dialer{opts: opts}
}

// Dial открывает порт по профилю и выполняет рукопожатие.
func (d *LAC1Dialer) Dial(ctx context.Context, p models.ConnectionProfile) (ports.Controller, error) {
	conn, err := lac1.Open(ctx, ProfileToConfig(p, d.opts))
	if err != nil {
		return nil, MapError("", err)
	}
	return &controllerAdapter{conn: conn}, nil
}

// SimulatorDialer подключается к программной модели LAC-1.
type SimulatorDialer struct {
	opts   Options
	device *simulator.Device
}

// NewSimulatorDialer создает диалер поверх device. Паузы протокола
// обнуляются, таймаут чтения сохраняется.
func NewSimulatorDialer(device *simulator.Device, opts Options) *SimulatorDialer {
	opts.Timing = lac1.Timing{ReadTimeout: opts.Timing.ReadTimeout}
	return &SimulatorDialer{opts: opts, device: device}
}

// Device возвращает модель, к которой подключается диалер.
func (d *SimulatorDialer) Device() *simulator.Device {
	return d.device
}

func (d *SimulatorDialer) Dial(ctx context.Context, p models.ConnectionProfile) (ports.Controller, error) {
	d.device.Reopen()
	conn, err := lac1.Handshake(ctx, d.device, ProfileToConfig(p, d.opts))
	if err != nil {
		return nil, MapError("", err)
	}
	return &controllerAdapter{conn: conn}, nil
}

// controllerAdapter адаптирует lac1.Conn к интерфейсу ports.Controller.
type controllerAdapter struct {
	conn *lac1.Conn
}

func (a *controllerAdapter) Backup(ctx context.Context, w io.Writer, sink ports.ProgressSink) error {
	if err := a.conn.Backup(ctx, w, newSinkObserver(sink)); err != nil {
		return MapError(models.OperationBackup, err)
	}
	return nil
}

func (a *controllerAdapter) Restore(ctx context.Context, r io.Reader, sink ports.ProgressSink) error {
	if err := a.conn.Restore(ctx, r, newSinkObserver(sink)); err != nil {
		return MapError(models.OperationRestore, err)
	}
	return nil
}

func (a *controllerAdapter) Close() error {
	return a.conn.Close()
}
