package controller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/service/connection"
	"lac1tool/internal/service/maintenance"
	"lac1tool/internal/ui/viewmodel"
)

// Порт TCP-моста по умолчанию, если в строке подключения указан только хост.
const defaultBridgePort = 4001

// MainController управляет главным окном: выбором порта и запуском
// резервного копирования и восстановления в фоне.
type MainController struct {
	vm          *viewmodel.MainViewModel
	connService *connection.ConnectionService
	maintenance *maintenance.Service

	onUpdate func()
	onDone   func(op models.Operation, res *maintenance.Result, err error)
	// dispatch выполняет f в потоке интерфейса (walk: Synchronize).
	dispatch func(f func())

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewMainController создает новый экземпляр MainController с использованием Dependency Injection.
func NewMainController(vm *viewmodel.MainViewModel, connService *connection.ConnectionService, maint *maintenance.Service) *MainController {
	return &MainController{
		vm:          vm,
		connService: connService,
		maintenance: maint,
		dispatch:    func(f func()) { f() },
	}
}

// Initialize подготавливает начальные данные (вызывать из View при старте)
func (c *MainController) Initialize() {
	c.RefreshConnectionList(false)
}

// ViewModel возвращает ViewModel главного окна.
func (c *MainController) ViewModel() *viewmodel.MainViewModel {
	return c.vm
}

// SetOnUpdate устанавливает callback для обновления пользовательского интерфейса.
func (c *MainController) SetOnUpdate(callback func()) {
	c.onUpdate = callback
}

// SetOnDone устанавливает callback завершения операции (вызывается через dispatch).
func (c *MainController) SetOnDone(callback func(op models.Operation, res *maintenance.Result, err error)) {
	c.onDone = callback
}

// SetDispatcher задаёт способ выполнения кода в потоке интерфейса.
func (c *MainController) SetDispatcher(dispatch func(f func())) {
	c.dispatch = dispatch
}

// RefreshConnectionList обновляет список доступных подключений во ViewModel
func (c *MainController) RefreshConnectionList(all bool) {
	items, err := c.connService.Candidates(all)
	if err != nil {
		c.vm.AppendLog(models.LogEntry{Time: time.Now(), Level: models.LogError, Message: "Port scan failed: " + err.Error()})
	}
	if items == nil {
		items = []string{}
	}
	c.vm.ConnectionList = items

	if c.vm.ConnectionString == "" && len(items) > 0 {
		c.vm.ConnectionString = items[0]
		c.applyProfileBaud(items[0])
	}

	c.vm.UpdateUIState()
	c.notifyUpdate()
}

// SelectConnection вызывается при выборе или вводе строки подключения.
func (c *MainController) SelectConnection(text string) {
	c.vm.ConnectionString = strings.TrimSpace(text)
	c.applyProfileBaud(c.vm.ConnectionString)
	c.vm.UpdateUIState()
	c.notifyUpdate()
}

// applyProfileBaud подставляет скорость из сохранённого профиля.
func (c *MainController) applyProfileBaud(key string) {
	p, err := c.connService.FindProfile(key)
	if err == nil && p != nil && p.BaudRate > 0 {
		c.vm.BaudRate = strconv.Itoa(p.BaudRate)
	}
}

// ClearProfiles удаляет сохранённые профили и обновляет список.
func (c *MainController) ClearProfiles() error {
	if err := c.connService.ClearProfiles(); err != nil {
		return err
	}
	c.RefreshConnectionList(false)
	return nil
}

// DefaultBackupName - имя файла для диалога сохранения.
func (c *MainController) DefaultBackupName() string {
	return maintenance.DefaultBackupName(time.Now())
}

// StartBackup запускает резервное копирование в path в фоне.
func (c *MainController) StartBackup(path string) error {
	return c.start(models.OperationBackup, path)
}

// StartRestore запускает восстановление из path в фоне.
func (c *MainController) StartRestore(path string) error {
	return c.start(models.OperationRestore, path)
}

// Cancel прерывает текущую операцию между командами.
func (c *MainController) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// uiEvent - сообщение из горутины операции в поток интерфейса.
type uiEvent struct {
	progress *float64
	entry    *models.LogEntry
	status   string

	done   bool
	result *maintenance.Result
	err    error
}

// channelSink реализует ports.ProgressSink отправкой событий в канал.
type channelSink struct {
	ch chan<- uiEvent
}

func (s channelSink) Progress(fraction float64) {
	s.ch <- uiEvent{progress: &fraction}
}

func (s channelSink) Log(e models.LogEntry) {
	s.ch <- uiEvent{entry: &e}
}

func (s channelSink) Status(text string) {
	s.ch <- uiEvent{status: text}
}

func (c *MainController) start(op models.Operation, path string) error {
	if c.vm.IsBusy {
		return &models.OperationError{Kind: models.ErrBusy, Op: op, Err: errors.New("уже выполняется другая операция")}
	}
	if strings.TrimSpace(path) == "" {
		return errors.New("не выбран файл")
	}
	profile, err := ParseConnectionString(c.vm.ConnectionString, c.vm.BaudRate)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	c.vm.BeginOperation(op)
	c.notifyUpdate()

	events := make(chan uiEvent, 256)
	sink := channelSink{ch: events}
	go func() {
		defer close(events)
		defer cancel()
		var res *maintenance.Result
		var err error
		switch op {
		case models.OperationBackup:
			res, err = c.maintenance.Backup(ctx, profile, path, sink)
		case models.OperationRestore:
			res, err = c.maintenance.Restore(ctx, profile, path, sink)
		}
		events <- uiEvent{done: true, result: res, err: err}
	}()
	go c.pump(op, events)
	return nil
}

// pump переносит события операции в поток интерфейса.
func (c *MainController) pump(op models.Operation, events <-chan uiEvent) {
	for ev := range events {
		ev := ev
		c.dispatch(func() { c.apply(op, ev) })
	}
}

func (c *MainController) apply(op models.Operation, ev uiEvent) {
	switch {
	case ev.progress != nil:
		c.vm.SetProgress(*ev.progress)
	case ev.entry != nil:
		c.vm.AppendLog(*ev.entry)
	case ev.status != "":
		c.vm.Status = ev.status
	case ev.done:
		c.mu.Lock()
		c.cancel = nil
		c.mu.Unlock()
		c.vm.EndOperation()
		if ev.err == nil {
			c.RefreshConnectionList(false)
		}
		c.notifyUpdate()
		if c.onDone != nil {
			c.onDone(op, ev.result, ev.err)
		}
		return
	}
	c.notifyUpdate()
}

// notifyUpdate вызывает callback для обновления UI, если он установлен.
func (c *MainController) notifyUpdate() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

// ParseConnectionString разбирает строку подключения:
// "COM3", "/dev/ttyUSB0" - последовательный порт со скоростью baud;
// "192.168.1.50:4001" или "tcp://host[:port]" - TCP-мост.
func ParseConnectionString(input, baud string) (models.ConnectionProfile, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.ConnectionProfile{}, errors.New("не выбран порт")
	}

	if rest, ok := strings.CutPrefix(input, "tcp://"); ok {
		return tcpProfile(rest)
	}
	if isSerialName(input) {
		rate := 0
		if baud = strings.TrimSpace(baud); baud != "" {
			v, err := strconv.Atoi(baud)
			if err != nil || v <= 0 {
				return models.ConnectionProfile{}, fmt.Errorf("некорректная скорость порта: %q", baud)
			}
			rate = v
		}
		return models.ConnectionProfile{ConnectionType: models.ConnectionCOM, ComName: input, BaudRate: rate}, nil
	}
	return tcpProfile(input)
}

func isSerialName(s string) bool {
	up := strings.ToUpper(s)
	return strings.HasPrefix(up, "COM") || strings.HasPrefix(s, "/dev/") || strings.HasPrefix(s, `\\.\`) ||
		filepath.IsAbs(s)
}

func tcpProfile(addr string) (models.ConnectionProfile, error) {
	host, portStr, ok := strings.Cut(addr, ":")
	port := defaultBridgePort
	if ok {
		v, err := strconv.Atoi(portStr)
		if err != nil || v <= 0 || v > 65535 {
			return models.ConnectionProfile{}, fmt.Errorf("некорректный TCP-порт: %q", portStr)
		}
		port = v
	}
	if host == "" {
		return models.ConnectionProfile{}, fmt.Errorf("не указан адрес: %q", addr)
	}
	return models.ConnectionProfile{ConnectionType: models.ConnectionTCP, IPAddress: host, TCPPort: port}, nil
}
