package viewmodel

import (
	"strings"

	"lac1tool/internal/domain/models"
)

// MaxLogEntries - сколько строк журнала хранит окно.
const MaxLogEntries = 5000

// MainViewModel отвечает за состояние главного окна: выбор порта, кнопки,
// прогресс, журнал и строку состояния.
type MainViewModel struct {
	// Строка подключения (COMx, /dev/ttyUSB0 или IP:Port)
	ConnectionString string
	// Список доступных подключений (профили + системные порты)
	ConnectionList []string
	// Скорость порта, как введена пользователем
	BaudRate string

	// Идёт операция
	IsBusy    bool
	Operation models.Operation

	// Прогресс 0..100
	Progress int
	Status   string
	Log      []models.LogEntry
	// Сколько строк отброшено из начала журнала
	LogDropped int

	// Доступность элементов управления
	ConnectionEnabled bool
	ScanEnabled       bool
	BackupEnabled     bool
	RestoreEnabled    bool
	CancelEnabled     bool
}

// NewMainViewModel создаёт новый экземпляр MainViewModel с дефолтными значениями.
func NewMainViewModel() *MainViewModel {
	vm := &MainViewModel{
		ConnectionList: []string{},
		BaudRate:       "9600",
		Status:         models.StatusReady,
	}
	vm.UpdateUIState()
	return vm
}

// UpdateUIState пересчитывает доступность элементов управления.
func (vm *MainViewModel) UpdateUIState() {
	idle := !vm.IsBusy
	hasTarget := strings.TrimSpace(vm.ConnectionString) != ""

	vm.ConnectionEnabled = idle
	vm.ScanEnabled = idle
	vm.BackupEnabled = idle && hasTarget
	vm.RestoreEnabled = idle && hasTarget
	vm.CancelEnabled = vm.IsBusy
}

// BeginOperation переводит окно в режим операции.
func (vm *MainViewModel) BeginOperation(op models.Operation) {
	vm.IsBusy = true
	vm.Operation = op
	vm.Progress = 0
	vm.UpdateUIState()
}

// EndOperation возвращает окно в исходный режим. Прогресс сбрасывается.
func (vm *MainViewModel) EndOperation() {
	vm.IsBusy = false
	vm.Operation = ""
	vm.Progress = 0
	vm.UpdateUIState()
}

// SetProgress принимает долю 0..1.
func (vm *MainViewModel) SetProgress(fraction float64) {
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	vm.Progress = int(fraction*100 + 0.5)
}

// AppendLog добавляет строку журнала, удерживая не более MaxLogEntries.
func (vm *MainViewModel) AppendLog(e models.LogEntry) {
	vm.Log = append(vm.Log, e)
	if over := len(vm.Log) - MaxLogEntries; over > 0 {
		vm.Log = append(vm.Log[:0:0], vm.Log[over:]...)
		vm.LogDropped += over
	}
}

// ClearLog очищает журнал.
func (vm *MainViewModel) ClearLog() {
	vm.Log = nil
	vm.LogDropped = 0
}

// LogText - журнал одной строкой для TextEdit.
func (vm *MainViewModel) LogText() string {
	var b strings.Builder
	for _, e := range vm.Log {
		b.WriteString(FormatLogEntry(e))
		b.WriteString("\r\n")
	}
	return b.String()
}

// FormatLogEntry - "15:04:05 >>> TM-1".
func FormatLogEntry(e models.LogEntry) string {
	return e.Time.Format("15:04:05") + " " + e.Message
}
