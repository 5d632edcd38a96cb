//go:build windows

package view

import (
	"path/filepath"
	"slices"

	"github.com/lxn/walk"
	d "github.com/lxn/walk/declarative"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/service/maintenance"
	"lac1tool/internal/ui/controller"
	"lac1tool/internal/ui/view/dialogs"
	"lac1tool/internal/ui/view/utils"
	"lac1tool/internal/ui/viewmodel"
)

const fileFilter = "Text Files (*.txt)|*.txt|All Files (*.*)|*.*"

// MainWindowView отвечает за отображение главного окна и передачу действий
// пользователя контроллеру. Состояние хранится во ViewModel.
type MainWindowView struct {
	mw        *walk.MainWindow
	mainCtrl  *controller.MainController
	backupDir string

	addrCombo   *walk.ComboBox
	baudEdit    *walk.LineEdit
	scanBtn     *walk.PushButton
	backupBtn   *walk.PushButton
	restoreBtn  *walk.PushButton
	cancelBtn   *walk.PushButton
	clearBtn    *walk.PushButton
	progressBar *walk.ProgressBar
	logView     *walk.TextEdit
	statusItem  *walk.StatusBarItem

	// сколько строк журнала уже выведено (с учётом отброшенных)
	logShown  int
	listShown []string
	// номер первой строки журнала текущей операции
	opLogStart int
}

// NewMainWindowView создает новый экземпляр MainWindowView.
func NewMainWindowView(mainCtrl *controller.MainController, backupDir string) *MainWindowView {
	return &MainWindowView{mainCtrl: mainCtrl, backupDir: backupDir}
}

// Create создает и инициализирует главное окно приложения.
func (w *MainWindowView) Create() error {
	w.mainCtrl.SetOnUpdate(w.updateUI)
	w.mainCtrl.SetOnDone(w.onOperationDone)

	err := d.MainWindow{
		AssignTo: &w.mw,
		Title:    "SMAC LAC-1 Backup/Restore Tool",
		Size:     d.Size{Width: 640, Height: 520},
		MinSize:  d.Size{Width: 520, Height: 400},
		Layout:   d.VBox{Margins: d.Margins{Left: 6, Top: 6, Right: 6, Bottom: 6}, Spacing: 5},
		Children: []d.Widget{
			// --- Подключение ---
			d.GroupBox{
				Title:  "Подключение",
				Layout: d.HBox{Margins: d.Margins{Left: 5, Top: 5, Right: 5, Bottom: 5}, Spacing: 5},
				Children: []d.Widget{
					d.Label{Text: "Порт:"},
					d.ComboBox{
						AssignTo:              &w.addrCombo,
						Editable:              true,
						MinSize:               d.Size{Width: 200},
						ToolTipText:           "COMx или IP:Port моста. Примеры: COM3, 192.168.1.50:4001",
						OnCurrentIndexChanged: w.syncConnectionString,
						OnTextChanged:         w.syncConnectionString,
					},
					d.Label{Text: "Скорость:"},
					d.LineEdit{
						AssignTo:      &w.baudEdit,
						Text:          w.mainCtrl.ViewModel().BaudRate,
						MaxSize:       d.Size{Width: 70},
						OnTextChanged: w.syncBaud,
					},
					d.PushButton{
						AssignTo:    &w.scanBtn,
						Text:        "Обновить",
						ToolTipText: "Повторно найти COM-порты",
						OnClicked:   func() { w.mainCtrl.RefreshConnectionList(false) },
					},
					d.PushButton{
						AssignTo:    &w.clearBtn,
						Text:        "🗑️",
						MaxSize:     d.Size{Width: 30},
						ToolTipText: "Очистить сохранённые профили",
						OnClicked:   w.onClearProfiles,
					},
				},
			},
			// --- Действия ---
			d.Composite{
				Layout: d.HBox{MarginsZero: true, Spacing: 5},
				Children: []d.Widget{
					d.PushButton{AssignTo: &w.backupBtn, Text: "Backup", MinSize: d.Size{Width: 100}, OnClicked: w.onBackup},
					d.PushButton{AssignTo: &w.restoreBtn, Text: "Restore", MinSize: d.Size{Width: 100}, OnClicked: w.onRestore},
					d.PushButton{AssignTo: &w.cancelBtn, Text: "Отмена", OnClicked: w.mainCtrl.Cancel},
					d.HSpacer{},
				},
			},
			d.ProgressBar{AssignTo: &w.progressBar, MinValue: 0, MaxValue: 100},
			// --- Лог ---
			d.GroupBox{
				Title:  "Лог",
				Layout: d.VBox{MarginsZero: true},
				Children: []d.Widget{
					d.TextEdit{
						AssignTo: &w.logView,
						ReadOnly: true,
						VScroll:  true,
						HScroll:  true,
						Font:     d.Font{Family: "Consolas", PointSize: 9},
					},
				},
			},
		},
		StatusBarItems: []d.StatusBarItem{
			{AssignTo: &w.statusItem, Text: w.mainCtrl.ViewModel().Status, Width: 400},
		},
	}.Create()
	if err != nil {
		return err
	}

	w.mainCtrl.SetDispatcher(w.mw.Synchronize)
	w.mainCtrl.Initialize()

	// закрытие окна прерывает операцию; порт закроет сервис
	w.mw.Closing().Attach(func(canceled *bool, reason walk.CloseReason) {
		w.mainCtrl.Cancel()
	})
	return nil
}

// Run запускает главный цикл обработки сообщений окна.
func (w *MainWindowView) Run() {
	w.mw.Run()
}

// updateUI переносит состояние ViewModel в виджеты.
func (w *MainWindowView) updateUI() {
	w.mw.Synchronize(func() {
		vm := w.mainCtrl.ViewModel()

		// смена модели сбрасывает текст, поэтому восстанавливаем его
		if !slices.Equal(w.listShown, vm.ConnectionList) {
			currentText := w.addrCombo.Text()
			w.addrCombo.SetModel(vm.ConnectionList)
			w.listShown = slices.Clone(vm.ConnectionList)
			if currentText == "" {
				currentText = vm.ConnectionString
			}
			w.addrCombo.SetText(currentText)
		}
		if w.baudEdit.Text() != vm.BaudRate {
			w.baudEdit.SetText(vm.BaudRate)
		}

		w.addrCombo.SetEnabled(vm.ConnectionEnabled)
		w.baudEdit.SetEnabled(vm.ConnectionEnabled)
		w.scanBtn.SetEnabled(vm.ScanEnabled)
		w.clearBtn.SetEnabled(vm.ScanEnabled)
		w.backupBtn.SetEnabled(vm.BackupEnabled)
		w.restoreBtn.SetEnabled(vm.RestoreEnabled)
		w.cancelBtn.SetEnabled(vm.CancelEnabled)

		w.progressBar.SetValue(vm.Progress)
		w.statusItem.SetText(vm.Status)
		w.renderLog()
	})
}

// renderLog дописывает новые строки журнала; если часть строк была
// отброшена, текст выводится заново.
func (w *MainWindowView) renderLog() {
	vm := w.mainCtrl.ViewModel()
	total := vm.LogDropped + len(vm.Log)
	if w.logShown < vm.LogDropped || w.logShown > total {
		w.logView.SetText(vm.LogText())
		w.logShown = total
		return
	}
	for _, e := range vm.Log[w.logShown-vm.LogDropped:] {
		w.logView.AppendText(viewmodel.FormatLogEntry(e) + "\r\n")
	}
	w.logShown = total
}

func (w *MainWindowView) onBackup() {
	w.syncConnectionString()
	dlg := &walk.FileDialog{
		Title:          "Сохранить резервную копию",
		Filter:         fileFilter,
		InitialDirPath: w.backupDir,
		FilePath:       w.mainCtrl.DefaultBackupName(),
	}
	ok, err := dlg.ShowSave(w.mw)
	if err != nil {
		walk.MsgBox(w.mw, "Ошибка", err.Error(), walk.MsgBoxIconError)
		return
	}
	if !ok {
		return
	}
	path := dlg.FilePath
	if filepath.Ext(path) == "" {
		path += ".txt"
	}
	w.markLogStart()
	if err := w.mainCtrl.StartBackup(path); err != nil {
		walk.MsgBox(w.mw, "Ошибка", err.Error(), walk.MsgBoxIconError)
	}
}

func (w *MainWindowView) onRestore() {
	w.syncConnectionString()
	dlg := &walk.FileDialog{
		Title:          "Открыть резервную копию",
		Filter:         fileFilter,
		InitialDirPath: w.backupDir,
	}
	ok, err := dlg.ShowOpen(w.mw)
	if err != nil {
		walk.MsgBox(w.mw, "Ошибка", err.Error(), walk.MsgBoxIconError)
		return
	}
	if !ok {
		return
	}
	if walk.MsgBox(w.mw, "Подтверждение",
		"Макросы и регистры контроллера будут перезаписаны из файла\n"+dlg.FilePath+"\n\nПродолжить?",
		walk.MsgBoxYesNo|walk.MsgBoxIconWarning) != walk.DlgCmdYes {
		return
	}
	w.markLogStart()
	if err := w.mainCtrl.StartRestore(dlg.FilePath); err != nil {
		walk.MsgBox(w.mw, "Ошибка", err.Error(), walk.MsgBoxIconError)
	}
}

func (w *MainWindowView) markLogStart() {
	vm := w.mainCtrl.ViewModel()
	w.opLogStart = vm.LogDropped + len(vm.Log)
}

// onOperationDone вызывается в потоке интерфейса после завершения операции.
func (w *MainWindowView) onOperationDone(op models.Operation, res *maintenance.Result, err error) {
	if models.KindOf(err) == models.ErrCanceled {
		// отмена пользователем видна в журнале
		return
	}

	vm := w.mainCtrl.ViewModel()
	from := w.opLogStart - vm.LogDropped
	if from < 0 {
		from = 0
	}
	report := utils.OperationReport{
		Operation: op,
		Address:   vm.ConnectionString,
		Result:    res,
		Err:       err,
		Status:    vm.Status,
		Log:       vm.Log[from:],
	}

	title := "Готово"
	if err != nil {
		title = "Ошибка"
	}
	dialogs.ShowReportDialog(w.mw, title, w.backupDir, report)
}

// syncConnectionString переносит текст из виджета в ViewModel.
func (w *MainWindowView) syncConnectionString() {
	if w.addrCombo == nil {
		return
	}
	if text := w.addrCombo.Text(); text != w.mainCtrl.ViewModel().ConnectionString {
		w.mainCtrl.SelectConnection(text)
	}
}

func (w *MainWindowView) syncBaud() {
	if w.baudEdit == nil {
		return
	}
	w.mainCtrl.ViewModel().BaudRate = w.baudEdit.Text()
}

func (w *MainWindowView) onClearProfiles() {
	if walk.MsgBox(w.mw, "Подтверждение", "Очистить все профили?", walk.MsgBoxYesNo|walk.MsgBoxIconQuestion) != walk.DlgCmdYes {
		return
	}
	if err := w.mainCtrl.ClearProfiles(); err != nil {
		walk.MsgBox(w.mw, "Ошибка", err.Error(), walk.MsgBoxIconError)
	}
}
