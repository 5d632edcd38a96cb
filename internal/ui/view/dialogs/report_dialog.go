//go:build windows

package dialogs

import (
	"os"
	"time"

	"github.com/lxn/walk"
	d "github.com/lxn/walk/declarative"

	"lac1tool/internal/ui/view/utils"
	"lac1tool/internal/ui/viewmodel"
)

// ShowReportDialog открывает модальное окно с итогом операции и журналом
func ShowReportDialog(owner walk.Form, title, dir string, report utils.OperationReport) {
	var dlg *walk.Dialog
	var copyPB, savePB, closePB *walk.PushButton

	text := utils.FormatKeyValueText(utils.BuildReportLines(report))
	full := text + "\n" + logText(report)

	err := d.Dialog{
		AssignTo:      &dlg,
		Title:         title,
		MinSize:       d.Size{Width: 560, Height: 420},
		Layout:        d.VBox{},
		DefaultButton: &closePB,
		CancelButton:  &closePB,
		Children: []d.Widget{
			d.TextEdit{
				Text:     utils.ToWindowsText(text),
				ReadOnly: true,
				VScroll:  true,
				Font:     d.Font{Family: "Consolas", PointSize: 9},
			},
			d.Composite{
				Layout: d.HBox{Spacing: 6},
				Children: []d.Widget{
					d.HSpacer{},
					d.PushButton{
						AssignTo: &copyPB,
						Text:     "Копировать",
						OnClicked: func() {
							_ = walk.Clipboard().SetText(utils.ToWindowsText(full))
						},
					},
					d.PushButton{
						AssignTo: &savePB,
						Text:     "Сохранить журнал...",
						OnClicked: func() {
							saveReportWithDialog(dlg, dir, report, full)
						},
					},
					d.PushButton{
						AssignTo: &closePB,
						Text:     "Закрыть",
						OnClicked: func() {
							dlg.Accept()
						},
					},
				},
			},
		},
	}.Create(owner)

	if err != nil {
		walk.MsgBox(owner, "Ошибка", err.Error(), walk.MsgBoxIconError)
		return
	}

	dlg.Run()
}

func logText(report utils.OperationReport) string {
	vm := viewmodel.MainViewModel{Log: report.Log}
	return vm.LogText()
}

// saveReportWithDialog открывает системный диалог сохранения файла
func saveReportWithDialog(owner walk.Form, dir string, report utils.OperationReport, text string) {
	dlg := new(walk.FileDialog)
	dlg.FilePath = utils.GenerateReportFileName(report.Operation, time.Now())
	dlg.Filter = "Text Files (*.txt)|*.txt|All Files (*.*)|*.*"
	dlg.Title = "Сохранить журнал"
	dlg.InitialDirPath = dir

	if ok, _ := dlg.ShowSave(owner); ok {
		if err := os.WriteFile(dlg.FilePath, []byte(utils.ToWindowsText(text)), 0644); err != nil {
			walk.MsgBox(owner, "Ошибка", "Не удалось сохранить файл:\n"+err.Error(), walk.MsgBoxIconError)
		} else {
			walk.MsgBox(owner, "Успех", "Файл успешно сохранен.", walk.MsgBoxIconInformation)
		}
	}
}
