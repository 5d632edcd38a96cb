//go:build windows

package view

import (
	"lac1tool/internal/ui/controller"
)

// Run запускает графическое приложение
func Run(mainController *controller.MainController, backupDir string) error {
	mw := NewMainWindowView(mainController, backupDir)

	if err := mw.Create(); err != nil {
		return err
	}

	// Запуск главного цикла сообщений
	mw.Run()
	return nil
}
