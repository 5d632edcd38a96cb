//go:build windows

package ui

import (
	"lac1tool/internal/ui/controller"
	"lac1tool/internal/ui/view"
)

// Run запускает графическое приложение с переданным контроллером.
func Run(mainCtrl *controller.MainController, backupDir string) error {
	return view.Run(mainCtrl, backupDir)
}
