//go:build windows

package main

import (
	"log"
	"os"
	"path/filepath"

	infraDriver "lac1tool/internal/infrastructure/driver"
	"lac1tool/internal/infrastructure/logger"
	"lac1tool/internal/infrastructure/storage"
	"lac1tool/internal/service/connection"
	"lac1tool/internal/service/maintenance"
	"lac1tool/internal/simulator"
	"lac1tool/internal/ui"
	"lac1tool/internal/ui/controller"
	"lac1tool/internal/ui/viewmodel"
)

func main() {
	// Отладка интерфейса без контроллера: все подключения идут в симулятор
	log.Printf("[DEBUG] Запуск с симулятором LAC-1...")

	dir, err := os.MkdirTemp("", "lac1tool-debug")
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	stdLog := logger.NewStdLoggerTo(os.Stderr, "[DEBUG] ", true)
	repo, err := storage.NewFileProfileRepository(filepath.Join(dir, "profiles.json"))
	if err != nil {
		log.Fatalf("profiles: %v", err)
	}

	device := simulator.NewDemo()
	log.Printf("[DEBUG] %s", device)
	dialer := infraDriver.NewSimulatorDialer(device, infraDriver.Options{
		Trace: func(msg string) {
			stdLog.Debug(msg)
		},
	})

	connService := connection.NewConnectionService(dialer, repo, stdLog)
	maintService := maintenance.NewService(connService, maintenance.NewGuard(filepath.Join(dir, "locks")), stdLog)

	vm := viewmodel.NewMainViewModel()
	vm.ConnectionString = "COM1"
	mainCtrl := controller.NewMainController(vm, connService, maintService)

	if err := ui.Run(mainCtrl, dir); err != nil {
		log.Fatalf("GUI error: %v", err)
	}
}
