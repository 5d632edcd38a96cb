//go:build windows

package main

import (
	"os"
	"path/filepath"
	"strconv"

	"lac1tool/internal/config"
	infraDriver "lac1tool/internal/infrastructure/driver"
	"lac1tool/internal/infrastructure/logger"
	"lac1tool/internal/infrastructure/storage"
	"lac1tool/internal/service/connection"
	"lac1tool/internal/service/maintenance"
	"lac1tool/internal/ui"
	"lac1tool/internal/ui/controller"
	"lac1tool/internal/ui/viewmodel"
)

func main() {
	// 1. Initialize logger (infrastructure)
	log := logger.NewStdLogger("LAC1Tool: ")
	log.Info("Application starting")

	// 2. Load settings
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load settings: %v", err)
	}
	settings, err := config.Decode(cfg)
	if err != nil {
		log.Fatal("Invalid settings: %v", err)
	}

	// 3. Initialize profile repository (infrastructure)
	profilesPath := config.ProfilesPath(cfg)
	if err := os.MkdirAll(filepath.Dir(profilesPath), 0755); err != nil {
		log.Fatal("Failed to create settings directory: %v", err)
	}
	repo, err := storage.NewFileProfileRepository(profilesPath)
	if err != nil {
		log.Fatal("Failed to initialize profile repository: %v", err)
	}

	// 4. Create the dialer
	dialer := infraDriver.NewLAC1Dialer(infraDriver.Options{
		Charset: settings.Charset,
		Timing:  settings.Timing,
		Limits:  settings.Limits,
		Trace: func(msg string) {
			log.Debug(msg)
		},
	})

	// 5. Create services
	connService := connection.NewConnectionService(dialer, repo, log)
	guard := maintenance.NewGuard(config.LocksDir(cfg))
	maintService := maintenance.NewService(connService, guard, log)

	// 6. Create view model and controller
	mainVM := viewmodel.NewMainViewModel()
	if settings.Port != "" {
		mainVM.ConnectionString = settings.Port
	}
	mainVM.BaudRate = strconv.Itoa(settings.BaudRate)
	mainCtrl := controller.NewMainController(mainVM, connService, maintService)

	backupDir := settings.BackupDir
	if backupDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			backupDir = filepath.Join(home, "Documents")
		}
	}

	// 7. Run the GUI application
	log.Info("Initialization complete, starting GUI")
	if err := ui.Run(mainCtrl, backupDir); err != nil {
		log.Fatal("GUI error: %v", err)
	}
}
