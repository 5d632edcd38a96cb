package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"lac1tool/internal/config"
	"lac1tool/internal/domain/models"
	"lac1tool/internal/domain/ports"
	"lac1tool/internal/infrastructure/driver"
	"lac1tool/internal/infrastructure/logger"
	"lac1tool/internal/infrastructure/storage"
	"lac1tool/internal/service/connection"
	"lac1tool/internal/service/maintenance"
	"lac1tool/internal/simulator"
	"lac1tool/pkg/lac1"
)

// env - собранные зависимости одной команды.
type env struct {
	cfg      *viper.Viper
	settings config.Settings
	log      *logger.ZerologLogger
	conn     *connection.ConnectionService
	maint    *maintenance.Service
	// device задан в режиме --simulate
	device *simulator.Device
}

// GetConfig читает файл настроек: --config или путь по умолчанию.
func GetConfig(cmd *cobra.Command) (*viper.Viper, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return nil, err
	}
	settings, err := config.Decode(cfg)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, &settings); err != nil {
		return nil, err
	}

	log, err := logger.NewZerologLogger(settings.LogLevel)
	if err != nil {
		return nil, err
	}

	profilesPath := config.ProfilesPath(cfg)
	if err := os.MkdirAll(filepath.Dir(profilesPath), 0755); err != nil {
		return nil, err
	}
	repo, err := storage.NewFileProfileRepository(profilesPath)
	if err != nil {
		return nil, err
	}

	opts := driver.Options{
		Charset: settings.Charset,
		Timing:  settings.Timing,
		Limits:  settings.Limits,
		Trace: func(msg string) {
			log.Printf("%s", msg)
		},
	}

	e := &env{cfg: cfg, settings: settings, log: log}
	var dialer ports.ControllerDialer
	simulate, err := cmd.Flags().GetBool(flagSimulate)
	if err != nil {
		return nil, err
	}
	if simulate {
		e.device = simulator.NewDemo()
		dialer = driver.NewSimulatorDialer(e.device, opts)
	} else {
		dialer = driver.NewLAC1Dialer(opts)
	}

	e.conn = connection.NewConnectionService(dialer, repo, log)
	e.maint = maintenance.NewService(e.conn, maintenance.NewGuard(config.LocksDir(cfg)), log)
	return e, nil
}

// applyFlags переносит явно заданные флаги поверх настроек.
func applyFlags(cmd *cobra.Command, s *config.Settings) error {
	flags := cmd.Flags()
	if flags.Changed(flagBaud) {
		baud, err := flags.GetInt(flagBaud)
		if err != nil {
			return err
		}
		if baud <= 0 {
			return fmt.Errorf("invalid baud rate: %d", baud)
		}
		s.BaudRate = baud
	}
	if flags.Changed(flagCharset) {
		charset, err := flags.GetString(flagCharset)
		if err != nil {
			return err
		}
		if _, err := lac1.LookupCharset(charset); err != nil {
			return err
		}
		s.Charset = charset
	}
	if flags.Changed(flagLogLevel) {
		level, err := flags.GetString(flagLogLevel)
		if err != nil {
			return err
		}
		s.LogLevel = level
	}
	return nil
}

// resolveProfile выбирает устройство: --tcp, --port, порт из настроек,
// а в терминале - интерактивный выбор.
func (e *env) resolveProfile(cmd *cobra.Command) (models.ConnectionProfile, error) {
	flags := cmd.Flags()
	tcp, err := flags.GetString(flagTCP)
	if err != nil {
		return models.ConnectionProfile{}, err
	}
	port, err := flags.GetString(flagPort)
	if err != nil {
		return models.ConnectionProfile{}, err
	}
	if e.device != nil && tcp == "" && port == "" {
		port = "SIM"
	}
	return resolveProfile(tcp, port, e.settings, func() (string, error) {
		if !isTerminal() {
			return "", fmt.Errorf("no port configured. Use --port, --tcp or 'lac1 set-port'")
		}
		return pickPort(e.conn, false)
	})
}

func resolveProfile(tcp, port string, s config.Settings, pick func() (string, error)) (models.ConnectionProfile, error) {
	if tcp != "" {
		if !strings.Contains(tcp, ":") {
			return models.ConnectionProfile{}, fmt.Errorf("--tcp must be host:port, got %q", tcp)
		}
		return parseTCP(tcp)
	}
	if port == "" {
		port = s.Port
	}
	if port == "" {
		var err error
		if port, err = pick(); err != nil {
			return models.ConnectionProfile{}, err
		}
	}
	// в настройках может храниться и адрес моста
	if strings.HasPrefix(port, "tcp://") {
		return parseTCP(strings.TrimPrefix(port, "tcp://"))
	}
	return models.ConnectionProfile{
		ConnectionType: models.ConnectionCOM,
		ComName:        port,
		BaudRate:       s.BaudRate,
	}, nil
}

func parseTCP(addr string) (models.ConnectionProfile, error) {
	host, portStr, _ := strings.Cut(addr, ":")
	p, err := strconv.Atoi(portStr)
	if host == "" || err != nil || p <= 0 || p > 65535 {
		return models.ConnectionProfile{}, fmt.Errorf("invalid bridge address %q", addr)
	}
	return models.ConnectionProfile{ConnectionType: models.ConnectionTCP, IPAddress: host, TCPPort: p}, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

func pickPort(conn *connection.ConnectionService, all bool) (string, error) {
	list, err := conn.GetSystemPorts(all)
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", fmt.Errorf("no serial ports detected. Is the USB-serial adapter connected?")
	}

	items := make([]string, len(list))
	for i, p := range list {
		items[i] = p.Description()
	}
	prompt := promptui.Select{
		Label:     "Choose the serial port of the LAC-1",
		Items:     items,
		Templates: &promptui.SelectTemplates{},
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("you didn't select anything")
	}
	return list[i].Name, nil
}
