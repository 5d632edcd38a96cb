// Package config хранит пользовательские настройки lac1tool в YAML-файле
// (~/.config/lac1tool/config.yaml) и переменных окружения LAC1_*.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"lac1tool/pkg/lac1"
)

const (
	// ConfigPathEnv, если задана, указывает путь к файлу настроек.
	ConfigPathEnv = "LAC1_CONFIG_PATH"
	envPrefix     = "LAC1"

	appDir       = "lac1tool"
	configFile   = "config.yaml"
	profilesFile = "profiles.json"
	locksDir     = "locks"
)

// Ключи настроек.
const (
	KeyPort      = "port"
	KeyBaudRate  = "baud_rate"
	KeyCharset   = "charset"
	KeyLogLevel  = "log_level"
	KeyBackupDir = "backup_dir"
	KeyTiming    = "timing"
	KeyLimits    = "limits"
)

// DefaultBaudRate - скорость LAC-1 по умолчанию.
const DefaultBaudRate = 9600

// Settings - разобранные настройки.
type Settings struct {
	Port      string      `mapstructure:"port" yaml:"port" json:"port"`
	BaudRate  int         `mapstructure:"baud_rate" yaml:"baud_rate" json:"baudRate"`
	Charset   string      `mapstructure:"charset" yaml:"charset" json:"charset"`
	LogLevel  string      `mapstructure:"log_level" yaml:"log_level" json:"logLevel"`
	BackupDir string      `mapstructure:"backup_dir" yaml:"backup_dir" json:"backupDir"`
	Timing    lac1.Timing `mapstructure:"timing" yaml:"timing" json:"timing"`
	Limits    lac1.Limits `mapstructure:"limits" yaml:"limits" json:"limits"`
}

// GetConfigPath возвращает путь к файлу настроек.
func GetConfigPath() (string, error) {
	if path, ok := os.LookupEnv(ConfigPathEnv); ok {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, configFile), nil
}

// ProfilesPath - файл профилей подключения рядом с файлом настроек.
func ProfilesPath(cfg *viper.Viper) string {
	return filepath.Join(filepath.Dir(cfg.ConfigFileUsed()), profilesFile)
}

// LocksDir - каталог файловых блокировок портов, общий для GUI и CLI.
func LocksDir(cfg *viper.Viper) string {
	return filepath.Join(filepath.Dir(cfg.ConfigFileUsed()), locksDir)
}

// Load читает настройки из файла по умолчанию.
func Load() (*viper.Viper, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("не удалось определить путь к настройкам: %w", err)
	}
	return LoadFrom(path)
}

// LoadFrom читает настройки из path. Отсутствующий файл не ошибка.
func LoadFrom(path string) (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetConfigType("yaml")
	cfg.SetConfigFile(path)
	SetDefaults(cfg)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := cfg.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("ошибка чтения настроек: %w", err)
		}
	}
	return cfg, nil
}

// SetDefaults регистрирует значения по умолчанию для всех ключей, чтобы
// переменные окружения работали и для вложенных настроек.
func SetDefaults(cfg *viper.Viper) {
	t := lac1.DefaultTiming()
	l := lac1.DefaultLimits()

	cfg.SetDefault(KeyPort, "")
	cfg.SetDefault(KeyBaudRate, DefaultBaudRate)
	cfg.SetDefault(KeyCharset, "utf-8")
	cfg.SetDefault(KeyLogLevel, "info")
	cfg.SetDefault(KeyBackupDir, "")

	cfg.SetDefault(KeyTiming+".read_timeout", t.ReadTimeout.String())
	cfg.SetDefault(KeyTiming+".settle", t.Settle.String())
	cfg.SetDefault(KeyTiming+".reset_wait", t.ResetWait.String())
	cfg.SetDefault(KeyTiming+".dump_wait", t.DumpWait.String())
	cfg.SetDefault(KeyTiming+".register_pace", t.RegisterPace.String())
	cfg.SetDefault(KeyTiming+".macro_pace", t.MacroPace.String())
	cfg.SetDefault(KeyTiming+".register_write_pace", t.RegisterWritePace.String())

	cfg.SetDefault(KeyLimits+".handshake", l.Handshake)
	cfg.SetDefault(KeyLimits+".macro_dump", l.MacroDump)
	cfg.SetDefault(KeyLimits+".parameter_dump", l.ParameterDump)
	cfg.SetDefault(KeyLimits+".registers", l.Registers)
}

// Decode разбирает настройки в Settings. Длительности задаются строками
// вида "500ms" или "2s".
func Decode(cfg *viper.Viper) (Settings, error) {
	var s Settings
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := cfg.Unmarshal(&s, hook); err != nil {
		return s, fmt.Errorf("ошибка разбора настроек: %w", err)
	}
	if s.BaudRate <= 0 {
		return s, fmt.Errorf("некорректная скорость порта: %d", s.BaudRate)
	}
	if _, err := lac1.LookupCharset(s.Charset); err != nil {
		return s, err
	}
	return s, nil
}

// WriteConfig атомарно записывает настройки: во временный файл, затем rename.
func WriteConfig(cfg *viper.Viper) error {
	file := cfg.ConfigFileUsed()
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmpFile := filepath.Join(dir, ".config.tmp.yaml")
	if err := cfg.WriteConfigAs(tmpFile); err != nil {
		return err
	}
	defer os.Remove(tmpFile)

	return os.Rename(tmpFile, file)
}
