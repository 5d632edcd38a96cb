package connection

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/domain/ports"
)

// ConnectionService отвечает за подключение к LAC-1 и управление профилями
type ConnectionService struct {
	dialer ports.ControllerDialer
	repo   ports.ProfileRepository
	logger ports.Logger

	listDetailed func() ([]*enumerator.PortDetails, error)
	listNames    func() ([]string, error)
	goos         string
	now          func() time.Time
}

// NewConnectionService создает новый экземпляр ConnectionService
func NewConnectionService(dialer ports.ControllerDialer, repo ports.ProfileRepository, logger ports.Logger) *ConnectionService {
	return &ConnectionService{
		dialer:       dialer,
		repo:         repo,
		logger:       logger,
		listDetailed: enumerator.GetDetailedPortsList,
		listNames:    serial.GetPortsList,
		goos:         runtime.GOOS,
		now:          time.Now,
	}
}

// GetSystemPorts возвращает доступные в системе последовательные порты.
// Без all на Linux и macOS остаются только USB-адаптеры.
func (s *ConnectionService) GetSystemPorts(all bool) ([]models.PortInfo, error) {
	var result []models.PortInfo

	details, err := s.listDetailed()
	if err == nil {
		for _, d := range details {
			result = append(result, models.PortInfo{
				Name:         d.Name,
				IsUSB:        d.IsUSB,
				VID:          d.VID,
				PID:          d.PID,
				SerialNumber: d.SerialNumber,
				Product:      d.Product,
			})
		}
	} else {
		s.logger.Debug("детальный список портов недоступен: %v", err)
		names, err := s.listNames()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			result = append(result, models.PortInfo{Name: n})
		}
	}

	if !all {
		keep := make(map[string]struct{})
		names := make([]string, 0, len(result))
		for _, p := range result {
			names = append(names, p.Name)
		}
		for _, n := range FilterPorts(s.goos, names) {
			keep[n] = struct{}{}
		}
		filtered := result[:0]
		for _, p := range result {
			if _, ok := keep[p.Name]; ok || p.IsUSB {
				filtered = append(filtered, p)
			}
		}
		result = filtered
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// PortExists проверяет, что порт присутствует в системе.
func (s *ConnectionService) PortExists(name string) (bool, error) {
	names, err := s.listNames()
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// FilterPorts убирает порты, которые заведомо не USB-адаптеры
// (Bluetooth на macOS, встроенные ttyS на Linux).
func FilterPorts(goos string, paths []string) []string {
	switch goos {
	case "darwin":
		return darwinFilterPaths(paths)
	case "linux":
		return linuxFilterPaths(paths)
	default:
		return paths
	}
}

func darwinFilterPaths(paths []string) []string {
	existing := map[string]struct{}{}
	for _, p := range paths {
		existing[p] = struct{}{}
	}
	var res []string
	for _, path := range paths {
		if strings.Contains(path, "Bluetooth") {
			continue
		}
		if strings.HasPrefix(path, "/dev/cu") {
			res = append(res, path)
		} else if strings.HasPrefix(path, "/dev/tty") {
			candidate := "/dev/cu" + strings.TrimPrefix(path, "/dev/tty")
			if _, exists := existing[candidate]; !exists {
				res = append(res, path)
			}
		}
	}
	return res
}

func linuxFilterPaths(paths []string) []string {
	var res []string
	for _, path := range paths {
		if strings.Contains(path, "ttyUSB") || strings.Contains(path, "ttyACM") {
			res = append(res, path)
		}
	}
	return res
}

// Connect открывает соединение по профилю. После успешного рукопожатия
// профиль сохраняется с отметкой времени.
func (s *ConnectionService) Connect(ctx context.Context, profile models.ConnectionProfile) (ports.Controller, error) {
	s.logger.Info("подключение к %s (%d бод)", profile.Address(), profile.BaudRate)
	ctrl, err := s.dialer.Dial(ctx, profile)
	if err != nil {
		s.logger.Warn("подключение к %s не удалось: %v", profile.Address(), err)
		return nil, err
	}

	profile.LastUsed = s.now()
	if err := s.SaveProfile(&profile); err != nil {
		s.logger.Warn("не удалось сохранить профиль %s: %v", profile.Key(), err)
	}
	return ctrl, nil
}

// LoadProfiles загружает все профили подключения
func (s *ConnectionService) LoadProfiles() ([]*models.ConnectionProfile, error) {
	return s.repo.LoadProfiles()
}

// SaveProfile сохраняет или обновляет профиль подключения
func (s *ConnectionService) SaveProfile(profile *models.ConnectionProfile) error {
	if profile.LastUsed.IsZero() {
		profile.LastUsed = s.now()
	}
	return s.repo.UpsertProfile(profile)
}

// DeleteProfile удаляет профиль по ключу
func (s *ConnectionService) DeleteProfile(key string) error {
	return s.repo.DeleteProfile(key)
}

// FindProfile находит профиль по ключу
func (s *ConnectionService) FindProfile(key string) (*models.ConnectionProfile, error) {
	return s.repo.FindProfile(key)
}

// ClearProfiles удаляет все профили
func (s *ConnectionService) ClearProfiles() error {
	return s.repo.ClearProfiles()
}

// Candidates возвращает адреса для выбора: сначала сохранённые профили
// (последние использованные первыми), затем остальные системные порты.
func (s *ConnectionService) Candidates(all bool) ([]string, error) {
	var res []string
	seen := map[string]struct{}{}

	profiles, err := s.repo.LoadProfiles()
	if err != nil {
		s.logger.Warn("профили недоступны: %v", err)
	}
	for _, p := range profiles {
		addr := p.Address()
		if _, ok := seen[addr]; ok || addr == "" {
			continue
		}
		seen[addr] = struct{}{}
		res = append(res, addr)
	}

	sys, err := s.GetSystemPorts(all)
	if err != nil {
		return res, err
	}
	for _, p := range sys {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		res = append(res, p.Name)
	}
	return res, nil
}
