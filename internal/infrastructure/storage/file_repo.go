package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"lac1tool/internal/domain/models"
	"lac1tool/internal/domain/ports"
)

// FileProfileRepository реализует интерфейс ports.ProfileRepository с использованием JSON-файла для хранения.
type FileProfileRepository struct {
	mu       sync.Mutex
	filePath string
	profiles []*models.ConnectionProfile
}

type profilesFile struct {
	Profiles []*models.ConnectionProfile `json:"profiles"`
}

// NewFileProfileRepository создает новый экземпляр FileProfileRepository с указанным путем к файлу.
func NewFileProfileRepository(filePath string) (ports.ProfileRepository, error) {
	repo := &FileProfileRepository{
		filePath: filePath,
	}

	if err := repo.loadFromFile(); err != nil {
		return nil, fmt.Errorf("ошибка инициализации репозитория: %w", err)
	}

	return repo, nil
}

// LoadProfiles перечитывает файл и возвращает профили, последние использованные первыми.
func (r *FileProfileRepository) LoadProfiles() ([]*models.ConnectionProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.loadFromFile(); err != nil {
		return nil, err
	}

	result := make([]*models.ConnectionProfile, len(r.profiles))
	for i, p := range r.profiles {
		cp := *p
		result[i] = &cp
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].LastUsed.After(result[j].LastUsed)
	})
	return result, nil
}

// UpsertProfile добавляет или обновляет профиль.
func (r *FileProfileRepository) UpsertProfile(profile *models.ConnectionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if profile.Name == "" {
		profile.Name = profile.Address()
	}
	cp := *profile

	found := false
	for i, p := range r.profiles {
		if p.Key() == cp.Key() {
			r.profiles[i] = &cp
			found = true
			break
		}
	}

	if !found {
		r.profiles = append(r.profiles, &cp)
	}

	return r.saveToFile()
}

// DeleteProfile удаляет профиль по ключу.
func (r *FileProfileRepository) DeleteProfile(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.profiles {
		if p.Key() == key {
			r.profiles = append(r.profiles[:i], r.profiles[i+1:]...)
			return r.saveToFile()
		}
	}

	return fmt.Errorf("профиль %s не найден", key)
}

// FindProfile находит профиль по ключу.
func (r *FileProfileRepository) FindProfile(key string) (*models.ConnectionProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.profiles {
		if p.Key() == key {
			cp := *p
			return &cp, nil
		}
	}

	return nil, nil
}

// ClearProfiles очищает все профили.
func (r *FileProfileRepository) ClearProfiles() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profiles = make([]*models.ConnectionProfile, 0)
	return r.saveToFile()
}

// loadFromFile загружает профили из JSON-файла (не потокобезопасно).
func (r *FileProfileRepository) loadFromFile() error {
	data, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			r.profiles = make([]*models.ConnectionProfile, 0)
			return nil
		}
		return fmt.Errorf("ошибка чтения файла профилей: %w", err)
	}

	var pd profilesFile
	if err := json.Unmarshal(data, &pd); err != nil {
		r.profiles = make([]*models.ConnectionProfile, 0)
		return fmt.Errorf("ошибка разбора JSON: %w", err)
	}

	r.profiles = pd.Profiles
	if r.profiles == nil {
		r.profiles = make([]*models.ConnectionProfile, 0)
	}
	return nil
}

// saveToFile сохраняет профили через временный файл и rename (не потокобезопасно).
func (r *FileProfileRepository) saveToFile() error {
	dir := filepath.Dir(r.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}

	jsonData, err := json.MarshalIndent(profilesFile{Profiles: r.profiles}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка записи файла профилей: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи файла профилей: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи файла профилей: %w", err)
	}
	if err := os.Rename(tmpName, r.filePath); err != nil {
		return fmt.Errorf("ошибка записи файла профилей: %w", err)
	}

	return nil
}
