package ports

import "lac1tool/internal/domain/models"

// ProfileRepository определяет интерфейс для хранения профилей подключения.
// Профили идентифицируются ключом ConnectionProfile.Key().
type ProfileRepository interface {
	// LoadProfiles загружает все профили, последние использованные первыми
	LoadProfiles() ([]*models.ConnectionProfile, error)

	// UpsertProfile добавляет или обновляет профиль
	UpsertProfile(profile *models.ConnectionProfile) error

	// DeleteProfile удаляет профиль по ключу
	DeleteProfile(key string) error

	// FindProfile находит профиль по ключу; nil, если не найден
	FindProfile(key string) (*models.ConnectionProfile, error)

	// ClearProfiles очищает все профили
	ClearProfiles() error
}
