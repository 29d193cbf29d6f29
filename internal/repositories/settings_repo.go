package repositories

import (
	"github.com/luiz1612carlos-create/piscina-limpa-bot/internal/models"
	"gorm.io/gorm"
)

type SettingsRepo interface {
	Get() (*models.Settings, error)
	Save(settings *models.Settings) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepo {
	return &settingsRepo{db: db}
}

// Get returns the singleton settings row, creating it with defaults on
// first access.
func (r *settingsRepo) Get() (*models.Settings, error) {
	var settings models.Settings
	err := r.db.Where(models.Settings{ID: 1}).FirstOrCreate(&settings).Error
	return &settings, err
}

func (r *settingsRepo) Save(settings *models.Settings) error {
	settings.ID = 1
	return r.db.Save(settings).Error
}
