package repository

import (
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"gorm.io/gorm"
)

// SettingsRepository stores the single site settings row.
type SettingsRepository interface {
	Get() (*model.SiteSettings, error)
	Save(settings *model.SiteSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns gorm.ErrRecordNotFound until settings are first saved.
func (r *settingsRepository) Get() (*model.SiteSettings, error) {
	var settings model.SiteSettings
	if err := r.db.First(&settings, model.SettingsID).Error; err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Save(settings *model.SiteSettings) error {
	settings.ID = model.SettingsID

	logger.Debug("Saving site settings in database", map[string]interface{}{
		"business_name": settings.Business.Name,
	})

	if err := r.db.Save(settings).Error; err != nil {
		logger.Error("Failed to save site settings", err)
		return err
	}
	return nil
}
