package postgres

import (
	"context"

	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
	"gorm.io/gorm"
)

type PresetStorage struct {
	db *gorm.DB
}

func NewPresetStorage(db *gorm.DB) *PresetStorage {
	return &PresetStorage{
		db: db,
	}
}

func (s *PresetStorage) Create(ctx context.Context, preset *entity.Preset) (*entity.Preset, error) {
	err := s.db.WithContext(ctx).Create(preset).Error
	return preset, err
}

func (s *PresetStorage) Get(ctx context.Context, id string) (*entity.Preset, error) {
	var preset entity.Preset
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&preset).Error
	return &preset, err
}

func (s *PresetStorage) GetByUserID(ctx context.Context, userID int64) ([]entity.Preset, error) {
	var presets []entity.Preset
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name").Find(&presets).Error
	return presets, err
}

func (s *PresetStorage) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entity.Preset{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// Delete removes the preset only if it belongs to userID.
func (s *PresetStorage) Delete(ctx context.Context, userID int64, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&entity.Preset{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
