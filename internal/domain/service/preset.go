package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Badsnus/qr-styler-bot/internal/domain/common/errorz"
	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/Badsnus/qr-styler-bot/internal/domain/utils/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type presetStorage interface {
	Create(ctx context.Context, preset *entity.Preset) (*entity.Preset, error)
	Get(ctx context.Context, id string) (*entity.Preset, error)
	GetByUserID(ctx context.Context, userID int64) ([]entity.Preset, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type PresetService struct {
	storage presetStorage
	limit   int64
}

// NewPresetService caps the number of presets per user at limit, zero means no cap.
func NewPresetService(storage presetStorage, limit int64) *PresetService {
	return &PresetService{
		storage: storage,
		limit:   limit,
	}
}

func (s *PresetService) Save(ctx context.Context, userID int64, name string, in styler.Inputs) (*entity.Preset, error) {
	if !validator.PresetName(name) {
		return nil, errorz.ErrInvalidPresetName
	}

	if s.limit > 0 {
		count, err := s.storage.CountByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= s.limit {
			return nil, errorz.ErrTooManyPresets
		}
	}

	preset, err := s.storage.Create(ctx, entity.NewPreset(userID, strings.TrimSpace(name), in))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errorz.ErrPresetExists
		}
		return nil, err
	}
	return preset, nil
}

func (s *PresetService) List(ctx context.Context, userID int64) ([]entity.Preset, error) {
	return s.storage.GetByUserID(ctx, userID)
}

// Get returns the preset only to its owner.
func (s *PresetService) Get(ctx context.Context, userID int64, id string) (*entity.Preset, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	preset, err := s.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if preset.UserID != userID {
		return nil, errorz.ErrForbidden
	}
	return preset, nil
}

func (s *PresetService) Delete(ctx context.Context, userID int64, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}
	return s.storage.Delete(ctx, userID, id)
}

// parseID checks a preset id taken from callback data before it reaches
// the uuid column.
func parseID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("%w: preset id %q", errorz.ErrInvalidCallbackData, id)
	}
	return parsed.String(), nil
}
