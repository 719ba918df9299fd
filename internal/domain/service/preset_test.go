package service

import (
	"context"
	"testing"

	"github.com/Badsnus/qr-styler-bot/internal/domain/common/errorz"
	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memPresets struct {
	items   []*entity.Preset
	queries int
}

func (s *memPresets) Create(_ context.Context, preset *entity.Preset) (*entity.Preset, error) {
	for _, p := range s.items {
		if p.UserID == preset.UserID && p.Name == preset.Name {
			return nil, gorm.ErrDuplicatedKey
		}
	}
	preset.ID = uuid.New().String()
	s.items = append(s.items, preset)
	return preset, nil
}

func (s *memPresets) Get(_ context.Context, id string) (*entity.Preset, error) {
	s.queries++
	for _, p := range s.items {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memPresets) GetByUserID(_ context.Context, userID int64) ([]entity.Preset, error) {
	var out []entity.Preset
	for _, p := range s.items {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memPresets) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	presets, _ := s.GetByUserID(ctx, userID)
	return int64(len(presets)), nil
}

func (s *memPresets) Delete(_ context.Context, userID int64, id string) error {
	s.queries++
	for i, p := range s.items {
		if p.ID == id && p.UserID == userID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func TestPresetService(t *testing.T) {
	ctx := context.Background()
	svc := NewPresetService(&memPresets{}, 2)

	in := styler.DefaultInputs(300)
	in.Text = "brand"
	in.Compat = true
	in.Dots.SetCode("#abc")

	preset, err := svc.Save(ctx, 1, "  Brand  ", in)
	require.NoError(t, err)
	assert.Equal(t, "Brand", preset.Name)
	assert.Equal(t, in, preset.Inputs())

	_, err = svc.Save(ctx, 1, "Brand", in)
	assert.ErrorIs(t, err, errorz.ErrPresetExists)

	_, err = svc.Save(ctx, 1, "", in)
	assert.ErrorIs(t, err, errorz.ErrInvalidPresetName)

	_, err = svc.Save(ctx, 1, "Second", in)
	require.NoError(t, err)
	_, err = svc.Save(ctx, 1, "Third", in)
	assert.ErrorIs(t, err, errorz.ErrTooManyPresets)

	// Names are unique per user only.
	_, err = svc.Save(ctx, 2, "Brand", in)
	require.NoError(t, err)

	list, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.Get(ctx, 2, preset.ID)
	assert.ErrorIs(t, err, errorz.ErrForbidden)
	got, err := svc.Get(ctx, 1, preset.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got.Inputs())

	assert.ErrorIs(t, svc.Delete(ctx, 2, preset.ID), gorm.ErrRecordNotFound)
	require.NoError(t, svc.Delete(ctx, 1, preset.ID))
	_, err = svc.Get(ctx, 1, preset.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPresetServiceRejectsMalformedID(t *testing.T) {
	ctx := context.Background()
	storage := &memPresets{}
	svc := NewPresetService(storage, 0)

	for _, id := range []string{"", "preset-1", "'; drop table presets; --"} {
		_, err := svc.Get(ctx, 1, id)
		assert.ErrorIs(t, err, errorz.ErrInvalidCallbackData, id)
		assert.ErrorIs(t, svc.Delete(ctx, 1, id), errorz.ErrInvalidCallbackData, id)
	}
	assert.Zero(t, storage.queries)

	_, err := svc.Get(ctx, 1, uuid.New().String())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, 1, storage.queries)
}

type memUsers struct {
	users map[int64]*entity.User
}

func (s *memUsers) Upsert(_ context.Context, user *entity.User) (*entity.User, error) {
	if cur, ok := s.users[user.ID]; ok {
		cur.FirstName, cur.Username = user.FirstName, user.Username
		return cur, nil
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *memUsers) Get(_ context.Context, id int64) (*entity.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *memUsers) IncrementExports(_ context.Context, id int64) error {
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Exports++
	return nil
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(&memUsers{users: make(map[int64]*entity.User)})

	_, err := svc.Track(ctx, 10, "Ann", "ann")
	require.NoError(t, err)
	require.NoError(t, svc.RegisterExport(ctx, 10))
	_, err = svc.Track(ctx, 10, "Ann", "ann_new")
	require.NoError(t, err)

	user, err := svc.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "ann_new", user.Username)
	assert.Equal(t, 1, user.Exports)
}
