package service

import (
	"context"

	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
)

type userStorage interface {
	Upsert(ctx context.Context, user *entity.User) (*entity.User, error)
	Get(ctx context.Context, id int64) (*entity.User, error)
	IncrementExports(ctx context.Context, id int64) error
}

type UserService struct {
	storage userStorage
}

func NewUserService(storage userStorage) *UserService {
	return &UserService{
		storage: storage,
	}
}

// Track records the user, refreshing the profile fields on every call.
func (s *UserService) Track(ctx context.Context, id int64, firstName, username string) (*entity.User, error) {
	return s.storage.Upsert(ctx, &entity.User{
		ID:        id,
		FirstName: firstName,
		Username:  username,
	})
}

func (s *UserService) Get(ctx context.Context, id int64) (*entity.User, error) {
	return s.storage.Get(ctx, id)
}

func (s *UserService) RegisterExport(ctx context.Context, id int64) error {
	return s.storage.IncrementExports(ctx, id)
}
