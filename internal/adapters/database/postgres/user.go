package postgres

import (
	"context"

	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserStorage struct {
	db *gorm.DB
}

func NewUserStorage(db *gorm.DB) *UserStorage {
	return &UserStorage{
		db: db,
	}
}

// Upsert creates the user or refreshes the profile fields of an existing one.
func (s *UserStorage) Upsert(ctx context.Context, user *entity.User) (*entity.User, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "username", "updated_at"}),
	}).Create(user).Error
	return user, err
}

func (s *UserStorage) Get(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return &user, err
}

func (s *UserStorage) IncrementExports(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).
		Model(&entity.User{}).
		Where("id = ?", id).
		UpdateColumn("exports", gorm.Expr("exports + ?", 1)).Error
}
