package logos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage keeps the uploaded logo source so it can be recomposited at any size.
type Storage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStorage(client *redis.Client, ttl time.Duration) *Storage {
	return &Storage{
		redis: client,
		ttl:   ttl,
	}
}

// Get returns nil data when no logo is stored.
func (s *Storage) Get(ctx context.Context, userID int64) ([]byte, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf("%d", userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) Set(ctx context.Context, userID int64, data []byte) error {
	return s.redis.Set(ctx, fmt.Sprintf("%d", userID), data, s.ttl).Err()
}

func (s *Storage) Clear(ctx context.Context, userID int64) error {
	return s.redis.Del(ctx, fmt.Sprintf("%d", userID)).Err()
}
