package states

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nlypage/intele/storage"
	"github.com/redis/go-redis/v9"
)

var _ storage.StateStorage = (*Storage)(nil)

// Storage keeps prompted-input states. It satisfies the intele
// storage.StateStorage interface.
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

func (s *Storage) Get(userID int64) (string, error) {
	state, err := s.redis.Get(context.Background(), key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return state, nil
}

// Set stores the state for expiration, or for the storage ttl when the
// request has no timeout of its own.
func (s *Storage) Set(userID int64, state string, expiration time.Duration) error {
	if expiration <= 0 {
		expiration = s.ttl
	}
	return s.redis.Set(context.Background(), key(userID), state, expiration).Err()
}

func (s *Storage) Delete(userID int64) {
	s.redis.Del(context.Background(), key(userID))
}

func key(userID int64) string {
	return fmt.Sprintf("%d", userID)
}
