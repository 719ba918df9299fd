package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/redis/go-redis/v9"
)

// Storage keeps the raw configurator inputs of every user.
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

// Get returns false when the user has no stored session.
func (s *Storage) Get(ctx context.Context, userID int64) (styler.Inputs, bool, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf("%d", userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return styler.Inputs{}, false, nil
		}
		return styler.Inputs{}, false, err
	}

	var in styler.Inputs
	if err := json.Unmarshal(data, &in); err != nil {
		return styler.Inputs{}, false, fmt.Errorf("failed to decode session of %d: %w", userID, err)
	}
	return in, true, nil
}

func (s *Storage) Set(ctx context.Context, userID int64, in styler.Inputs) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, fmt.Sprintf("%d", userID), data, s.ttl).Err()
}

func (s *Storage) Clear(ctx context.Context, userID int64) error {
	return s.redis.Del(ctx, fmt.Sprintf("%d", userID)).Err()
}
