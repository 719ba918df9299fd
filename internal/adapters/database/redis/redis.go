package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/Badsnus/qr-styler-bot/internal/adapters/database/redis/logos"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/database/redis/sessions"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/database/redis/states"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	States   *states.Storage
	Sessions *sessions.Storage
	Logos    *logos.Storage
}

type Options struct {
	Host       string
	Port       string
	Password   string
	SessionTTL time.Duration
	StateTTL   time.Duration
}

func New(opts Options) (*Client, error) {
	stateStorage, err := connect(opts, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to ping state storage: %w", err)
	}

	sessionStorage, err := connect(opts, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to ping session storage: %w", err)
	}

	logoStorage, err := connect(opts, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to ping logo storage: %w", err)
	}

	return &Client{
		States:   states.NewStorage(stateStorage, opts.StateTTL),
		Sessions: sessions.NewStorage(sessionStorage, opts.SessionTTL),
		Logos:    logos.NewStorage(logoStorage, opts.SessionTTL),
	}, nil
}

func connect(opts Options, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return client, nil
}
