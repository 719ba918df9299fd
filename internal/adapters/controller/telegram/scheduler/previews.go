package scheduler

import (
	"context"
	"time"

	"github.com/Badsnus/qr-styler-bot/cmd/bot"
	"github.com/Badsnus/qr-styler-bot/pkg/logger/types"
)

type previews interface {
	EvictIdle(idle time.Duration) int
}

// PreviewScheduler drops the previews of users who stopped configuring.
// An evicted preview is rebuilt from the stored session on the next update.
type PreviewScheduler struct {
	previews previews
	logger   *types.Logger

	interval time.Duration
	idle     time.Duration
}

func NewPreviewScheduler(b *bot.Bot, previews previews) *PreviewScheduler {
	return &PreviewScheduler{
		previews: previews,
		logger:   b.Logger,
		interval: b.QR.PreviewSweep,
		idle:     b.QR.PreviewIdle,
	}
}

func (s *PreviewScheduler) periodicallyEvictIdle(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictIdle()
		case <-ctx.Done():
			return
		}
	}
}

func (s *PreviewScheduler) evictIdle() int {
	evicted := s.previews.EvictIdle(s.idle)
	if evicted > 0 {
		s.logger.Infof("Evicted %d idle previews", evicted)
	}
	return evicted
}

func (s *PreviewScheduler) Start(ctx context.Context) {
	s.logger.Infof("Starting preview eviction scheduler (every %s, idle %s)", s.interval, s.idle)
	go s.periodicallyEvictIdle(ctx)
}
