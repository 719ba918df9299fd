package service

import (
	"strings"

	"github.com/Badsnus/qr-styler-bot/pkg/logger/types"
	"go.uber.org/zap/zapcore"
	tele "gopkg.in/telebot.v3"
)

type NotifyService struct {
	bot    *tele.Bot
	logger *types.Logger
}

func NewNotifyService(bot *tele.Bot, logger *types.Logger) *NotifyService {
	return &NotifyService{
		bot:    bot,
		logger: logger,
	}
}

// LogHook returns a log hook for the specified channel
//
// Parameters:
//   - channelID is the channel to send the log to
//   - level is the minimum log level to send
func (s *NotifyService) LogHook(channelID int64, level zapcore.Level) (types.LogHook, error) {
	chat, err := s.bot.ChatByID(channelID)
	if err != nil {
		return nil, err
	}
	return func(log types.Log) {
		if log.Level < level {
			return
		}
		_, err := s.bot.Send(chat, log.String())
		if err != nil && !strings.Contains(log.Message, "failed to send log to channel") {
			s.logger.Errorf("failed to send log to channel %d: %v", channelID, err)
		}
	}, nil
}
