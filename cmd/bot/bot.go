package bot

import (
	"sync"

	"github.com/Badsnus/qr-styler-bot/internal/adapters/config"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/database/redis"
	"github.com/Badsnus/qr-styler-bot/internal/domain/service"
	"github.com/Badsnus/qr-styler-bot/pkg/logger"
	"github.com/Badsnus/qr-styler-bot/pkg/logger/types"
	"github.com/nlypage/intele"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
	"gopkg.in/gomail.v2"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
	"gorm.io/gorm"
)

type Bot struct {
	*tele.Bot
	Layout     *layout.Layout
	DB         *gorm.DB
	Redis      *redis.Client
	SMTPDialer *gomail.Dialer
	Logger     *types.Logger
	Input      *intele.InputManager
	QR         config.QR
}

func New(cfg *config.Config) (*Bot, error) {
	botLogger, err := logger.Named("bot")
	if err != nil {
		return nil, err
	}

	lt, err := layout.New("telegram.yml")
	if err != nil {
		return nil, err
	}

	settings := lt.Settings()
	settings.OnError = func(err error, ctx tele.Context) {
		if ctx == nil || ctx.Sender() == nil {
			botLogger.Errorf("Error: %v", err)
			return
		}
		if ctx.Callback() == nil {
			botLogger.Errorf("(user: %d) | Error: %v", ctx.Sender().ID, err)
		} else {
			botLogger.Errorf("(user: %d) | unique: %s | Error: %v", ctx.Sender().ID, ctx.Callback().Unique, err)
		}
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		return nil, err
	}

	if cmds := lt.Commands(); cmds != nil {
		if err = b.SetCommands(cmds); err != nil {
			return nil, err
		}
	}

	qrCfg := config.GetQR()
	bot := &Bot{
		Bot:    b,
		Layout: lt,
		DB:     cfg.Database,
		Redis:  cfg.Redis,
		Input: intele.NewInputManager(intele.InputOptions{
			Storage: cfg.Redis.States,
		}),
		SMTPDialer: cfg.SMTPDialer,
		Logger:     botLogger,
		QR:         qrCfg,
	}

	return bot, nil
}

func (b *Bot) Start() {
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		logger.Log.Info("Bot starting")

		if viper.GetBool("settings.logging.log-to-channel") {
			notifyLogger, err := logger.Named("notify")
			if err != nil {
				logger.Log.Errorf("Failed to create notify logger: %v", err)
			} else {
				notifyService := service.NewNotifyService(b.Bot, notifyLogger)
				logHook, err := notifyService.LogHook(
					viper.GetInt64("settings.logging.channel-id"),
					zapcore.Level(viper.GetInt("settings.logging.channel-log-level")),
				)
				if err != nil {
					logger.Log.Errorf("Failed to create notify log hook: %v", err)
				} else {
					logger.SetLogHook(logHook)
				}
			}
		}
		b.Bot.Start()
	}()

	wg.Wait()
}
