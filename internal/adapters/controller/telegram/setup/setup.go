package setup

import (
	"context"

	"github.com/Badsnus/qr-styler-bot/cmd/bot"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/controller/telegram/handlers/configurator"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/controller/telegram/handlers/middlewares"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/controller/telegram/scheduler"
	"github.com/spf13/viper"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/middleware"
)

func Setup(b *bot.Bot) {
	// Pre-setup and global middlewares
	middle := middlewares.New(b)
	stylerHandler := configurator.New(b)

	if viper.GetBool("settings.debug") {
		b.Use(middleware.Logger())
	}
	b.Use(middleware.AutoRespond())
	b.Use(b.Layout.Middleware("en"))
	b.Use(middle.TrackUser)
	b.Use(middle.ResetInputOnBack)

	// Answers to prompts are consumed by the input manager first
	b.Handle(tele.OnText, middle.RouteInput(stylerHandler.OnText))
	b.Handle(tele.OnMedia, middle.RouteInput(stylerHandler.OnMedia))

	// Setup handlers
	stylerHandler.Setup(b.Group())

	scheduler.NewPreviewScheduler(b, stylerHandler.Previews()).Start(context.Background())
}
