package main

import (
	"log"

	"github.com/Badsnus/qr-styler-bot/cmd/bot"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/config"
	setupBot "github.com/Badsnus/qr-styler-bot/internal/adapters/controller/telegram/setup"

	_ "time/tzdata"
)

func main() {
	cfg := config.Get()
	b, err := bot.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	setupBot.Setup(b)

	b.Start()
}
