package middlewares

import (
	"context"
	"strings"

	"github.com/Badsnus/qr-styler-bot/cmd/bot"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/database/postgres"
	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
	"github.com/Badsnus/qr-styler-bot/internal/domain/service"
	"github.com/Badsnus/qr-styler-bot/pkg/logger/types"
	tele "gopkg.in/telebot.v3"
)

type userService interface {
	Track(ctx context.Context, id int64, firstName, username string) (*entity.User, error)
}

type inputManager interface {
	Handler() tele.HandlerFunc
	Cancel(userID int64)
}

type stateStorage interface {
	Get(userID int64) (string, error)
}

type Handler struct {
	logger      *types.Logger
	userService userService
	input       inputManager
	states      stateStorage
}

func New(b *bot.Bot) *Handler {
	return &Handler{
		logger:      b.Logger,
		userService: service.NewUserService(postgres.NewUserStorage(b.DB)),
		input:       b.Input,
		states:      b.Redis.States,
	}
}

// TrackUser records the sender. A storage failure is logged and the update
// is still handled.
func (h Handler) TrackUser(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if sender := c.Sender(); sender != nil && !sender.IsBot {
			_, err := h.userService.Track(context.Background(), sender.ID, sender.FirstName, sender.Username)
			if err != nil {
				h.logger.Errorf("(user: %d) error while tracking user: %v", sender.ID, err)
			}
		}
		return next(c)
	}
}

// ResetInputOnBack middleware clears the input state when the back button is pressed.
func (h Handler) ResetInputOnBack(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return next(c)
		}

		if c.Callback() != nil {
			if strings.Contains(c.Callback().Data, "back") || strings.Contains(c.Callback().Unique, "back") {
				h.input.Cancel(c.Sender().ID)
			}
		}
		if c.Message() != nil && c.Callback() == nil {
			if strings.HasPrefix(c.Message().Text, "/") {
				h.input.Cancel(c.Sender().ID)
			}
		}

		return next(c)
	}
}

// RouteInput passes a message to the input manager while a prompt waits for
// the sender, and to fallback otherwise.
func (h Handler) RouteInput(fallback tele.HandlerFunc) tele.HandlerFunc {
	input := h.input.Handler()
	return func(c tele.Context) error {
		if c.Sender() == nil {
			return fallback(c)
		}

		state, err := h.states.Get(c.Sender().ID)
		if err != nil {
			h.logger.Errorf("(user: %d) error while reading input state: %v", c.Sender().ID, err)
			return fallback(c)
		}
		if state != "" {
			return input(c)
		}
		return fallback(c)
	}
}
