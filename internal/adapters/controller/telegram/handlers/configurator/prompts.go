package configurator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Badsnus/qr-styler-bot/internal/domain/common/errorz"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/Badsnus/qr-styler-bot/internal/domain/utils"
	"github.com/Badsnus/qr-styler-bot/internal/domain/utils/validator"
	"github.com/nlypage/intele"
	"github.com/nlypage/intele/collector"
	tele "gopkg.in/telebot.v3"
)

// ask sends request and waits until the user answers with a message valid
// accepts. valid returns the text to reply with when it rejects a message.
// The dialog messages are removed afterwards. ok is false when the user
// canceled or the wait ended.
func (h Handler) ask(c tele.Context, request string, valid func(c tele.Context, msg *tele.Message) (string, bool)) (answer *tele.Message, ok bool) {
	inputCollector := collector.New()
	if err := inputCollector.Send(c, request, h.cancelMarkup(c)); err != nil {
		h.logger.Errorf("(user: %d) error while sending request: %v", c.Sender().ID, err)
		return nil, false
	}

	for {
		message, canceled, err := h.input.Get(context.Background(), c.Sender().ID, h.inputTimeout)
		if message != nil {
			inputCollector.Collect(message)
		}
		switch {
		case canceled:
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
			return nil, false
		case errors.Is(err, intele.ErrTimeout):
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
			_ = c.Send(h.layout.Text(c, "input_timeout"))
			return nil, false
		case err != nil:
			h.logger.Errorf("(user: %d) error while waiting for input: %v", c.Sender().ID, err)
			_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
			_ = c.Send(h.layout.Text(c, "technical_issues"))
			return nil, false
		}

		if problem, accepted := valid(c, message); !accepted {
			_ = inputCollector.Send(c, problem, h.cancelMarkup(c))
			continue
		}
		_ = inputCollector.Clear(c, collector.ClearOptions{IgnoreErrors: true})
		return message, true
	}
}

func (h Handler) validText(c tele.Context, msg *tele.Message) (string, bool) {
	if !validator.QRText(utils.GetMessageText(msg)) {
		return h.layout.Text(c, "invalid_text", validator.MaxTextBytes), false
	}
	return "", true
}

func (h Handler) anyText(c tele.Context, msg *tele.Message) (string, bool) {
	if utils.GetMessageText(msg) == "" {
		return h.layout.Text(c, "request_text"), false
	}
	return "", true
}

func (h Handler) askText(c tele.Context) error {
	h.logger.Infof("(user: %d) edit text", c.Sender().ID)

	msg, ok := h.ask(c, h.layout.Text(c, "request_text"), h.validText)
	if !ok {
		return nil
	}
	return h.setText(c, msg)
}

func (h Handler) setText(c tele.Context, msg *tele.Message) error {
	text := utils.GetMessageText(msg)
	if _, ok := h.validText(c, msg); !ok {
		return h.notice(c, h.layout.Text(c, "invalid_text", validator.MaxTextBytes))
	}

	h.logger.Infof("(user: %d) set text", c.Sender().ID)
	return h.update(c, func(in *styler.Inputs) {
		in.Text = text
	})
}

// askSize accepts any answer. Values that are not numbers fall back to the
// default size and the rest is clamped, the caption shows the outcome.
func (h Handler) askSize(c tele.Context) error {
	h.logger.Infof("(user: %d) enter custom size", c.Sender().ID)

	limits := h.styler.Limits()
	msg, ok := h.ask(c, h.layout.Text(c, "request_size", limits), h.anyText)
	if !ok {
		return nil
	}
	size := strings.TrimSpace(utils.GetMessageText(msg))
	return h.update(c, func(in *styler.Inputs) {
		in.Size = size
	})
}

// askColorCode stores the typed code as is. An invalid code is kept in the
// code field only and the picker color stays in effect.
func (h Handler) askColorCode(c tele.Context) error {
	args, err := callbackArgs(c, 1)
	if err != nil {
		return h.fail(c, err)
	}
	name := args[0]
	if name != slotDots && name != slotBackground {
		return h.fail(c, fmt.Errorf("%w: color slot %q", errorz.ErrInvalidCallbackData, name))
	}

	h.logger.Infof("(user: %d) enter %s color code", c.Sender().ID, name)
	msg, ok := h.ask(c, h.layout.Text(c, "request_code"), h.anyText)
	if !ok {
		return nil
	}
	code := strings.TrimSpace(utils.GetMessageText(msg))
	return h.update(c, func(in *styler.Inputs) {
		slot, _ := colorSlot(in, name)
		slot.SetCode(code)
	})
}

func (h Handler) cancelPrompt(c tele.Context) error {
	h.logger.Infof("(user: %d) cancel input", c.Sender().ID)
	h.input.Cancel(c.Sender().ID)
	return nil
}
