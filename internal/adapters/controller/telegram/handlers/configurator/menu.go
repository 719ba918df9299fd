package configurator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Badsnus/qr-styler-bot/internal/domain/common/errorz"
	"github.com/Badsnus/qr-styler-bot/internal/domain/service"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/Badsnus/qr-styler-bot/internal/domain/utils/validator"
	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
	tele "gopkg.in/telebot.v3"
	"gorm.io/gorm"
)

func (h Handler) start(c tele.Context) error {
	h.logger.Infof("(user: %d) open configurator", c.Sender().ID)

	r, err := h.styler.Reset(context.Background(), c.Sender().ID)
	if err != nil {
		return h.fail(c, err)
	}
	return h.showPreview(c, r, true)
}

func (h Handler) menu(c tele.Context) error {
	h.logger.Infof("(user: %d) show preview", c.Sender().ID)

	_, r, err := h.styler.Open(context.Background(), c.Sender().ID)
	if err != nil {
		return h.fail(c, err)
	}
	return h.showPreview(c, r, true)
}

// showPreview puts the rendered code into the preview message, or sends a
// new preview when there is none or fresh is set.
func (h Handler) showPreview(c tele.Context, r *service.Rendered, fresh bool) error {
	p, ok := h.styler.Previews().Get(c.Sender().ID)
	markup := h.menuMarkup(c, r.HasLogo, r.Inputs.Compat)
	photo := func() *tele.Photo {
		return &tele.Photo{File: tele.FromReader(bytes.NewReader(r.PNG)), Caption: h.caption(c, r)}
	}

	if ok && !fresh {
		if msg := c.Callback(); msg != nil && msg.Message != nil && msg.Message.Photo != nil {
			p.SetMessage(msg.Message.Chat.ID, msg.Message.ID)
		}
		if chatID, messageID, stored := p.Message(); stored {
			preview := &tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
			_, err := c.Bot().Edit(preview, photo(), markup)
			if err == nil || notModified(err) {
				return nil
			}
			h.logger.Warnf("(user: %d) failed to edit preview, sending a new one: %v", c.Sender().ID, err)
		}
	}

	msg, err := c.Bot().Send(c.Recipient(), photo(), markup)
	if err != nil {
		return err
	}
	if ok {
		p.SetMessage(msg.Chat.ID, msg.ID)
	}
	return nil
}

// showMarkup swaps the keyboard under the message the button belongs to.
func (h Handler) showMarkup(c tele.Context, markup *tele.ReplyMarkup) error {
	if c.Message() == nil {
		return c.Send(h.layout.Text(c, "technical_issues"))
	}
	_, err := c.Bot().EditReplyMarkup(c.Message(), markup)
	if err != nil && !notModified(err) {
		return err
	}
	return nil
}

func notModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// notice shows a short message: an alert for buttons, a chat message otherwise.
func (h Handler) notice(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}

// fail turns an error into a notice. Unknown errors are logged and reported
// as technical issues.
func (h Handler) fail(c tele.Context, err error) error {
	switch {
	case errors.Is(err, errorz.ErrLogoSuperseded):
		return nil
	case errors.Is(err, errorz.ErrInvalidText):
		return h.notice(c, h.layout.Text(c, "invalid_text", validator.MaxTextBytes))
	case errors.Is(err, errorz.ErrLogoUnreadable):
		return h.notice(c, h.layout.Text(c, "logo_broken"))
	case errors.Is(err, errorz.ErrLogoTooLarge):
		return h.notice(c, h.layout.Text(c, "logo_too_large"))
	case errors.Is(err, errorz.ErrInvalidEmail):
		return h.notice(c, h.layout.Text(c, "invalid_email"))
	case errors.Is(err, errorz.ErrInvalidPresetName):
		return h.notice(c, h.layout.Text(c, "invalid_preset_name", validator.MaxPresetNameLength))
	case errors.Is(err, errorz.ErrPresetExists):
		return h.notice(c, h.layout.Text(c, "preset_exists"))
	case errors.Is(err, errorz.ErrTooManyPresets):
		return h.notice(c, h.layout.Text(c, "too_many_presets"))
	case errors.Is(err, errorz.ErrForbidden), errors.Is(err, gorm.ErrRecordNotFound):
		return h.notice(c, h.layout.Text(c, "preset_missing"))
	case errors.Is(err, errorz.ErrInvalidCallbackData):
		h.logger.Warnf("(user: %d) %v", c.Sender().ID, err)
		return nil
	default:
		h.logger.Errorf("(user: %d) %v", c.Sender().ID, err)
		return h.notice(c, h.layout.Text(c, "technical_issues"))
	}
}

func (h Handler) update(c tele.Context, mutate func(in *styler.Inputs)) error {
	r, err := h.styler.Update(context.Background(), c.Sender().ID, mutate)
	if err != nil {
		return h.fail(c, err)
	}
	return h.showPreview(c, r, false)
}

// apply re-renders the preview from the stored inputs.
func (h Handler) apply(c tele.Context) error {
	h.logger.Infof("(user: %d) apply", c.Sender().ID)
	return h.update(c, func(*styler.Inputs) {})
}

func (h Handler) backToMenu(c tele.Context) error {
	in, hasLogo, err := h.current(c)
	if err != nil {
		return h.fail(c, err)
	}
	return h.showMarkup(c, h.menuMarkup(c, hasLogo, in.Compat))
}

func (h Handler) current(c tele.Context) (styler.Inputs, bool, error) {
	return h.styler.Current(context.Background(), c.Sender().ID)
}

// callbackArgs splits the button payload and checks the number of parts.
func callbackArgs(c tele.Context, n int) ([]string, error) {
	if c.Callback() == nil {
		return nil, errorz.ErrInvalidCallbackData
	}
	args := strings.Split(c.Callback().Data, "|")
	if len(args) != n {
		return nil, fmt.Errorf("%w: %q", errorz.ErrInvalidCallbackData, c.Callback().Data)
	}
	return args, nil
}

func (h Handler) openStyles(c tele.Context) error {
	in, _, err := h.current(c)
	if err != nil {
		return h.fail(c, err)
	}
	_ = c.Respond(&tele.CallbackResponse{Text: h.layout.Text(c, "choose_style")})
	return h.showMarkup(c, h.styleMarkup(c, in))
}

func (h Handler) setStyle(c tele.Context) error {
	args, err := callbackArgs(c, 1)
	if err != nil {
		return h.fail(c, err)
	}
	style, ok := qr.ParseDotStyle(args[0])
	if !ok {
		return h.fail(c, fmt.Errorf("%w: dot style %q", errorz.ErrInvalidCallbackData, args[0]))
	}

	h.logger.Infof("(user: %d) set dot style %s", c.Sender().ID, style)
	return h.update(c, func(in *styler.Inputs) {
		in.DotStyle = string(style)
	})
}

func (h Handler) openErrorCorrection(c tele.Context) error {
	in, _, err := h.current(c)
	if err != nil {
		return h.fail(c, err)
	}
	_ = c.Respond(&tele.CallbackResponse{Text: h.layout.Text(c, "choose_ec")})
	return h.showMarkup(c, h.ecMarkup(c, in))
}

func (h Handler) setErrorCorrection(c tele.Context) error {
	args, err := callbackArgs(c, 1)
	if err != nil {
		return h.fail(c, err)
	}
	ec, ok := qr.ParseErrorCorrection(args[0])
	if !ok {
		return h.fail(c, fmt.Errorf("%w: error correction %q", errorz.ErrInvalidCallbackData, args[0]))
	}

	h.logger.Infof("(user: %d) set error correction %s", c.Sender().ID, ec)
	return h.update(c, func(in *styler.Inputs) {
		in.ECLevel = string(ec)
	})
}

func (h Handler) toggleCompat(c tele.Context) error {
	h.logger.Infof("(user: %d) toggle compatibility mode", c.Sender().ID)
	return h.update(c, func(in *styler.Inputs) {
		in.Compat = !in.Compat
	})
}

func (h Handler) openColors(c tele.Context) error {
	args, err := callbackArgs(c, 1)
	if err != nil {
		return h.fail(c, err)
	}
	in, _, err := h.current(c)
	if err != nil {
		return h.fail(c, err)
	}
	slot, ok := colorSlot(&in, args[0])
	if !ok {
		return h.fail(c, fmt.Errorf("%w: color slot %q", errorz.ErrInvalidCallbackData, args[0]))
	}
	_ = c.Respond(&tele.CallbackResponse{Text: h.layout.Text(c, "choose_color")})
	return h.showMarkup(c, h.colorMarkup(c, args[0], slot.Resolve()))
}

func (h Handler) setColor(c tele.Context) error {
	args, err := callbackArgs(c, 2)
	if err != nil {
		return h.fail(c, err)
	}
	name, value := args[0], args[1]
	if (name != slotDots && name != slotBackground) || !styler.ValidHex(value) {
		return h.fail(c, fmt.Errorf("%w: color %q", errorz.ErrInvalidCallbackData, c.Callback().Data))
	}

	h.logger.Infof("(user: %d) pick %s color %s", c.Sender().ID, name, value)
	return h.update(c, func(in *styler.Inputs) {
		slot, _ := colorSlot(in, name)
		slot.SetPicker(value)
	})
}

func colorSlot(in *styler.Inputs, name string) (*styler.ColorSlot, bool) {
	switch name {
	case slotDots:
		return &in.Dots, true
	case slotBackground:
		return &in.Background, true
	default:
		return nil, false
	}
}

func (h Handler) openSizes(c tele.Context) error {
	in, _, err := h.current(c)
	if err != nil {
		return h.fail(c, err)
	}
	limits := h.styler.Limits()
	_ = c.Respond(&tele.CallbackResponse{Text: h.layout.Text(c, "choose_size")})
	return h.showMarkup(c, h.sizeMarkup(c, limits, limits.Resolve(in.Size)))
}

func (h Handler) setSize(c tele.Context) error {
	args, err := callbackArgs(c, 1)
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Infof("(user: %d) set size %s", c.Sender().ID, args[0])
	return h.update(c, func(in *styler.Inputs) {
		in.Size = args[0]
	})
}
