package configurator

import (
	"context"
	"io"
	"strings"

	"github.com/Badsnus/qr-styler-bot/internal/domain/common/errorz"
	tele "gopkg.in/telebot.v3"
)

// logoFile returns the image attached to msg, if any.
func logoFile(msg *tele.Message) *tele.File {
	switch {
	case msg == nil:
		return nil
	case msg.Photo != nil:
		return &msg.Photo.File
	case msg.Document != nil && strings.HasPrefix(msg.Document.MIME, "image/"):
		return &msg.Document.File
	default:
		return nil
	}
}

func (h Handler) validLogo(c tele.Context, msg *tele.Message) (string, bool) {
	if logoFile(msg) == nil {
		return h.layout.Text(c, "not_an_image"), false
	}
	return "", true
}

func (h Handler) askLogo(c tele.Context) error {
	h.logger.Infof("(user: %d) upload logo", c.Sender().ID)

	msg, ok := h.ask(c, h.layout.Text(c, "request_logo"), h.validLogo)
	if !ok {
		return nil
	}
	return h.applyLogo(c, msg)
}

func (h Handler) applyLogo(c tele.Context, msg *tele.Message) error {
	file := logoFile(msg)
	if file == nil {
		return h.notice(c, h.layout.Text(c, "not_an_image"))
	}
	if h.maxLogoBytes > 0 && int64(file.FileSize) > h.maxLogoBytes {
		return h.fail(c, errorz.ErrLogoTooLarge)
	}

	h.logger.Infof("(user: %d) apply logo %s", c.Sender().ID, file.UniqueID)
	r, err := h.styler.SetLogo(context.Background(), c.Sender().ID, func(context.Context) (io.ReadCloser, error) {
		return c.Bot().File(file)
	})
	if err != nil {
		return h.fail(c, err)
	}
	return h.showPreview(c, r, false)
}

func (h Handler) removeLogo(c tele.Context) error {
	h.logger.Infof("(user: %d) remove logo", c.Sender().ID)

	r, err := h.styler.RemoveLogo(context.Background(), c.Sender().ID)
	if err != nil {
		return h.fail(c, err)
	}
	return h.showPreview(c, r, false)
}
