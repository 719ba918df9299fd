package configurator

import (
	"bytes"
	"context"
	"fmt"
	"html"

	"github.com/Badsnus/qr-styler-bot/internal/domain/utils"
	"github.com/Badsnus/qr-styler-bot/internal/domain/utils/validator"
	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
	tele "gopkg.in/telebot.v3"
)

func (h Handler) downloadPNG(c tele.Context) error {
	return h.download(c, qr.ExtPNG)
}

func (h Handler) downloadSVG(c tele.Context) error {
	return h.download(c, qr.ExtSVG)
}

func (h Handler) download(c tele.Context, ext qr.Extension) error {
	h.logger.Infof("(user: %d) download %s", c.Sender().ID, ext)

	data, err := h.styler.Render(context.Background(), c.Sender().ID, ext)
	if err != nil {
		return h.fail(c, err)
	}

	err = c.Send(&tele.Document{
		File:     tele.FromReader(bytes.NewReader(data)),
		FileName: fmt.Sprintf("qr-code.%s", ext),
		MIME:     ext.MIME(),
	})
	if err != nil {
		return err
	}
	h.registerExport(c)
	return nil
}

// downloadHighRes uploads the high resolution export straight from its
// temporary file, which is removed after the grace delay.
func (h Handler) downloadHighRes(c tele.Context) error {
	h.logger.Infof("(user: %d) download high resolution png", c.Sender().ID)

	artifact, err := h.styler.ExportHighRes(context.Background(), c.Sender().ID)
	if err != nil {
		return h.fail(c, err)
	}

	err = c.Send(&tele.Document{
		File:     tele.FromDisk(artifact.Path),
		FileName: fmt.Sprintf("qr-code@%dx.png", h.hrScale),
		MIME:     qr.ExtPNG.MIME(),
	})
	if err != nil {
		return err
	}
	h.registerExport(c)
	return nil
}

func (h Handler) validEmail(c tele.Context, msg *tele.Message) (string, bool) {
	if !validator.Email(utils.GetMessageText(msg)) {
		return h.layout.Text(c, "invalid_email"), false
	}
	return "", true
}

func (h Handler) askEmail(c tele.Context) error {
	h.logger.Infof("(user: %d) export by e-mail", c.Sender().ID)

	msg, ok := h.ask(c, h.layout.Text(c, "request_email"), h.validEmail)
	if !ok {
		return nil
	}
	to := utils.GetMessageText(msg)

	if err := h.styler.EmailExport(context.Background(), c.Sender().ID, to); err != nil {
		return h.fail(c, err)
	}
	h.logger.Infof("(user: %d) export mailed", c.Sender().ID)
	h.registerExport(c)
	return c.Send(h.layout.Text(c, "email_sent", html.EscapeString(to)))
}

func (h Handler) registerExport(c tele.Context) {
	if err := h.userService.RegisterExport(context.Background(), c.Sender().ID); err != nil {
		h.logger.Errorf("(user: %d) error while counting export: %v", c.Sender().ID, err)
	}
}
