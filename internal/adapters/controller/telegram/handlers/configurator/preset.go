package configurator

import (
	"context"
	"html"

	"github.com/Badsnus/qr-styler-bot/internal/domain/utils"
	"github.com/Badsnus/qr-styler-bot/internal/domain/utils/validator"
	tele "gopkg.in/telebot.v3"
)

func (h Handler) validPresetName(c tele.Context, msg *tele.Message) (string, bool) {
	if !validator.PresetName(utils.GetMessageText(msg)) {
		return h.layout.Text(c, "invalid_preset_name", validator.MaxPresetNameLength), false
	}
	return "", true
}

func (h Handler) askPresetName(c tele.Context) error {
	h.logger.Infof("(user: %d) save preset", c.Sender().ID)

	msg, ok := h.ask(c, h.layout.Text(c, "request_preset_name", validator.MaxPresetNameLength), h.validPresetName)
	if !ok {
		return nil
	}

	in, _, err := h.current(c)
	if err != nil {
		return h.fail(c, err)
	}
	preset, err := h.presetService.Save(context.Background(), c.Sender().ID, utils.GetMessageText(msg), in)
	if err != nil {
		return h.fail(c, err)
	}

	h.logger.Infof("(user: %d) preset %s saved", c.Sender().ID, preset.ID)
	return c.Send(h.layout.Text(c, "preset_saved", html.EscapeString(preset.Name)))
}

func (h Handler) presetsCommand(c tele.Context) error {
	h.logger.Infof("(user: %d) list presets", c.Sender().ID)

	presets, err := h.presetService.List(context.Background(), c.Sender().ID)
	if err != nil {
		return h.fail(c, err)
	}
	if len(presets) == 0 {
		return c.Send(h.layout.Text(c, "no_presets"))
	}
	return c.Send(h.layout.Text(c, "presets"), h.presetsMarkup(c, presets, false))
}

// openPresets lists the presets in place of the keyboard they were opened from.
func (h Handler) openPresets(c tele.Context) error {
	h.logger.Infof("(user: %d) open presets", c.Sender().ID)

	presets, err := h.presetService.List(context.Background(), c.Sender().ID)
	if err != nil {
		return h.fail(c, err)
	}
	if len(presets) == 0 {
		return h.notice(c, h.layout.Text(c, "no_presets"))
	}
	return h.showMarkup(c, h.presetsMarkup(c, presets, isPreview(c)))
}

func (h Handler) loadPreset(c tele.Context) error {
	args, err := callbackArgs(c, 1)
	if err != nil {
		return h.fail(c, err)
	}

	preset, err := h.presetService.Get(context.Background(), c.Sender().ID, args[0])
	if err != nil {
		return h.fail(c, err)
	}
	h.logger.Infof("(user: %d) load preset %s", c.Sender().ID, preset.ID)

	r, err := h.styler.Replace(context.Background(), c.Sender().ID, preset.Inputs())
	if err != nil {
		return h.fail(c, err)
	}
	return h.showPreview(c, r, false)
}

func (h Handler) deletePreset(c tele.Context) error {
	args, err := callbackArgs(c, 1)
	if err != nil {
		return h.fail(c, err)
	}

	if err := h.presetService.Delete(context.Background(), c.Sender().ID, args[0]); err != nil {
		return h.fail(c, err)
	}
	h.logger.Infof("(user: %d) delete preset %s", c.Sender().ID, args[0])

	presets, err := h.presetService.List(context.Background(), c.Sender().ID)
	if err != nil {
		return h.fail(c, err)
	}
	if len(presets) == 0 && !isPreview(c) {
		return c.Edit(h.layout.Text(c, "no_presets"))
	}
	if len(presets) == 0 {
		return h.backToMenu(c)
	}
	return h.showMarkup(c, h.presetsMarkup(c, presets, isPreview(c)))
}

// isPreview reports whether the pressed button sits under a preview photo.
func isPreview(c tele.Context) bool {
	msg := c.Message()
	return msg != nil && msg.Photo != nil
}
