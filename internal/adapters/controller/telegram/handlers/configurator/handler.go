package configurator

import (
	"context"
	"time"

	"github.com/Badsnus/qr-styler-bot/cmd/bot"
	"github.com/Badsnus/qr-styler-bot/internal/adapters/database/postgres"
	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
	"github.com/Badsnus/qr-styler-bot/internal/domain/service"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	"github.com/Badsnus/qr-styler-bot/pkg/generator"
	"github.com/Badsnus/qr-styler-bot/pkg/logger/types"
	"github.com/Badsnus/qr-styler-bot/pkg/smtp"
	"github.com/nlypage/intele"
	tele "gopkg.in/telebot.v3"
	"gopkg.in/telebot.v3/layout"
)

type presetService interface {
	Save(ctx context.Context, userID int64, name string, in styler.Inputs) (*entity.Preset, error)
	List(ctx context.Context, userID int64) ([]entity.Preset, error)
	Get(ctx context.Context, userID int64, id string) (*entity.Preset, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type userService interface {
	RegisterExport(ctx context.Context, id int64) error
}

type Handler struct {
	layout        *layout.Layout
	logger        *types.Logger
	input         *intele.InputManager
	styler        *service.StylerService
	presetService presetService
	userService   userService

	maxLogoBytes int64
	hrScale      int
	inputTimeout time.Duration
}

func New(b *bot.Bot) *Handler {
	assembler := styler.NewAssembler(styler.SizeLimits{
		Default: b.QR.DefaultSize,
		Min:     b.QR.MinSize,
		Max:     b.QR.MaxSize,
	})

	stylerService := service.NewStylerService(
		assembler,
		b.Redis.Sessions,
		b.Redis.Logos,
		generator.NewExporter(b.QR.ExportDir, b.QR.CleanupDelay),
		smtp.NewClient(b.SMTPDialer),
		b.Logger,
		service.StylerOptions{
			HighResScale: b.QR.HighResScale,
			MaxLogoBytes: b.QR.MaxLogoBytes,
		},
	)

	return &Handler{
		layout:        b.Layout,
		logger:        b.Logger,
		input:         b.Input,
		styler:        stylerService,
		presetService: service.NewPresetService(postgres.NewPresetStorage(b.DB), b.QR.PresetsPerUser),
		userService:   service.NewUserService(postgres.NewUserStorage(b.DB)),
		maxLogoBytes:  b.QR.MaxLogoBytes,
		hrScale:       b.QR.HighResScale,
		inputTimeout:  b.QR.InputTimeout,
	}
}

// Previews exposes the live previews so idle ones can be evicted.
func (h Handler) Previews() *service.Previews {
	return h.styler.Previews()
}

// Setup registers the configurator commands and buttons.
func (h Handler) Setup(group *tele.Group) {
	group.Handle("/start", h.start)
	group.Handle("/menu", h.menu)
	group.Handle("/presets", h.presetsCommand)

	group.Handle(h.layout.Callback("qr:text"), h.askText)
	group.Handle(h.layout.Callback("qr:size"), h.openSizes)
	group.Handle(h.layout.Callback("qr:size:set"), h.setSize)
	group.Handle(h.layout.Callback("qr:size:custom"), h.askSize)
	group.Handle(h.layout.Callback("qr:color:dots"), h.openColors)
	group.Handle(h.layout.Callback("qr:color:set"), h.setColor)
	group.Handle(h.layout.Callback("qr:color:code"), h.askColorCode)
	group.Handle(h.layout.Callback("qr:style"), h.openStyles)
	group.Handle(h.layout.Callback("qr:style:set"), h.setStyle)
	group.Handle(h.layout.Callback("qr:ec"), h.openErrorCorrection)
	group.Handle(h.layout.Callback("qr:ec:set"), h.setErrorCorrection)
	group.Handle(h.layout.Callback("qr:compat"), h.toggleCompat)
	group.Handle(h.layout.Callback("qr:logo"), h.askLogo)
	group.Handle(h.layout.Callback("qr:logo:remove"), h.removeLogo)
	group.Handle(h.layout.Callback("qr:apply"), h.apply)
	group.Handle(h.layout.Callback("qr:back"), h.backToMenu)
	group.Handle(h.layout.Callback("qr:prompt:back"), h.cancelPrompt)

	group.Handle(h.layout.Callback("qr:png"), h.downloadPNG)
	group.Handle(h.layout.Callback("qr:svg"), h.downloadSVG)
	group.Handle(h.layout.Callback("qr:png:hr"), h.downloadHighRes)
	group.Handle(h.layout.Callback("qr:email"), h.askEmail)

	group.Handle(h.layout.Callback("qr:preset:save"), h.askPresetName)
	group.Handle(h.layout.Callback("qr:presets"), h.openPresets)
	group.Handle(h.layout.Callback("qr:preset:load"), h.loadPreset)
	group.Handle(h.layout.Callback("qr:preset:delete"), h.deletePreset)
}

// OnText sets the payload from a plain message sent outside of any prompt.
func (h Handler) OnText(c tele.Context) error {
	return h.setText(c, c.Message())
}

// OnMedia treats a photo or image file sent outside of any prompt as a logo.
func (h Handler) OnMedia(c tele.Context) error {
	return h.applyLogo(c, c.Message())
}
