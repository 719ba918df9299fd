package styler

import (
	"github.com/Badsnus/qr-styler-bot/pkg/logo"
	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
)

const (
	DefaultMargin = 10
	CompatMargin  = 20
	ImageMargin   = 5
)

type DotsOptions struct {
	Color string
	Type  qr.DotStyle
}

type BackgroundOptions struct {
	Color string
}

type ImageOptions struct {
	CrossOrigin string
	Margin      int
}

type QROptions struct {
	ErrorCorrectionLevel qr.ErrorCorrection
}

// RenderConfig is the complete description handed to the renderer.
type RenderConfig struct {
	Data              string
	Width             int
	Height            int
	DotsOptions       DotsOptions
	BackgroundOptions BackgroundOptions
	ImageOptions      ImageOptions
	QROptions         QROptions
	Margin            int
	Image             *logo.Composited
}

type Assembler struct {
	limits SizeLimits
}

func NewAssembler(limits SizeLimits) *Assembler {
	return &Assembler{limits: limits}
}

func (a *Assembler) Limits() SizeLimits {
	return a.limits
}

// Size is the resolved base size shown in the size readout.
func (a *Assembler) Size(in Inputs) int {
	return a.limits.Resolve(in.Size)
}

// Assemble builds the render configuration for the given scale: 1 for the
// live preview, larger for high resolution exports. The logo is left empty,
// it is composited separately for every scale.
func (a *Assembler) Assemble(in Inputs, scale int) RenderConfig {
	if scale <= 0 {
		scale = 1
	}
	size := a.Size(in) * scale

	cfg := RenderConfig{
		Data:   in.Text,
		Width:  size,
		Height: size,
		DotsOptions: DotsOptions{
			Color: in.Dots.Resolve(),
			Type:  qr.DotStyle(in.DotStyle),
		},
		BackgroundOptions: BackgroundOptions{Color: in.Background.Resolve()},
		ImageOptions:      ImageOptions{CrossOrigin: "anonymous", Margin: ImageMargin},
		QROptions:         QROptions{ErrorCorrectionLevel: qr.ErrorCorrection(in.ECLevel)},
		Margin:            DefaultMargin,
	}
	applyCompat(&cfg, in.Compat)
	return cfg
}

// applyCompat forces the most scanner friendly settings. Applying it twice
// changes nothing.
func applyCompat(cfg *RenderConfig, compat bool) {
	if !compat {
		return
	}
	cfg.DotsOptions.Type = qr.DotSquare
	cfg.QROptions.ErrorCorrectionLevel = qr.ECHigh
	cfg.Margin = CompatMargin
}

// Options translates everything but the logo into renderer options.
func (c RenderConfig) Options() ([]qr.Option, error) {
	fg, err := ParseHex(c.DotsOptions.Color)
	if err != nil {
		return nil, err
	}
	bg, err := ParseHex(c.BackgroundOptions.Color)
	if err != nil {
		return nil, err
	}
	return []qr.Option{
		qr.WithContent(c.Data),
		qr.WithSize(c.Width),
		qr.WithMargin(c.Margin),
		qr.WithColors(fg, bg),
		qr.WithDotStyle(c.DotsOptions.Type),
		qr.WithErrorCorrection(c.QROptions.ErrorCorrectionLevel),
	}, nil
}

// LogoOption sets or clears the logo overlay.
func (c RenderConfig) LogoOption() qr.Option {
	if c.Image == nil {
		return qr.WithLogo(nil, c.ImageOptions.Margin)
	}
	return qr.WithLogo(c.Image.Image, c.ImageOptions.Margin)
}
