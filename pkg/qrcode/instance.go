package qr

import (
	"fmt"
	"image"
	"image/color"
	"sync"
)

type Extension string

const (
	ExtPNG Extension = "png"
	ExtSVG Extension = "svg"
)

func (e Extension) MIME() string {
	if e == ExtSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

type Option func(*Config)

func WithContent(content string) Option {
	return func(c *Config) { c.Content = content }
}

func WithSize(size int) Option {
	return func(c *Config) { c.Size = size }
}

func WithMargin(margin int) Option {
	return func(c *Config) { c.Margin = margin }
}

func WithColors(foreground, background color.Color) Option {
	return func(c *Config) {
		c.Foreground = foreground
		c.Background = background
	}
}

func WithDotStyle(style DotStyle) Option {
	return func(c *Config) { c.DotStyle = style }
}

func WithErrorCorrection(ec ErrorCorrection) Option {
	return func(c *Config) { c.ErrorCorrection = ec }
}

// WithLogo sets the centred overlay. A nil logo removes it.
func WithLogo(logo image.Image, margin int) Option {
	return func(c *Config) {
		c.Logo = logo
		c.LogoMargin = margin
	}
}

// Instance is a long-lived renderer whose configuration is replaced piece by
// piece. Every Update is applied atomically, the last one wins.
type Instance struct {
	mu  sync.RWMutex
	cfg Config
}

func New(cfg Config, opts ...Option) *Instance {
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Instance{cfg: cfg}
}

func (i *Instance) Update(opts ...Option) {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, opt := range opts {
		opt(&i.cfg)
	}
}

// Config returns a snapshot of the current configuration.
func (i *Instance) Config() Config {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.cfg
}

// Render draws the current configuration in the requested format.
func (i *Instance) Render(ext Extension) ([]byte, error) {
	cfg := i.Config()
	switch ext {
	case ExtPNG:
		return cfg.Generate()
	case ExtSVG:
		return cfg.GenerateSVG()
	default:
		return nil, fmt.Errorf("unsupported extension %q", ext)
	}
}
