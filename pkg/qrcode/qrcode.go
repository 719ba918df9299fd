package qr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
)

var (
	ErrEmptyContent = errors.New("qr content is empty")
	ErrInvalidSize  = errors.New("qr size leaves no room for modules")
)

// Config describes a single styled QR rendering. Size is the side of the
// square output in pixels, Margin the quiet zone on every side.
type Config struct {
	Content         string
	Size            int
	Margin          int
	Foreground      color.Color
	Background      color.Color
	DotStyle        DotStyle
	ErrorCorrection ErrorCorrection
	Logo            image.Image
	LogoMargin      int // extra room cleared around the logo
}

// Generate renders the QR code and returns it as PNG bytes
func (c *Config) Generate() ([]byte, error) {
	img, err := c.Image()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Image renders the QR code onto an in-memory raster.
func (c *Config) Image() (image.Image, error) {
	g, err := c.grid()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(c.Size, c.Size)
	dc.SetColor(c.background())
	dc.Clear()

	for y := 0; y < g.n; y++ {
		for x := 0; x < g.n; x++ {
			if !g.dark(x, y) {
				continue
			}
			px, py := g.origin(x, y)
			cellPath(dc, px, py, g.cell, g.radii(c.DotStyle, x, y))
		}
	}
	dc.SetColor(c.foreground())
	dc.Fill()

	if c.Logo != nil {
		b := c.Logo.Bounds()
		dc.DrawImage(c.Logo, (c.Size-b.Dx())/2, (c.Size-b.Dy())/2)
	}

	return dc.Image(), nil
}

// cellPath appends one module to the current path. r holds the corner
// radii in top-left, top-right, bottom-right, bottom-left order.
func cellPath(dc *gg.Context, x, y, s float64, r [4]float64) {
	tl, tr, br, bl := r[0], r[1], r[2], r[3]
	dc.NewSubPath()
	dc.MoveTo(x+tl, y)
	dc.LineTo(x+s-tr, y)
	if tr > 0 {
		dc.DrawArc(x+s-tr, y+tr, tr, -math.Pi/2, 0)
	}
	dc.LineTo(x+s, y+s-br)
	if br > 0 {
		dc.DrawArc(x+s-br, y+s-br, br, 0, math.Pi/2)
	}
	dc.LineTo(x+bl, y+s)
	if bl > 0 {
		dc.DrawArc(x+bl, y+s-bl, bl, math.Pi/2, math.Pi)
	}
	dc.LineTo(x, y+tl)
	if tl > 0 {
		dc.DrawArc(x+tl, y+tl, tl, math.Pi, 3*math.Pi/2)
	}
	dc.ClosePath()
}

func (c *Config) foreground() color.Color {
	if c.Foreground == nil {
		return color.Black
	}
	return c.Foreground
}

func (c *Config) background() color.Color {
	if c.Background == nil {
		return color.White
	}
	return c.Background
}

// grid holds the module matrix together with its placement on the canvas.
type grid struct {
	bitmap [][]bool
	n      int
	margin float64
	cell   float64
	hidden image.Rectangle
}

func (c *Config) grid() (*grid, error) {
	if c.Content == "" {
		return nil, ErrEmptyContent
	}
	margin := c.Margin
	if margin < 0 {
		margin = 0
	}
	inner := c.Size - 2*margin
	if c.Size <= 0 || inner <= 0 {
		return nil, ErrInvalidSize
	}

	q, err := qrcode.New(c.Content, c.ErrorCorrection.RecoveryLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr content: %w", err)
	}
	q.DisableBorder = true
	bitmap := q.Bitmap()
	n := len(bitmap)
	if float64(inner)/float64(n) < 1 {
		return nil, ErrInvalidSize
	}

	g := &grid{
		bitmap: bitmap,
		n:      n,
		margin: float64(margin),
		cell:   float64(inner) / float64(n),
	}
	if c.Logo != nil {
		b := c.Logo.Bounds()
		lx := (c.Size - b.Dx()) / 2
		ly := (c.Size - b.Dy()) / 2
		g.hidden = image.Rect(lx, ly, lx+b.Dx(), ly+b.Dy()).Inset(-c.LogoMargin)
	}
	return g, nil
}

func (g *grid) origin(x, y int) (float64, float64) {
	return g.margin + float64(x)*g.cell, g.margin + float64(y)*g.cell
}

// dark reports whether the module is drawn. Modules covered by the logo
// area count as light.
func (g *grid) dark(x, y int) bool {
	if x < 0 || y < 0 || x >= g.n || y >= g.n || !g.bitmap[y][x] {
		return false
	}
	if g.hidden.Empty() {
		return true
	}
	px, py := g.origin(x, y)
	cell := image.Rect(int(px), int(py), int(math.Ceil(px+g.cell)), int(math.Ceil(py+g.cell)))
	return !cell.Overlaps(g.hidden)
}

func (g *grid) radii(style DotStyle, x, y int) [4]float64 {
	return cornerRadii(style, neighbours{
		top:    g.dark(x, y-1),
		right:  g.dark(x+1, y),
		bottom: g.dark(x, y+1),
		left:   g.dark(x-1, y),
	}, g.cell)
}
