package qr

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func rgba(c color.Color) [4]uint32 {
	r, g, b, a := c.RGBA()
	return [4]uint32{r, g, b, a}
}

func TestGeneratePNG(t *testing.T) {
	cfg := Default
	cfg.Content = "hello"
	cfg.Background = color.RGBA{R: 10, G: 20, B: 30, A: 255}

	data, err := cfg.Generate()
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
	assert.Equal(t, rgba(cfg.Background), rgba(img.At(2, 2)), "margin keeps the background")
}

func TestGenerateErrors(t *testing.T) {
	cfg := Default
	cfg.Content = ""
	_, err := cfg.Generate()
	assert.ErrorIs(t, err, ErrEmptyContent)

	cfg.Content = "hello"
	cfg.Size = 30
	cfg.Margin = 20
	_, err = cfg.Generate()
	assert.ErrorIs(t, err, ErrInvalidSize)

	cfg.Size = 0
	cfg.Margin = 0
	_, err = cfg.GenerateSVG()
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestLogoHidesModules(t *testing.T) {
	cfg := Default
	cfg.Content = "https://example.com/some/longer/path?with=query"
	cfg.ErrorCorrection = ECHigh
	cfg.Logo = solid(60, 60, color.Transparent)

	img, err := cfg.Image()
	require.NoError(t, err)
	assert.Equal(t, rgba(color.White), rgba(img.At(150, 150)))

	cfg.Logo = solid(60, 60, color.RGBA{R: 255, A: 255})
	img, err = cfg.Image()
	require.NoError(t, err)
	assert.Equal(t, rgba(color.RGBA{R: 255, A: 255}), rgba(img.At(150, 150)))
}

func TestGenerateSVG(t *testing.T) {
	cfg := Default
	cfg.Content = "hello"
	cfg.Foreground = color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}

	data, err := cfg.GenerateSVG()
	require.NoError(t, err)
	svg := string(data)
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.Contains(t, svg, `width="300" height="300"`)
	assert.Contains(t, svg, `fill="#123456"`)
	assert.Contains(t, svg, `fill="#ffffff"`)
	assert.NotContains(t, svg, "<image")

	cfg.Logo = solid(40, 20, color.Black)
	data, err = cfg.GenerateSVG()
	require.NoError(t, err)
	assert.Contains(t, string(data), `<image x="130" y="140" width="40" height="20"`)
}

func TestCornerRadii(t *testing.T) {
	const cell = 10.0
	isolated := neighbours{}
	row := neighbours{left: true, right: true}
	corner := neighbours{right: true, bottom: true}

	tests := []struct {
		name  string
		style DotStyle
		n     neighbours
		want  [4]float64
	}{
		{"square isolated", DotSquare, isolated, [4]float64{}},
		{"dots in a row", DotDots, row, [4]float64{5, 5, 5, 5}},
		{"rounded isolated", DotRounded, isolated, [4]float64{5, 5, 5, 5}},
		{"rounded in a row", DotRounded, row, [4]float64{}},
		{"rounded corner", DotRounded, corner, [4]float64{5, 0, 0, 0}},
		{"extra rounded corner", DotExtraRounded, corner, [4]float64{10, 0, 0, 0}},
		{"extra rounded isolated", DotExtraRounded, isolated, [4]float64{5, 5, 5, 5}},
		{"classy isolated", DotClassy, isolated, [4]float64{5, 0, 5, 0}},
		{"classy rounded isolated", DotClassyRounded, isolated, [4]float64{10, 0, 10, 0}},
		{"unknown style is square", DotStyle("stars"), isolated, [4]float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cornerRadii(tt.style, tt.n, cell))
		})
	}
}

func TestParse(t *testing.T) {
	style, ok := ParseDotStyle("classy-rounded")
	assert.True(t, ok)
	assert.Equal(t, DotClassyRounded, style)
	_, ok = ParseDotStyle("Square")
	assert.False(t, ok)

	ec, ok := ParseErrorCorrection("Q")
	assert.True(t, ok)
	assert.Equal(t, ECQuartile, ec)
	_, ok = ParseErrorCorrection("X")
	assert.False(t, ok)
}

func TestInstanceUpdate(t *testing.T) {
	inst := New(Default, WithContent("first"))
	inst.Update(WithSize(120), WithDotStyle(DotDots))
	inst.Update(WithSize(150))

	cfg := inst.Config()
	assert.Equal(t, "first", cfg.Content)
	assert.Equal(t, 150, cfg.Size)
	assert.Equal(t, DotDots, cfg.DotStyle)

	data, err := inst.Render(ExtPNG)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 150, img.Bounds().Dx())

	_, err = inst.Render(Extension("gif"))
	assert.Error(t, err)
}
