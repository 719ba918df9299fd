package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"image/png"
	"strconv"
	"strings"
)

// GenerateSVG renders the QR code as a standalone SVG document. Modules are
// written as a single path, the logo is embedded as a PNG data URI.
func (c *Config) GenerateSVG() ([]byte, error) {
	g, err := c.grid()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%d" height="%d" viewBox="0 0 %d %d">`,
		c.Size, c.Size, c.Size, c.Size,
	))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" %s/>`, c.Size, c.Size, svgFill(c.background())))

	sb.WriteString(`<path `)
	sb.WriteString(svgFill(c.foreground()))
	sb.WriteString(` d="`)
	for y := 0; y < g.n; y++ {
		for x := 0; x < g.n; x++ {
			if !g.dark(x, y) {
				continue
			}
			px, py := g.origin(x, y)
			writeCellPath(&sb, px, py, g.cell, g.radii(c.DotStyle, x, y))
		}
	}
	sb.WriteString(`"/>`)

	if c.Logo != nil {
		var buf bytes.Buffer
		if err = png.Encode(&buf, c.Logo); err != nil {
			return nil, fmt.Errorf("failed to encode logo: %w", err)
		}
		b := c.Logo.Bounds()
		sb.WriteString(fmt.Sprintf(
			`<image x="%d" y="%d" width="%d" height="%d" xlink:href="data:image/png;base64,%s"/>`,
			(c.Size-b.Dx())/2, (c.Size-b.Dy())/2, b.Dx(), b.Dy(),
			base64.StdEncoding.EncodeToString(buf.Bytes()),
		))
	}

	sb.WriteString(`</svg>`)
	return []byte(sb.String()), nil
}

func writeCellPath(sb *strings.Builder, x, y, s float64, r [4]float64) {
	tl, tr, br, bl := r[0], r[1], r[2], r[3]
	sb.WriteString("M" + num(x+tl) + " " + num(y))
	sb.WriteString("H" + num(x+s-tr))
	if tr > 0 {
		sb.WriteString(arc(tr, x+s, y+tr))
	}
	sb.WriteString("V" + num(y+s-br))
	if br > 0 {
		sb.WriteString(arc(br, x+s-br, y+s))
	}
	sb.WriteString("H" + num(x+bl))
	if bl > 0 {
		sb.WriteString(arc(bl, x, y+s-bl))
	}
	sb.WriteString("V" + num(y+tl))
	if tl > 0 {
		sb.WriteString(arc(tl, x+tl, y))
	}
	sb.WriteString("Z")
}

func arc(r, x, y float64) string {
	return "A" + num(r) + " " + num(r) + " 0 0 1 " + num(x) + " " + num(y)
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func svgFill(c color.Color) string {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	fill := fmt.Sprintf(`fill="#%02x%02x%02x"`, nc.R, nc.G, nc.B)
	if nc.A != 0xff {
		fill += ` fill-opacity="` + strconv.FormatFloat(float64(nc.A)/0xff, 'f', 3, 64) + `"`
	}
	return fill
}
