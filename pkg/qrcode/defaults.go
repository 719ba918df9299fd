package qr

import "image/color"

var Default = Config{
	Content:         "https://example.com",
	Size:            300,
	Margin:          10,
	Foreground:      color.RGBA{A: 255},
	Background:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
	DotStyle:        DotRounded,
	ErrorCorrection: ECMedium,
	LogoMargin:      5,
}
