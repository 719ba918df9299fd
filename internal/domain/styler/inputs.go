package styler

import (
	"strconv"
	"strings"

	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
)

// Inputs are the raw control values of one configurator session. They are
// stored as entered; Assemble never writes back into them.
type Inputs struct {
	Text       string    `json:"text"`
	Size       string    `json:"size"`
	Dots       ColorSlot `json:"dots"`
	Background ColorSlot `json:"background"`
	DotStyle   string    `json:"dot_style"`
	ECLevel    string    `json:"ec_level"`
	Compat     bool      `json:"compat"`
}

func DefaultInputs(size int) Inputs {
	return Inputs{
		Text:       qr.Default.Content,
		Size:       strconv.Itoa(size),
		Dots:       NewColorSlot("#000000"),
		Background: NewColorSlot("#ffffff"),
		DotStyle:   string(qr.DotRounded),
		ECLevel:    string(qr.ECMedium),
	}
}

type SizeLimits struct {
	Default int
	Min     int
	Max     int
}

// Resolve turns the raw size field into a usable pixel size. Anything that
// is not a positive integer falls back to Default, the rest is clamped.
func (l SizeLimits) Resolve(raw string) int {
	size, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || size <= 0 {
		size = l.Default
	}
	if l.Min > 0 && size < l.Min {
		size = l.Min
	}
	if l.Max > 0 && size > l.Max {
		size = l.Max
	}
	return size
}
