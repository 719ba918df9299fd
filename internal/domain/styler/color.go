package styler

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"
)

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidHex reports whether v is a 3 or 6 digit hex colour, "#" optional.
func ValidHex(v string) bool {
	return hexColor.MatchString(v)
}

// ParseHex converts a valid hex colour into an opaque RGBA.
func ParseHex(v string) (color.RGBA, error) {
	if !ValidHex(v) {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", v)
	}
	v = strings.TrimPrefix(v, "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return color.RGBA{}, err
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, nil
}

// NormalizeHex returns v as lowercase "#rrggbb", or "" when v is invalid.
func NormalizeHex(v string) string {
	c, err := ParseHex(v)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ColorSlot is one colour control: a palette pick and a free-text code kept
// in sync with it.
type ColorSlot struct {
	Picker string `json:"picker"`
	Code   string `json:"code"`
}

func NewColorSlot(v string) ColorSlot {
	v = NormalizeHex(v)
	return ColorSlot{Picker: v, Code: v}
}

// Resolve returns the code verbatim when it is a valid hex colour and the
// picker value otherwise.
func (s ColorSlot) Resolve() string {
	if ValidHex(s.Code) {
		return s.Code
	}
	return s.Picker
}

// SetPicker always overwrites the code.
func (s *ColorSlot) SetPicker(v string) {
	s.Picker = v
	s.Code = v
}

// SetCode stores typed text. Only a valid code is pushed into the picker,
// partial input stays in the code field alone.
func (s *ColorSlot) SetCode(v string) {
	s.Code = v
	if ValidHex(v) {
		s.Picker = NormalizeHex(v)
	}
}
