package qr

import "github.com/skip2/go-qrcode"

type DotStyle string

const (
	DotSquare        DotStyle = "square"
	DotRounded       DotStyle = "rounded"
	DotDots          DotStyle = "dots"
	DotClassy        DotStyle = "classy"
	DotClassyRounded DotStyle = "classy-rounded"
	DotExtraRounded  DotStyle = "extra-rounded"
)

// DotStyles lists every style the engine can draw, in menu order.
var DotStyles = []DotStyle{DotSquare, DotRounded, DotDots, DotClassy, DotClassyRounded, DotExtraRounded}

func ParseDotStyle(s string) (DotStyle, bool) {
	for _, style := range DotStyles {
		if string(style) == s {
			return style, true
		}
	}
	return "", false
}

type ErrorCorrection string

const (
	ECLow      ErrorCorrection = "L"
	ECMedium   ErrorCorrection = "M"
	ECQuartile ErrorCorrection = "Q"
	ECHigh     ErrorCorrection = "H"
)

var ErrorCorrections = []ErrorCorrection{ECLow, ECMedium, ECQuartile, ECHigh}

func ParseErrorCorrection(s string) (ErrorCorrection, bool) {
	for _, ec := range ErrorCorrections {
		if string(ec) == s {
			return ec, true
		}
	}
	return "", false
}

// RecoveryLevel maps the level onto go-qrcode. Unknown values encode as M.
func (e ErrorCorrection) RecoveryLevel() qrcode.RecoveryLevel {
	switch e {
	case ECLow:
		return qrcode.Low
	case ECQuartile:
		return qrcode.High
	case ECHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

type neighbours struct {
	top, right, bottom, left bool
}

// cornerRadii decides how much each corner of a module is rounded. A corner
// is "exposed" when neither of the two modules touching it is dark.
func cornerRadii(style DotStyle, n neighbours, cell float64) [4]float64 {
	half := cell / 2
	exposed := [4]bool{
		!n.top && !n.left,
		!n.top && !n.right,
		!n.bottom && !n.right,
		!n.bottom && !n.left,
	}

	var r [4]float64
	switch style {
	case DotDots:
		return [4]float64{half, half, half, half}
	case DotRounded:
		for i, e := range exposed {
			if e {
				r[i] = half
			}
		}
	case DotExtraRounded:
		count := 0
		for _, e := range exposed {
			if e {
				count++
			}
		}
		for i, e := range exposed {
			switch {
			case e && count == 1:
				r[i] = cell
			case e:
				r[i] = half
			}
		}
	case DotClassy:
		if exposed[0] {
			r[0] = half
		}
		if exposed[2] {
			r[2] = half
		}
	case DotClassyRounded:
		if exposed[0] {
			r[0] = cell
		}
		if exposed[2] {
			r[2] = cell
		}
	}
	return r
}
