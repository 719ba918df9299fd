package configurator

import (
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Badsnus/qr-styler-bot/internal/domain/entity"
	"github.com/Badsnus/qr-styler-bot/internal/domain/service"
	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
	qr "github.com/Badsnus/qr-styler-bot/pkg/qrcode"
	tele "gopkg.in/telebot.v3"
)

const (
	slotDots       = "dots"
	slotBackground = "bg"
)

// swatch is a palette entry, Name is the locale key of its label.
type swatch struct {
	Name string
	Hex  string
}

var palette = []swatch{
	{"color_black", "#000000"},
	{"color_white", "#ffffff"},
	{"color_red", "#e53935"},
	{"color_orange", "#fb8c00"},
	{"color_yellow", "#fdd835"},
	{"color_green", "#43a047"},
	{"color_blue", "#1e88e5"},
	{"color_purple", "#8e24aa"},
	{"color_grey", "#757575"},
	{"color_navy", "#0d47a1"},
}

var sizeChoices = []int{200, 300, 500, 800, 1000}

// option is the template argument of the selectable buttons.
type option struct {
	Checked bool
	Name    string
	Value   string
}

func styleKey(style qr.DotStyle) string {
	return "style_" + strings.ReplaceAll(string(style), "-", "_")
}

func ecKey(ec qr.ErrorCorrection) string {
	return "ec_" + strings.ToLower(string(ec))
}

func (h Handler) backRow(c tele.Context) tele.Row {
	return tele.Row{*h.layout.Button(c, "qr:back")}
}

func (h Handler) menuMarkup(c tele.Context, hasLogo bool, compat bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	logoRow := markup.Row(*h.layout.Button(c, "qr:logo"))
	if hasLogo {
		logoRow = append(logoRow, *h.layout.Button(c, "qr:logo:remove"))
	}

	markup.Inline(
		markup.Row(*h.layout.Button(c, "qr:text"), *h.layout.Button(c, "qr:size")),
		markup.Row(*h.layout.Button(c, "qr:color:dots"), *h.layout.Button(c, "qr:color:bg")),
		markup.Row(*h.layout.Button(c, "qr:style"), *h.layout.Button(c, "qr:ec")),
		markup.Row(*h.layout.Button(c, "qr:compat", compat)),
		logoRow,
		markup.Row(*h.layout.Button(c, "qr:apply")),
		markup.Row(
			*h.layout.Button(c, "qr:png"),
			*h.layout.Button(c, "qr:svg"),
			*h.layout.Button(c, "qr:png:hr", h.hrScale),
		),
		markup.Row(
			*h.layout.Button(c, "qr:email"),
			*h.layout.Button(c, "qr:preset:save"),
			*h.layout.Button(c, "qr:presets"),
		),
	)
	return markup
}

func (h Handler) styleMarkup(c tele.Context, in styler.Inputs) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i := 0; i < len(qr.DotStyles); i += 2 {
		var row tele.Row
		for _, style := range qr.DotStyles[i:min(i+2, len(qr.DotStyles))] {
			row = append(row, *h.layout.Button(c, "qr:style:set", option{
				Checked: string(style) == in.DotStyle,
				Name:    styleKey(style),
				Value:   string(style),
			}))
		}
		rows = append(rows, row)
	}
	markup.Inline(append(rows, h.backRow(c))...)
	return markup
}

func (h Handler) ecMarkup(c tele.Context, in styler.Inputs) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var row tele.Row
	for _, ec := range qr.ErrorCorrections {
		row = append(row, *h.layout.Button(c, "qr:ec:set", option{
			Checked: string(ec) == in.ECLevel,
			Name:    ecKey(ec),
			Value:   string(ec),
		}))
	}
	markup.Inline(row, h.backRow(c))
	return markup
}

func (h Handler) colorMarkup(c tele.Context, slot string, current string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for i := 0; i < len(palette); i += 2 {
		var row tele.Row
		for _, s := range palette[i:min(i+2, len(palette))] {
			row = append(row, *h.layout.Button(c, "qr:color:set", struct {
				Checked bool
				Name    string
				Slot    string
				Hex     string
			}{
				Checked: strings.EqualFold(s.Hex, current),
				Name:    s.Name,
				Slot:    slot,
				Hex:     s.Hex,
			}))
		}
		rows = append(rows, row)
	}
	rows = append(rows, markup.Row(*h.layout.Button(c, "qr:color:code", slot)), h.backRow(c))
	markup.Inline(rows...)
	return markup
}

func (h Handler) sizeMarkup(c tele.Context, limits styler.SizeLimits, current int) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var row tele.Row
	for _, size := range sizeChoices {
		if limits.Resolve(strconv.Itoa(size)) != size {
			continue
		}
		row = append(row, *h.layout.Button(c, "qr:size:set", struct {
			Checked bool
			Size    int
		}{
			Checked: size == current,
			Size:    size,
		}))
	}
	markup.Inline(row, markup.Row(*h.layout.Button(c, "qr:size:custom")), h.backRow(c))
	return markup
}

// presetsMarkup lists the presets of a user. Preset names are user input,
// so they are appended to the button label after templating.
func (h Handler) presetsMarkup(c tele.Context, presets []entity.Preset, withBack bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for _, p := range presets {
		load := *h.layout.Button(c, "qr:preset:load", p.ID)
		load.Text += " " + shorten(p.Name, 32)
		rows = append(rows, markup.Row(load, *h.layout.Button(c, "qr:preset:delete", p.ID)))
	}
	if withBack {
		rows = append(rows, h.backRow(c))
	}
	markup.Inline(rows...)
	return markup
}

func (h Handler) cancelMarkup(c tele.Context) *tele.ReplyMarkup {
	return h.layout.Markup(c, "qr:prompt:cancel")
}

func shorten(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit-1]) + "…"
}

// previewCaption is the argument of the preview_caption text. Every string
// is already escaped for HTML.
type previewCaption struct {
	Text       string
	Size       int
	Dots       string
	Background string
	Style      string
	EC         string
	Compat     bool
	HasLogo    bool
}

func newPreviewCaption(r *service.Rendered) previewCaption {
	in := r.Inputs
	out := previewCaption{
		Text:       html.EscapeString(shorten(in.Text, 64)),
		Size:       r.Size,
		Dots:       html.EscapeString(in.Dots.Resolve()),
		Background: html.EscapeString(in.Background.Resolve()),
		Style:      html.EscapeString(in.DotStyle),
		EC:         html.EscapeString(in.ECLevel),
		Compat:     in.Compat,
		HasLogo:    r.HasLogo,
	}
	if in.Compat {
		out.Style, out.EC = string(qr.DotSquare), string(qr.ECHigh)
	}
	return out
}

// caption describes the rendered preview, including the resolved size.
func (h Handler) caption(c tele.Context, r *service.Rendered) string {
	return h.layout.Text(c, "preview_caption", newPreviewCaption(r))
}
