package entity

import (
	"time"

	"github.com/Badsnus/qr-styler-bot/internal/domain/styler"
)

// Preset is a named snapshot of the raw configurator inputs.
type Preset struct {
	ID        string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CreatedAt time.Time
	UpdatedAt time.Time
	UserID    int64  `gorm:"not null;uniqueIndex:idx_presets_user_name"`
	Name      string `gorm:"not null;uniqueIndex:idx_presets_user_name"`

	Text             string
	Size             string
	DotsPicker       string
	DotsCode         string
	BackgroundPicker string
	BackgroundCode   string
	DotStyle         string
	ECLevel          string
	Compat           bool
}

func NewPreset(userID int64, name string, in styler.Inputs) *Preset {
	return &Preset{
		UserID:           userID,
		Name:             name,
		Text:             in.Text,
		Size:             in.Size,
		DotsPicker:       in.Dots.Picker,
		DotsCode:         in.Dots.Code,
		BackgroundPicker: in.Background.Picker,
		BackgroundCode:   in.Background.Code,
		DotStyle:         in.DotStyle,
		ECLevel:          in.ECLevel,
		Compat:           in.Compat,
	}
}

func (p *Preset) Inputs() styler.Inputs {
	return styler.Inputs{
		Text:       p.Text,
		Size:       p.Size,
		Dots:       styler.ColorSlot{Picker: p.DotsPicker, Code: p.DotsCode},
		Background: styler.ColorSlot{Picker: p.BackgroundPicker, Code: p.BackgroundCode},
		DotStyle:   p.DotStyle,
		ECLevel:    p.ECLevel,
		Compat:     p.Compat,
	}
}
