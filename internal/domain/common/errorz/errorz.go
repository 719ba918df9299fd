package errorz

import "errors"

var (
	ErrInvalidCallbackData = errors.New("invalid callback data")
	ErrInvalidState        = errors.New("invalid state")
	ErrForbidden           = errors.New("forbidden")

	ErrInvalidText       = errors.New("invalid qr text")
	ErrInvalidColor      = errors.New("invalid color")
	ErrLogoUnreadable    = errors.New("logo is unreadable")
	ErrLogoTooLarge      = errors.New("logo is too large")
	ErrLogoSuperseded    = errors.New("logo pass superseded by a newer one")
	ErrInvalidPresetName = errors.New("invalid preset name")
	ErrPresetExists      = errors.New("preset already exists")
	ErrTooManyPresets    = errors.New("too many presets")
	ErrInvalidEmail      = errors.New("invalid email")
)
