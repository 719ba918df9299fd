package validator

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
)

const (
	MaxPresetNameLength = 32
	// MaxTextBytes stays below the binary capacity of a version 40 symbol at level H.
	MaxTextBytes = 1273
)

func QRText(text string) bool {
	return strings.TrimSpace(text) != "" && len(text) <= MaxTextBytes && utf8.ValidString(text)
}

func PresetName(name string) bool {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return n > 0 && n <= MaxPresetNameLength && !strings.ContainsAny(name, "\n\r\t")
}

func Email(email string) bool {
	return emailFormat(email) && emailDomain(email)
}

func emailFormat(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// emailDomain accepts any domain when no allow-list is configured.
func emailDomain(email string) bool {
	validDomains := viper.GetStringSlice("settings.mail.allowed-domains")
	if len(validDomains) == 0 {
		return true
	}

	for _, domain := range validDomains {
		if strings.HasSuffix(email, domain) {
			return true
		}
	}
	return false
}
