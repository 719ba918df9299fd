package smtp

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"gopkg.in/gomail.v2"
)

// Client sends exported codes by e-mail.
type Client struct {
	dialer *gomail.Dialer
	from   string
	domain string
}

// NewClient reads the sender address and Message-ID domain from service.smtp.
func NewClient(dialer *gomail.Dialer) *Client {
	return &Client{
		dialer: dialer,
		from:   viper.GetString("service.smtp.email"),
		domain: viper.GetString("service.smtp.domain"),
	}
}

// SendExport mails the file at path as an attachment called name.
func (c *Client) SendExport(to, path, name string) error {
	msg := gomail.NewMessage()

	msg.SetHeader("Message-ID", generateMessageID(c.domain))
	msg.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	msg.SetHeader("From", c.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your QR code")
	msg.SetBody("text/plain", "The high resolution QR code you exported is attached.")
	msg.Attach(path, gomail.Rename(name))

	if err := c.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send export to %s: %w", to, err)
	}
	return nil
}

func generateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}
