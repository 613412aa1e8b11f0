package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/jordan-wright/email"
)

type Config struct {
	Enabled  bool     `json:"enabled"`
	SmtpAddr string   `json:"smtp_addr"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

// Mailer sends price-change notices during bulk sweeps. The zero value
// (and any config with Enabled false) is a no-op.
type Mailer struct {
	config Config
}

func NewMailer(config Config) Mailer {
	return Mailer{config: config}
}

func (m Mailer) Enabled() bool {
	return m.config.Enabled
}

func (m Mailer) PriceChanged(title, url string, oldPrice, newPrice int64, currency string) error {
	if !m.config.Enabled {
		return nil
	}

	e := email.NewEmail()
	e.From = m.config.From
	e.To = m.config.To
	e.Subject = fmt.Sprintf("Price change: %s", title)
	e.Text = []byte(fmt.Sprintf(
		"%s\n%d %s -> %d %s\n%s\n",
		title, oldPrice, currency, newPrice, currency, url,
	))

	var auth smtp.Auth
	if m.config.Username != "" {
		host, _, _ := strings.Cut(m.config.SmtpAddr, ":")
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, host)
	}
	return e.Send(m.config.SmtpAddr, auth)
}
