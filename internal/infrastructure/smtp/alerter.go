package smtp

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/go-member-gate/internal/config"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Alerter emails operator-facing alerts to a single operator address.
type Alerter struct {
	host     string
	port     string
	from     string
	to       string
	username string
	password string
	send     sendFunc
}

func NewAlerter(cfg *config.Config) (*Alerter, error) {
	if cfg.SMTPHost == "" || cfg.AlertEmail == "" {
		return nil, fmt.Errorf("SMTP_HOST and ALERT_EMAIL must both be set")
	}
	return &Alerter{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		to:       cfg.AlertEmail,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		send:     smtp.SendMail,
	}, nil
}

// Alert sends one plain-text message. net/smtp takes no context, so ctx is only checked up front.
func (a *Alerter) Alert(ctx context.Context, subject, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	subject = strings.NewReplacer("\r", " ", "\n", " ").Replace(subject)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: [verification] %s\r\n\r\n%s", a.from, a.to, subject, message)
	addr := fmt.Sprintf("%s:%s", a.host, a.port)

	var auth smtp.Auth
	if a.username != "" {
		auth = smtp.PlainAuth("", a.username, a.password, a.host)
	}

	if err := a.send(addr, auth, a.from, []string{a.to}, []byte(msg)); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}
	return nil
}
