package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/sitecms/sitecms/pkg/metrics"
)

// SMTPSettings capture the runtime configuration required by the SMTP mailer.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	// UseTLS dials with implicit TLS (port 465). Otherwise STARTTLS is used when offered.
	UseTLS             bool
	InsecureSkipVerify bool
}

type dialAndSendFunc func(d *gomail.Dialer, m ...*gomail.Message) error

type smtpMailer struct {
	cfg     SMTPSettings
	from    Sender
	timeout time.Duration
	send    dialAndSendFunc
}

// NewSMTPMailer returns a gomail-backed mailer.
func NewSMTPMailer(cfg SMTPSettings, from Sender, timeout time.Duration) (Mailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp: host is required")
	}
	if cfg.Port == 0 {
		return nil, errors.New("smtp: port is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &smtpMailer{
		cfg:     cfg,
		from:    from,
		timeout: timeout,
		send: func(d *gomail.Dialer, m ...*gomail.Message) error {
			return d.DialAndSend(m...)
		},
	}, nil
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) (err error) {
	defer func() {
		metrics.MailDeliveries.WithLabelValues(ProviderSMTP, metrics.Result(err)).Inc()
	}()

	env, err := prepare(msg, m.from)
	if err != nil {
		return err
	}

	message := gomail.NewMessage()
	if env.fromName != "" {
		message.SetAddressHeader("From", env.from, env.fromName)
	} else {
		message.SetHeader("From", env.from)
	}
	message.SetHeader("To", env.recipients...)
	message.SetHeader("Subject", env.subject)
	switch {
	case env.text != "" && env.html != "":
		message.SetBody("text/plain", env.text)
		message.AddAlternative("text/html", env.html)
	case env.html != "":
		message.SetBody("text/html", env.html)
	default:
		message.SetBody("text/plain", env.text)
	}

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	dialer.SSL = m.cfg.UseTLS
	dialer.TLSConfig = &tls.Config{ServerName: m.cfg.Host, InsecureSkipVerify: m.cfg.InsecureSkipVerify} //nolint:gosec

	return runWithTimeout(ctx, m.timeout, func(context.Context) error {
		return m.send(dialer, message)
	})
}
