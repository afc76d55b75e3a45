package mail

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// ErrDisabled signals that outbound email is switched off via configuration.
var ErrDisabled = errors.New("mail: delivery disabled")

const defaultTimeout = 10 * time.Second

// Message represents an outbound email. At least one of Text or HTML is required.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer defines behaviour for sending email messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Provider names accepted by New.
const (
	ProviderNone     = "none"
	ProviderSMTP     = "smtp"
	ProviderSendGrid = "sendgrid"
)

// Settings selects and configures a delivery provider.
type Settings struct {
	Provider string
	From     string
	FromName string
	Timeout  time.Duration
	SMTP     SMTPSettings
	SendGrid SendGridSettings
}

// New builds the mailer for the configured provider. An empty or "none"
// provider yields a mailer that returns ErrDisabled.
func New(cfg Settings) (Mailer, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderNone:
		return disabledMailer{}, nil
	case ProviderSMTP:
		return NewSMTPMailer(cfg.SMTP, Sender{Address: cfg.From, Name: cfg.FromName}, cfg.Timeout)
	case ProviderSendGrid:
		return NewSendGridMailer(cfg.SendGrid, Sender{Address: cfg.From, Name: cfg.FromName}, cfg.Timeout)
	default:
		return nil, fmt.Errorf("mail: unsupported provider %q", cfg.Provider)
	}
}

type disabledMailer struct{}

func (disabledMailer) Send(context.Context, Message) error { return ErrDisabled }

// Sender is the default From identity applied when a Message has none.
type Sender struct {
	Address string
	Name    string
}

// envelope is a validated Message ready for a provider.
type envelope struct {
	from       string
	fromName   string
	recipients []string
	subject    string
	text       string
	html       string
}

func prepare(msg Message, def Sender) (envelope, error) {
	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return envelope{}, errors.New("mail: at least one recipient is required")
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = def.Address
	}
	if from == "" {
		return envelope{}, errors.New("mail: sender address is required")
	}
	if _, err := mail.ParseAddress(from); err != nil {
		return envelope{}, fmt.Errorf("mail: invalid from address: %w", err)
	}

	for _, rcpt := range recipients {
		if _, err := mail.ParseAddress(rcpt); err != nil {
			return envelope{}, fmt.Errorf("mail: invalid recipient address %q: %w", rcpt, err)
		}
	}

	if strings.TrimSpace(msg.Text) == "" && strings.TrimSpace(msg.HTML) == "" {
		return envelope{}, errors.New("mail: message body is required")
	}

	return envelope{
		from:       from,
		fromName:   def.Name,
		recipients: recipients,
		subject:    escapeHeader(msg.Subject),
		text:       msg.Text,
		html:       msg.HTML,
	}, nil
}

// runWithTimeout executes a blocking delivery call, giving up when ctx or the
// timeout expires. The call itself keeps running in the background.
func runWithTimeout(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("mail: send: %w", ctx.Err())
	}
}

func uniqueAddresses(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	var result []string
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		if _, exists := seen[addr]; exists {
			continue
		}
		seen[addr] = struct{}{}
		result = append(result, addr)
	}
	return result
}

func escapeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}
