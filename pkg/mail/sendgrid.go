package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/sitecms/sitecms/pkg/metrics"
)

// SendGridSettings configure the SendGrid HTTP API mailer.
type SendGridSettings struct {
	APIKey string
	// Sandbox asks SendGrid to validate without delivering.
	Sandbox bool
}

type sendGridFunc func(ctx context.Context, message *sgmail.SGMailV3) (status int, body string, err error)

type sendGridMailer struct {
	cfg     SendGridSettings
	from    Sender
	timeout time.Duration
	send    sendGridFunc
}

// NewSendGridMailer returns a mailer backed by the SendGrid v3 API.
func NewSendGridMailer(cfg SendGridSettings, from Sender, timeout time.Duration) (Mailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("sendgrid: api key is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := sendgrid.NewSendClient(cfg.APIKey)
	return &sendGridMailer{
		cfg:     cfg,
		from:    from,
		timeout: timeout,
		send: func(ctx context.Context, message *sgmail.SGMailV3) (int, string, error) {
			resp, err := client.SendWithContext(ctx, message)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}, nil
}

func (m *sendGridMailer) Send(ctx context.Context, msg Message) (err error) {
	defer func() {
		metrics.MailDeliveries.WithLabelValues(ProviderSendGrid, metrics.Result(err)).Inc()
	}()

	env, err := prepare(msg, m.from)
	if err != nil {
		return err
	}

	message := buildSendGridMessage(env)
	if m.cfg.Sandbox {
		settings := sgmail.NewMailSettings()
		settings.SetSandboxMode(sgmail.NewSetting(true))
		message.MailSettings = settings
	}

	return runWithTimeout(ctx, m.timeout, func(ctx context.Context) error {
		status, body, err := m.send(ctx, message)
		if err != nil {
			return fmt.Errorf("sendgrid: send: %w", err)
		}
		if status >= 400 {
			return fmt.Errorf("sendgrid: unexpected status %d: %s", status, body)
		}
		return nil
	})
}

func buildSendGridMessage(env envelope) *sgmail.SGMailV3 {
	message := sgmail.NewV3Mail()
	message.SetFrom(sgmail.NewEmail(env.fromName, env.from))
	message.Subject = env.subject

	personalization := sgmail.NewPersonalization()
	for _, rcpt := range env.recipients {
		personalization.AddTos(sgmail.NewEmail("", rcpt))
	}
	message.AddPersonalizations(personalization)

	// SendGrid requires text/plain before text/html.
	if env.text != "" {
		message.AddContent(sgmail.NewContent("text/plain", env.text))
	}
	if env.html != "" {
		message.AddContent(sgmail.NewContent("text/html", env.html))
	}
	return message
}
