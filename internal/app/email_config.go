package app

import "github.com/sitecms/sitecms/pkg/mail"

// MailSettings converts EmailConfig to the mail package representation.
func (c EmailConfig) MailSettings() mail.Settings {
	return mail.Settings{
		Provider: c.Provider,
		From:     c.From,
		FromName: c.FromName,
		Timeout:  c.Timeout,
		SMTP: mail.SMTPSettings{
			Host:               c.SMTP.Host,
			Port:               c.SMTP.Port,
			Username:           c.SMTP.Username,
			Password:           c.SMTP.Password,
			UseTLS:             c.SMTP.UseTLS,
			InsecureSkipVerify: c.SMTP.InsecureSkipVerify,
		},
		SendGrid: mail.SendGridSettings{
			APIKey:  c.SendGrid.APIKey,
			Sandbox: c.SendGrid.Sandbox,
		},
	}
}
