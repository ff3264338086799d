package domain

import "context"

// Mailer sends a single email. Implementations may use SES, SMTP, or a no-op
// for development.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template into subject, html,
// and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData is the payload for the post-registration welcome email.
type WelcomeEmailData struct {
	Email     string
	Username  string
	FirstName string
}

// EmailService defines the outbound email operations.
type EmailService interface {
	SendWelcome(ctx context.Context, data *WelcomeEmailData) error
}
