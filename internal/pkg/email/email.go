package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Sender delivers one HTML message to a list of recipients.
type Sender interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendAdminNotification(ctx context.Context, to []string, data AdminNotification) error
	SendEmailVerification(ctx context.Context, to, displayName, verificationLink string) error
}

type emailServiceImpl struct {
	sender    Sender
	templates *template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(sender Sender) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		sender:    sender,
		templates: tmpl,
	}, nil
}

type AdminNotification struct {
	CompanyName string
	Title       string
	Summary     string
	OccurredAt  string
}

// SendAdminNotification sends an attendance event summary to company admins.
func (s *emailServiceImpl) SendAdminNotification(ctx context.Context, to []string, data AdminNotification) error {
	if len(to) == 0 {
		return nil
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "admin_notification.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sender.Send(ctx, to, fmt.Sprintf("[%s] %s", data.CompanyName, data.Title), body.String())
}

type emailVerificationData struct {
	DisplayName      string
	VerificationLink string
}

// SendEmailVerification sends the address confirmation link.
func (s *emailServiceImpl) SendEmailVerification(ctx context.Context, to, displayName, verificationLink string) error {
	data := emailVerificationData{
		DisplayName:      displayName,
		VerificationLink: verificationLink,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "email_verification.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sender.Send(ctx, []string{to}, "メールアドレスの確認", body.String())
}
