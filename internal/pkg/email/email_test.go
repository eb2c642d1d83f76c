package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/cmlabs-hris/kintai-line-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	to      []string
	subject string
	body    string
	calls   int
}

func (r *recordingSender) Send(_ context.Context, to []string, subject, htmlBody string) error {
	r.to, r.subject, r.body = to, subject, htmlBody
	r.calls++
	return nil
}

func TestSendAdminNotification(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewEmailService(sender)
	require.NoError(t, err)

	err = svc.SendAdminNotification(context.Background(), []string{"admin@example.com"}, AdminNotification{
		CompanyName: "Acme",
		Title:       "Clock in",
		Summary:     "Taro clocked in at 09:00",
		OccurredAt:  "2024-06-01 09:00",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"admin@example.com"}, sender.to)
	assert.Equal(t, "[Acme] Clock in", sender.subject)
	assert.Contains(t, sender.body, "Taro clocked in at 09:00")
}

func TestSendAdminNotification_NoRecipients(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewEmailService(sender)
	require.NoError(t, err)

	require.NoError(t, svc.SendAdminNotification(context.Background(), nil, AdminNotification{}))
	assert.Zero(t, sender.calls)
}

func TestSendEmailVerification_EscapesHTML(t *testing.T) {
	sender := &recordingSender{}
	svc, err := NewEmailService(sender)
	require.NoError(t, err)

	err = svc.SendEmailVerification(context.Background(), "taro@example.com", "<Taro>", "https://app.example.com/verify?token=abc")
	require.NoError(t, err)

	assert.Contains(t, sender.body, "&lt;Taro&gt;")
	assert.Contains(t, sender.body, "https://app.example.com/verify?token=abc")
}

func TestBuildMessage_EncodesSubject(t *testing.T) {
	msg := string(buildMessage("Kintai", "noreply@example.com", []string{"a@example.com", "b@example.com"}, "出勤通知", "<p>hi</p>"))

	assert.Contains(t, msg, "To: a@example.com, b@example.com\r\n")
	assert.Contains(t, msg, "Subject: =?UTF-8?q?")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

func TestSMTPSender_SkipsWhenUnconfigured(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{})
	assert.NoError(t, sender.Send(context.Background(), []string{"a@example.com"}, "s", "b"))
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender(t *testing.T) {
	client := &fakeSES{}
	sender := newSESSender(client, config.SESConfig{From: "noreply@example.com"})

	require.NoError(t, sender.Send(context.Background(), []string{"admin@example.com"}, "subject", "<p>body</p>"))
	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"admin@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>body</p>", aws.ToString(client.input.Message.Body.Html.Data))

	client.err = errors.New("throttled")
	assert.Error(t, sender.Send(context.Background(), []string{"admin@example.com"}, "subject", "body"))
}
