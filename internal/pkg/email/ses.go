package email

import (
	"context"
	"fmt"
	"log/slog"
	"mime"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/cmlabs-hris/kintai-line-go/internal/config"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type sesSender struct {
	client sesAPI
	source string
}

// NewSESSender loads AWS credentials from the default chain.
func NewSESSender(ctx context.Context, cfg config.SESConfig) (Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return newSESSender(ses.NewFromConfig(awsCfg), cfg), nil
}

func newSESSender(client sesAPI, cfg config.SESConfig) *sesSender {
	source := cfg.From
	if cfg.FromName != "" {
		source = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", cfg.FromName), cfg.From)
	}
	return &sesSender{client: client, source: source}
}

func (s *sesSender) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(s.source),
		Destination: &types.Destination{ToAddresses: to},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody), Charset: aws.String("UTF-8")},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email via ses: %w", err)
	}

	slog.InfoContext(ctx, "Email sent successfully", "to", to, "subject", subject, "message_id", aws.ToString(out.MessageId))
	return nil
}
