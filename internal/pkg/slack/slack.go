package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Notifier posts plain-text messages to one channel.
type Notifier interface {
	Post(ctx context.Context, message string) error
}

type slackNotifier struct {
	client  *slack.Client
	channel string
}

func NewNotifier(token string, channel string) Notifier {
	return &slackNotifier{client: slack.New(token), channel: channel}
}

func (s *slackNotifier) Post(ctx context.Context, message string) error {
	_, _, err := s.client.PostMessageContext(ctx,
		s.channel,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}
