// Package line wraps the LINE Messaging API client used by the bot.
package line

import (
	"context"
	"fmt"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// Messenger sends text messages to LINE users.
type Messenger interface {
	Reply(ctx context.Context, replyToken string, texts ...string) error
	Push(ctx context.Context, to string, texts ...string) error
	// DisplayName returns the LINE profile name of a user who added the bot
	DisplayName(ctx context.Context, userID string) (string, error)
}

type Client struct {
	api *messaging_api.MessagingApiAPI
}

func NewClient(channelAccessToken string) (*Client, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging api client: %w", err)
	}
	return &Client{api: api}, nil
}

func (c *Client) Reply(ctx context.Context, replyToken string, texts ...string) error {
	_, err := c.api.WithContext(ctx).ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   textMessages(texts),
	})
	if err != nil {
		return fmt.Errorf("failed to reply message: %w", err)
	}
	return nil
}

func (c *Client) Push(ctx context.Context, to string, texts ...string) error {
	_, err := c.api.WithContext(ctx).PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: textMessages(texts),
	}, "")
	if err != nil {
		return fmt.Errorf("failed to push message: %w", err)
	}
	return nil
}

func (c *Client) DisplayName(ctx context.Context, userID string) (string, error) {
	profile, err := c.api.WithContext(ctx).GetProfile(userID)
	if err != nil {
		return "", fmt.Errorf("failed to get profile: %w", err)
	}
	return profile.DisplayName, nil
}

func textMessages(texts []string) []messaging_api.MessageInterface {
	messages := make([]messaging_api.MessageInterface, 0, len(texts))
	for _, text := range texts {
		messages = append(messages, messaging_api.TextMessage{Text: text})
	}
	return messages
}
