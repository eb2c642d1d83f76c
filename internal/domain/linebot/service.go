package linebot

import "context"

// TextEvent is an inbound text message from a LINE user.
type TextEvent struct {
	LineUserID string
	ReplyToken string
	Text       string
}

// FollowEvent is sent when a user adds the bot as a friend.
type FollowEvent struct {
	LineUserID string
	ReplyToken string
}

type BotService interface {
	// HandleText executes the command and replies; it returns the parsed command
	HandleText(ctx context.Context, event TextEvent) (Command, error)
	HandleFollow(ctx context.Context, event FollowEvent) error
}
