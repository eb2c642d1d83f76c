// Package linebot receives LINE Messaging API webhooks.
package linebot

import (
	"errors"
	"log/slog"
	"net/http"

	botdomain "github.com/cmlabs-hris/kintai-line-go/internal/domain/linebot"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

type WebhookHandler interface {
	Callback(w http.ResponseWriter, r *http.Request)
}

type webhookHandlerImpl struct {
	channelSecret string
	botService    botdomain.BotService
}

func NewWebhookHandler(channelSecret string, botService botdomain.BotService) WebhookHandler {
	return &webhookHandlerImpl{
		channelSecret: channelSecret,
		botService:    botService,
	}
}

// Callback verifies the X-Line-Signature over the raw body and handles every
// event in the batch. Failures of single events are logged; LINE only needs
// the 200.
func (h *webhookHandlerImpl) Callback(w http.ResponseWriter, r *http.Request) {
	cb, err := webhook.ParseRequest(h.channelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			slog.Warn("LINE webhook rejected", "error", err)
			response.BadRequest(w, "Invalid signature", nil)
			return
		}
		slog.Error("failed to parse LINE webhook", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	for _, event := range cb.Events {
		h.handle(r, event)
	}

	response.Success(w, nil)
}

func (h *webhookHandlerImpl) handle(r *http.Request, event webhook.EventInterface) {
	ctx := r.Context()

	switch e := event.(type) {
	case webhook.MessageEvent:
		text, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			return
		}
		userID, ok := sourceUserID(e.Source)
		if !ok {
			return
		}
		cmd, err := h.botService.HandleText(ctx, botdomain.TextEvent{
			LineUserID: userID,
			ReplyToken: e.ReplyToken,
			Text:       text.Text,
		})
		if err != nil {
			slog.Error("failed to handle LINE message", "command", cmd, "error", err)
		}

	case webhook.FollowEvent:
		userID, ok := sourceUserID(e.Source)
		if !ok {
			return
		}
		if err := h.botService.HandleFollow(ctx, botdomain.FollowEvent{
			LineUserID: userID,
			ReplyToken: e.ReplyToken,
		}); err != nil {
			slog.Error("failed to handle LINE follow", "error", err)
		}

	default:
		slog.Debug("ignored LINE event", "type", event.GetType())
	}
}

// sourceUserID only accepts one-to-one chats; group messages are ignored.
func sourceUserID(source webhook.SourceInterface) (string, bool) {
	user, ok := source.(webhook.UserSource)
	if !ok || user.UserId == "" {
		return "", false
	}
	return user.UserId, true
}
