package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
)

const keepaliveInterval = 30 * time.Second

// EventHandler serves the admin dashboard event stream.
type EventHandler interface {
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	authService auth.AuthService
	hub         *sse.Hub
}

func NewEventHandler(authService auth.AuthService, hub *sse.Hub) EventHandler {
	return &eventHandlerImpl{
		authService: authService,
		hub:         hub,
	}
}

// StreamToken issues a short-lived token for one company's stream
func (h *eventHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.IssueStreamToken(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "companyID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stream handles the SSE connection. The token comes from the query string
// because EventSource cannot set headers.
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	userID, err := h.authService.AuthorizeStream(r.Context(), r.URL.Query().Get("token"), companyID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(companyID)
	defer cleanup()

	slog.Debug("event stream opened", "user_id", userID, "company_id", companyID)

	fmt.Fprintf(w, "event: connected\ndata: {\"company_id\":%q}\n\n", companyID)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("failed to encode stream event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
