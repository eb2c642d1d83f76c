package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/share"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ShareHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Resolve(w http.ResponseWriter, r *http.Request)
}

type shareHandlerImpl struct {
	shareService share.ShareService
}

func NewShareHandler(shareService share.ShareService) ShareHandler {
	return &shareHandlerImpl{
		shareService: shareService,
	}
}

// Create implements ShareHandler.
func (h *shareHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req share.CreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode share request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RequesterID = middleware.UserID(r.Context())
	req.CompanyID = chi.URLParam(r, "companyID")

	result, err := h.shareService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Share link created", result)
}

// List implements ShareHandler.
func (h *shareHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := share.ListRequest{
		RequesterID: middleware.UserID(r.Context()),
		CompanyID:   chi.URLParam(r, "companyID"),
		UserID:      r.URL.Query().Get("user_id"),
	}

	result, err := h.shareService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete implements ShareHandler.
func (h *shareHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	req := share.DeleteRequest{
		ID:          chi.URLParam(r, "id"),
		CompanyID:   chi.URLParam(r, "companyID"),
		RequesterID: middleware.UserID(r.Context()),
	}

	if err := h.shareService.Delete(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Share link deleted", nil)
}

// Resolve implements ShareHandler. It is served without authentication;
// holding the token is the only requirement.
func (h *shareHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	summary, err := h.shareService.Resolve(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summary)
}
