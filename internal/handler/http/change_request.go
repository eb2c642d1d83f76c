package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/changerequest"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type ChangeRequestHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
}

type changeRequestHandlerImpl struct {
	changeRequestService changerequest.ChangeRequestService
}

func NewChangeRequestHandler(changeRequestService changerequest.ChangeRequestService) ChangeRequestHandler {
	return &changeRequestHandlerImpl{
		changeRequestService: changeRequestService,
	}
}

// Create implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req changerequest.CreateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode change request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RequesterID = middleware.UserID(r.Context())
	req.CompanyID = chi.URLParam(r, "companyID")

	result, err := h.changeRequestService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Change request submitted", result)
}

// List implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := changerequest.ListRequest{
		RequesterID: middleware.UserID(r.Context()),
		CompanyID:   chi.URLParam(r, "companyID"),
		UserID:      r.URL.Query().Get("user_id"),
		Status:      r.URL.Query().Get("status"),
	}

	result, err := h.changeRequestService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Get implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.changeRequestService.Get(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "companyID"), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Review implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	var req changerequest.ReviewRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode review", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.CompanyID = chi.URLParam(r, "companyID")
	req.ReviewerID = middleware.UserID(r.Context())

	result, err := h.changeRequestService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Change request "+string(result.Status), result)
}

// Withdraw implements ChangeRequestHandler.
func (h *changeRequestHandlerImpl) Withdraw(w http.ResponseWriter, r *http.Request) {
	req := changerequest.WithdrawRequest{
		ID:          chi.URLParam(r, "id"),
		CompanyID:   chi.URLParam(r, "companyID"),
		RequesterID: middleware.UserID(r.Context()),
	}

	if err := h.changeRequestService.Withdraw(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Change request withdrawn", nil)
}
