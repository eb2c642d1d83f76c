package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type CompanyHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Link(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListMembers(w http.ResponseWriter, r *http.Request)
	SetAdmin(w http.ResponseWriter, r *http.Request)
	RegenerateJoinCode(w http.ResponseWriter, r *http.Request)
}

type CompanyHandlerImpl struct {
	companyService company.CompanyService
}

func NewCompanyHandler(companyService company.CompanyService) CompanyHandler {
	return &CompanyHandlerImpl{
		companyService: companyService,
	}
}

// Create implements CompanyHandler.
func (c *CompanyHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req company.CreateCompanyRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode company request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = middleware.UserID(r.Context())

	companyResponse, err := c.companyService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Company created", companyResponse)
}

// Link implements CompanyHandler.
func (c *CompanyHandlerImpl) Link(w http.ResponseWriter, r *http.Request) {
	var req company.LinkRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode link request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.LineUserID = middleware.LineUserID(r.Context())

	membership, err := c.companyService.Link(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Linked to company", membership)
}

// List implements CompanyHandler.
func (c *CompanyHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	memberships, err := c.companyService.ListMine(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, memberships)
}

// Get implements CompanyHandler.
func (c *CompanyHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	companyResponse, err := c.companyService.Get(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "companyID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, companyResponse)
}

// ListMembers implements CompanyHandler.
func (c *CompanyHandlerImpl) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := c.companyService.ListMembers(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "companyID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, members)
}

// SetAdmin implements CompanyHandler.
func (c *CompanyHandlerImpl) SetAdmin(w http.ResponseWriter, r *http.Request) {
	var req company.SetAdminRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode member request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.RequesterID = middleware.UserID(r.Context())
	req.CompanyID = chi.URLParam(r, "companyID")
	req.UserID = chi.URLParam(r, "userID")

	member, err := c.companyService.SetAdmin(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Member updated", member)
}

// RegenerateJoinCode implements CompanyHandler.
func (c *CompanyHandlerImpl) RegenerateJoinCode(w http.ResponseWriter, r *http.Request) {
	companyResponse, err := c.companyService.RegenerateJoinCode(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "companyID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Join code regenerated", companyResponse)
}
