package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// RequireCompany rejects malformed {companyID} path values before they reach
// the services. Membership itself is checked by each service.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !validator.IsValidUUID(chi.URLParam(r, "companyID")) {
			response.HandleError(w, company.ErrCompanyNotFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}
