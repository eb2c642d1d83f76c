package middleware

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	userIDKey     contextKey = "user_id"
	lineUserIDKey contextKey = "line_user_id"
)

// AuthRequired rejects requests without a verified access token and puts the
// caller's user id on the context.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			tokenType, ok := claims["type"].(string)
			if tokenType != "access" || !ok {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok || userID == "" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			lineUserID, _ := claims["line_user_id"].(string)

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, lineUserIDKey, lineUserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(hfn)
	}
}

// UserID returns the authenticated caller, or "" outside AuthRequired.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// LineUserID returns the LINE identity the access token was issued for.
func LineUserID(ctx context.Context) string {
	lineUserID, _ := ctx.Value(lineUserIDKey).(string)
	return lineUserID
}
