package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/response"
)

const (
	stateCookieName = "line_state"
	callbackPath    = "/api/v1/auth/oauth/callback/line"
)

type AuthHandler interface {
	LoginWithLIFF(w http.ResponseWriter, r *http.Request)
	LoginWithLine(w http.ResponseWriter, r *http.Request)
	OAuthCallbackLine(w http.ResponseWriter, r *http.Request)
	VerifyEmail(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
	userService user.UserService
	frontendURL string
	secure      bool
}

func NewAuthHandler(authService auth.AuthService, userService user.UserService, frontendURL string, secureCookies bool) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
		userService: userService,
		frontendURL: frontendURL,
		secure:      secureCookies,
	}
}

// LoginWithLIFF implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithLIFF(w http.ResponseWriter, r *http.Request) {
	var req auth.LIFFLoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("LoginWithLIFF decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	tokenResponse, err := a.authService.LoginWithLIFF(r.Context(), req)
	if err != nil {
		slog.Error("LoginWithLIFF service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Login successful", tokenResponse)
}

// LoginWithLine implements AuthHandler.
func (a *AuthHandlerImpl) LoginWithLine(w http.ResponseWriter, r *http.Request) {
	redirectURL, state, err := a.authService.LineLoginURL(r.Context())
	if err != nil {
		slog.Error("LoginWithLine service error", "error", err)
		response.HandleError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     callbackPath,
		Expires:  time.Now().Add(5 * time.Minute),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// OAuthCallbackLine implements AuthHandler. Without a frontend URL the token
// is returned as JSON; otherwise the browser is sent back to the frontend.
func (a *AuthHandlerImpl) OAuthCallbackLine(w http.ResponseWriter, r *http.Request) {
	fail := func(code string, err error) {
		slog.Error("LINE login callback failed", "reason", code, "error", err)
		if a.frontendURL == "" {
			response.HandleError(w, err)
			return
		}
		redirectURL := fmt.Sprintf("%s/auth/callback/line?error=%s", a.frontendURL, url.QueryEscape(code))
		http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
	}

	if errorValue := r.URL.Query().Get("error"); errorValue != "" {
		fail(errorValue, auth.ErrLineAuthFailed)
		return
	}

	var expected string
	if cookie, err := r.Cookie(stateCookieName); err == nil {
		expected = cookie.Value
	}

	// The state is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     callbackPath,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})

	tokenResponse, err := a.authService.LoginWithLineCode(r.Context(), auth.LineCallbackRequest{
		Code:          r.URL.Query().Get("code"),
		State:         r.URL.Query().Get("state"),
		ExpectedState: expected,
	})
	if err != nil {
		fail("login_failed", err)
		return
	}

	slog.Info("User logged in via LINE Login", "user_id", tokenResponse.User.ID)

	if a.frontendURL == "" {
		response.SuccessWithMessage(w, "Login successful", tokenResponse)
		return
	}
	redirectURL := fmt.Sprintf("%s/auth/callback/line?access_token=%s&expires_at=%d",
		a.frontendURL,
		url.QueryEscape(tokenResponse.AccessToken),
		tokenResponse.ExpiresAt,
	)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// VerifyEmail implements AuthHandler.
func (a *AuthHandlerImpl) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req user.VerifyEmailRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("VerifyEmail decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	profile, err := a.userService.VerifyEmail(r.Context(), req)
	if err != nil {
		slog.Error("VerifyEmail service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Email verified", profile)
}
