package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/auth"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/oauth"
	"golang.org/x/oauth2"
)

type AuthServiceImpl struct {
	userService    user.UserService
	membershipRepo company.MembershipRepository
	lineService    oauth.LineService
	jwtService     jwt.Service
}

func NewAuthService(userService user.UserService, membershipRepo company.MembershipRepository, lineService oauth.LineService, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		userService:    userService,
		membershipRepo: membershipRepo,
		lineService:    lineService,
		jwtService:     jwtService,
	}
}

// LoginWithLIFF implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithLIFF(ctx context.Context, req auth.LIFFLoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	if err := a.lineService.VerifyAccessToken(ctx, req.AccessToken); err != nil {
		slog.Warn("LIFF access token rejected", "error", err)
		return auth.TokenResponse{}, auth.ErrLineAuthFailed
	}

	return a.login(ctx, &oauth2.Token{AccessToken: req.AccessToken, TokenType: "Bearer"})
}

// LineLoginURL implements auth.AuthService.
func (a *AuthServiceImpl) LineLoginURL(ctx context.Context) (string, string, error) {
	state, err := a.lineService.GenerateState()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return a.lineService.RedirectURL(state), state, nil
}

// LoginWithLineCode implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithLineCode(ctx context.Context, req auth.LineCallbackRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if req.ExpectedState == "" || req.State != req.ExpectedState {
		return auth.TokenResponse{}, auth.ErrInvalidState
	}

	token, err := a.lineService.VerifyCode(ctx, req.Code)
	if err != nil {
		slog.Warn("LINE login code exchange failed", "error", err)
		return auth.TokenResponse{}, auth.ErrLineAuthFailed
	}

	return a.login(ctx, token)
}

func (a *AuthServiceImpl) login(ctx context.Context, token *oauth2.Token) (auth.TokenResponse, error) {
	profile, err := a.lineService.Profile(ctx, token)
	if err != nil {
		slog.Warn("failed to fetch LINE profile", "error", err)
		return auth.TokenResponse{}, auth.ErrLineAuthFailed
	}

	var picture *string
	if profile.PictureURL != "" {
		picture = &profile.PictureURL
	}

	u, err := a.userService.FindOrCreateByLine(ctx, profile.UserID, profile.DisplayName, picture)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	accessToken, expiresAt, err := a.jwtService.GenerateAccessToken(u.ID, u.LineUserID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return auth.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user.NewUserResponse(u),
	}, nil
}

// IssueStreamToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueStreamToken(ctx context.Context, userID string, companyID string) (auth.StreamTokenResponse, error) {
	if _, err := company.RequireAdmin(ctx, a.membershipRepo, userID, companyID); err != nil {
		return auth.StreamTokenResponse{}, err
	}

	token, expiresIn, err := a.jwtService.GenerateStreamToken(userID, companyID)
	if err != nil {
		return auth.StreamTokenResponse{}, fmt.Errorf("failed to generate stream token: %w", err)
	}

	return auth.StreamTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

// AuthorizeStream implements auth.AuthService.
func (a *AuthServiceImpl) AuthorizeStream(ctx context.Context, token string, companyID string) (string, error) {
	if token == "" {
		return "", auth.ErrUnauthenticated
	}

	userID, tokenCompanyID, err := a.jwtService.ValidateStreamToken(token)
	if err != nil || tokenCompanyID != companyID {
		return "", auth.ErrInvalidToken
	}

	if _, err := company.RequireAdmin(ctx, a.membershipRepo, userID, companyID); err != nil {
		return "", err
	}

	return userID, nil
}
