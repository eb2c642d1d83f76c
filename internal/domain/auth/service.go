package auth

import "context"

type AuthService interface {
	// LoginWithLIFF trades a LIFF access token for a session token
	LoginWithLIFF(ctx context.Context, req LIFFLoginRequest) (TokenResponse, error)
	// LineLoginURL returns the LINE Login redirect and the state to pin in a cookie
	LineLoginURL(ctx context.Context) (redirectURL string, state string, err error)
	// LoginWithLineCode completes the LINE Login code flow
	LoginWithLineCode(ctx context.Context, req LineCallbackRequest) (TokenResponse, error)
	// IssueStreamToken issues a short-lived token for the admin event stream
	IssueStreamToken(ctx context.Context, userID string, companyID string) (StreamTokenResponse, error)
	// AuthorizeStream validates a stream token for companyID and returns its user
	// once admin membership is confirmed again
	AuthorizeStream(ctx context.Context, token string, companyID string) (userID string, err error)
}
