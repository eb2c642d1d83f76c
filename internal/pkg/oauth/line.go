package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"
)

const (
	lineAuthURL   = "https://access.line.me/oauth2/v2.1/authorize"
	lineTokenURL  = "https://api.line.me/oauth2/v2.1/token"
	lineAPIBase   = "https://api.line.me"
	profilePath   = "/v2/profile"
	verifyPath    = "/oauth2/v2.1/verify"
	stateByteSize = 32
)

var ErrChannelMismatch = errors.New("access token was not issued for this channel")

type LineService interface {
	// GenerateState generates a random state string for the login redirect.
	GenerateState() (string, error)
	// RedirectURL builds the LINE Login authorization URL.
	RedirectURL(state string) string
	// VerifyCode exchanges an authorization code for a token.
	VerifyCode(ctx context.Context, code string) (*oauth2.Token, error)
	// VerifyAccessToken checks that a LIFF access token belongs to the login channel.
	VerifyAccessToken(ctx context.Context, accessToken string) error
	// Profile fetches the LINE profile the token was issued for.
	Profile(ctx context.Context, token *oauth2.Token) (LineProfile, error)
}

type LineProfile struct {
	UserID        string `json:"userId"`
	DisplayName   string `json:"displayName"`
	PictureURL    string `json:"pictureUrl"`
	StatusMessage string `json:"statusMessage"`
}

type lineServiceImpl struct {
	config  *oauth2.Config
	apiBase string
}

func NewLineService(channelID string, channelSecret string, redirectURL string, scopes []string) LineService {
	return newLineService(channelID, channelSecret, redirectURL, scopes, lineAPIBase)
}

func newLineService(channelID, channelSecret, redirectURL string, scopes []string, apiBase string) *lineServiceImpl {
	return &lineServiceImpl{
		config: &oauth2.Config{
			ClientID:     channelID,
			ClientSecret: channelSecret,
			RedirectURL:  redirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   lineAuthURL,
				TokenURL:  lineTokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBase: apiBase,
	}
}

func (l *lineServiceImpl) GenerateState() (string, error) {
	b := make([]byte, stateByteSize)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (l *lineServiceImpl) RedirectURL(state string) string {
	return l.config.AuthCodeURL(state)
}

func (l *lineServiceImpl) VerifyCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := l.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

type verifyResponse struct {
	ClientID  string `json:"client_id"`
	ExpiresIn int64  `json:"expires_in"`
	Scope     string `json:"scope"`
}

func (l *lineServiceImpl) VerifyAccessToken(ctx context.Context, accessToken string) error {
	endpoint := l.apiBase + verifyPath + "?" + url.Values{"access_token": {accessToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to verify access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("access token verification failed with status %d", resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode verify response: %w", err)
	}
	if body.ClientID != l.config.ClientID {
		return ErrChannelMismatch
	}
	if body.ExpiresIn <= 0 {
		return errors.New("access token expired")
	}
	return nil
}

func (l *lineServiceImpl) Profile(ctx context.Context, token *oauth2.Token) (LineProfile, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(l.apiBase + profilePath)
	if err != nil {
		return LineProfile{}, fmt.Errorf("failed to fetch profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return LineProfile{}, fmt.Errorf("profile request failed with status %d", resp.StatusCode)
	}

	var profile LineProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return LineProfile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	if profile.UserID == "" {
		return LineProfile{}, errors.New("profile response has no userId")
	}

	return profile, nil
}
