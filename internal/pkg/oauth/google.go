package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/judiguard/judi_guard_server/config"
)

// ScopeYouTubeForceSSL grants full comment management, including deletion
// of third-party comments on the channel owner's videos.
const ScopeYouTubeForceSSL = "https://www.googleapis.com/auth/youtube.force-ssl"

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleOAuth wraps the two Google authorization flows the app runs:
// plain sign-in and YouTube account linking.
type GoogleOAuth struct {
	signinConfig  *oauth2.Config
	youtubeConfig *oauth2.Config
}

func NewGoogleOAuth(cfg *config.GoogleOAuthConfig) *GoogleOAuth {
	return &GoogleOAuth{
		signinConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.SigninRedirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		youtubeConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.YouTubeRedirectURI,
			Scopes:       []string{ScopeYouTubeForceSSL},
			Endpoint:     google.Endpoint,
		},
	}
}

// GetSigninAuthURL builds the consent URL for the sign-in flow.
func (g *GoogleOAuth) GetSigninAuthURL(state string) string {
	return g.signinConfig.AuthCodeURL(state)
}

// GetYouTubeAuthURL builds the consent URL for YouTube linking. Offline
// access with forced consent guarantees Google returns a refresh token,
// which the analysis worker needs long after the user's session ends.
func (g *GoogleOAuth) GetYouTubeAuthURL(state string) string {
	return g.youtubeConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// ExchangeSignin trades a sign-in authorization code for a token.
func (g *GoogleOAuth) ExchangeSignin(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.signinConfig.Exchange(ctx, code)
}

// ExchangeYouTube trades a YouTube-linking authorization code for a token.
func (g *GoogleOAuth) ExchangeYouTube(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.youtubeConfig.Exchange(ctx, code)
}

// YouTubeConfig exposes the linking config so the YouTube client can build
// refreshing token sources from stored credentials.
func (g *GoogleOAuth) YouTubeConfig() *oauth2.Config {
	return g.youtubeConfig
}

// GetUser fetches the Google profile for a sign-in token.
func (g *GoogleOAuth) GetUser(ctx context.Context, token *oauth2.Token) (*GoogleUser, error) {
	client := g.signinConfig.Client(ctx, token)

	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("google api error: %s", string(body))
	}

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &user, nil
}
