package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/judiguard/judi_guard_server/internal/model"
)

var (
	// ErrNotConnected means the user never linked a YouTube account or
	// the link was severed.
	ErrNotConnected = errors.New("youtube: account not connected")

	// ErrTokenRefresh means the stored refresh token no longer works,
	// usually because the user revoked access in their Google account.
	// Stored credentials are cleared; the user must re-link.
	ErrTokenRefresh = errors.New("youtube: failed to refresh access token, please reconnect your account")
)

// TokenStore persists OAuth credentials for a user. Implemented by the
// user repository.
type TokenStore interface {
	SaveYouTubeTokens(ctx context.Context, userID int64, accessToken, refreshToken string, expiresAt time.Time) error
	ClearYouTubeTokens(ctx context.Context, userID int64) error
}

// Factory builds per-user API clients whose credentials refresh
// transparently and persist back to storage.
type Factory struct {
	oauthConfig *oauth2.Config
	store       TokenStore
	timeout     time.Duration
	opts        []Option
}

func NewFactory(oauthConfig *oauth2.Config, store TokenStore, timeoutSeconds int, opts ...Option) *Factory {
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Factory{
		oauthConfig: oauthConfig,
		store:       store,
		timeout:     timeout,
		opts:        opts,
	}
}

// ClientForUser returns an API client authenticated as the given user,
// or ErrNotConnected when no YouTube link exists.
func (f *Factory) ClientForUser(ctx context.Context, user *model.User) (*Client, error) {
	if user == nil || !user.YouTubeConnected() {
		return nil, ErrNotConnected
	}

	token := &oauth2.Token{
		AccessToken: *user.YouTubeAccessToken,
	}
	if user.YouTubeRefreshToken != nil {
		token.RefreshToken = *user.YouTubeRefreshToken
	}
	if user.YouTubeTokenExpiresAt != nil {
		token.Expiry = *user.YouTubeTokenExpiresAt
	}

	src := &persistingTokenSource{
		userID: user.ID,
		store:  f.store,
		base:   f.oauthConfig.TokenSource(ctx, token),
		last:   token,
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: src},
		Timeout:   f.timeout,
	}
	return NewClient(httpClient, f.opts...), nil
}

// persistingTokenSource wraps the oauth2 refresh flow: a refreshed token
// is written back to storage so the next run keeps working, and a failed
// refresh severs the link.
type persistingTokenSource struct {
	userID int64
	store  TokenStore

	mu   sync.Mutex
	base oauth2.TokenSource
	last *oauth2.Token
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		// Revoked access: stale credentials are useless, drop them.
		if clearErr := s.store.ClearYouTubeTokens(context.Background(), s.userID); clearErr != nil {
			return nil, fmt.Errorf("%w (and failed to clear stored tokens: %v)", ErrTokenRefresh, clearErr)
		}
		return nil, ErrTokenRefresh
	}

	if token.AccessToken != s.last.AccessToken {
		refreshToken := token.RefreshToken
		if refreshToken == "" {
			refreshToken = s.last.RefreshToken
		}
		if err := s.store.SaveYouTubeTokens(context.Background(), s.userID, token.AccessToken, refreshToken, token.Expiry); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
		s.last = token
	}

	return token, nil
}
