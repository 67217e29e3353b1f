package spotify

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/infrastructure/httpclient"
	"github.com/songlens/enricher/internal/logging"
	"go.uber.org/zap"
)

// Authenticator exchanges client credentials for a bearer token.
// The token is held for the current run only.
type Authenticator struct {
	client       *httpclient.Client
	tokenURL     string
	clientID     string
	clientSecret string
	logger       *zap.Logger

	mu    sync.Mutex
	token string
}

// NewAuthenticator creates a client-credentials token provider
func NewAuthenticator(client *httpclient.Client, tokenURL, clientID, clientSecret string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		client:       client,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       logging.OrNop(logger).Named("spotify.auth"),
	}
}

// Token returns the run's bearer token, fetching it on first use
func (a *Authenticator) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" {
		return a.token, nil
	}

	token, err := a.fetchToken(ctx)
	if err != nil {
		return "", err
	}
	a.token = token
	return token, nil
}

// Invalidate drops the held token so the next Token call re-authenticates
func (a *Authenticator) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = ""
}

func (a *Authenticator) fetchToken(ctx context.Context) (string, error) {
	credentials := base64.StdEncoding.EncodeToString([]byte(a.clientID + ":" + a.clientSecret))

	header := http.Header{}
	header.Set("Authorization", "Basic "+credentials)
	form := url.Values{"grant_type": {"client_credentials"}}

	result, err := a.client.PostForm(ctx, a.tokenURL, form, header)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		a.logger.Error("token request rejected", zap.Error(err))
		return "", fmt.Errorf("%w: %w", domain.ErrAuthFailed, err)
	}

	token := result.Get("access_token").String()
	if token == "" {
		return "", fmt.Errorf("%w: token response has no access_token", domain.ErrAuthFailed)
	}

	a.logger.Info("obtained access token", zap.Int64("expires_in", result.Get("expires_in").Int()))
	return token, nil
}
