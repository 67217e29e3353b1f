package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/songlens/enricher/internal/domain"
	"github.com/songlens/enricher/internal/infrastructure/httpclient"
	"github.com/songlens/enricher/internal/logging"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// API issues authenticated GETs against the Web API base URL
type API struct {
	client  *httpclient.Client
	tokens  domain.TokenProvider
	baseURL string
	logger  *zap.Logger
}

// NewAPI creates an authenticated Web API accessor
func NewAPI(client *httpclient.Client, tokens domain.TokenProvider, baseURL string, logger *zap.Logger) *API {
	return &API{
		client:  client,
		tokens:  tokens,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logging.OrNop(logger).Named("spotify"),
	}
}

// get fetches path with the run token. A 401 invalidates the token and the
// request is repeated once with a fresh one.
func (a *API) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	reqURL := a.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	token, err := a.tokens.Token(ctx)
	if err != nil {
		return gjson.Result{}, err
	}

	result, err := a.client.Get(ctx, reqURL, token)
	if !isUnauthorized(err) {
		return result, err
	}

	a.logger.Info("access token rejected, re-authenticating")
	a.tokens.Invalidate()

	token, err = a.tokens.Token(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	return a.client.Get(ctx, reqURL, token)
}

func isUnauthorized(err error) bool {
	var statusErr *httpclient.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized
}
