package spotify

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/songlens/enricher/internal/infrastructure/cache"
	"github.com/songlens/enricher/internal/infrastructure/httpclient"
)

// newTestAPI wires an API against server with a fixed client id/secret
func newTestAPI(t *testing.T, server *httptest.Server) (*API, *Authenticator) {
	t.Helper()
	client := httpclient.New(httpclient.Config{Timeout: 2 * time.Second, MaxAttempts: 2, DefaultRetryAfter: time.Millisecond}, nil)
	auth := NewAuthenticator(client, server.URL+"/api/token", "client-id", "client-secret", nil)
	return NewAPI(client, auth, server.URL+"/v1", nil), auth
}

// tokenHandler answers client-credential exchanges with the given token
func tokenHandler(token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"` + token + `","token_type":"Bearer","expires_in":3600}`))
	}
}

func newTestCache() *cache.MemoryCache {
	return cache.NewMemoryCache()
}
