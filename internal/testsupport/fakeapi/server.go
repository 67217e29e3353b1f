// Package fakeapi serves scripted iTunes and Spotify endpoints for tests.
package fakeapi

import (
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Credentials accepted by the token endpoint
const (
	ClientID     = "test-client"
	ClientSecret = "test-secret"
)

// Route names used by Requests
const (
	RouteToken         = "token"
	RouteSpotifySearch = "spotify_search"
	RouteFeatures      = "audio_features"
	RouteITunesSearch  = "itunes_search"
)

// Track is a catalog entry served by both search endpoints
type Track struct {
	ID          string
	Name        string
	Artist      string
	Album       string
	ImageURL    string
	ReleaseDate string
	DurationMs  int
	Explicit    bool
}

// Server is a scripted upstream. It is safe for concurrent use.
type Server struct {
	mu          sync.Mutex
	tracks      map[string]Track
	features    map[string]map[string]float64
	token       string
	tokens      int
	rejectAuth  bool
	expireFirst bool
	limited     map[string]int
	retryAfter  string
	requests    map[string]int

	server *httptest.Server
}

// New starts a fake upstream on a local port
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		tracks:   make(map[string]Track),
		features: make(map[string]map[string]float64),
		limited:  make(map[string]int),
		requests: make(map[string]int),
	}
	s.server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/token", s.countRequests(RouteToken), s.handleToken)

	v1 := router.Group("/v1")
	v1.Use(s.requireBearer())
	{
		v1.GET("/search", s.countRequests(RouteSpotifySearch), s.rateLimit(RouteSpotifySearch), s.handleSpotifySearch)
		v1.GET("/audio-features/:id", s.countRequests(RouteFeatures), s.rateLimit(RouteFeatures), s.handleFeatures)
	}

	router.GET("/itunes/search", s.countRequests(RouteITunesSearch), s.rateLimit(RouteITunesSearch), s.handleITunesSearch)

	return router
}

// Close shuts the server down
func (s *Server) Close() {
	s.server.Close()
}

// URL returns the server root
func (s *Server) URL() string {
	return s.server.URL
}

// TokenURL is the client-credentials endpoint
func (s *Server) TokenURL() string {
	return s.server.URL + "/api/token"
}

// SpotifyBaseURL is the Web API root
func (s *Server) SpotifyBaseURL() string {
	return s.server.URL + "/v1"
}

// ITunesBaseURL is the Search API root
func (s *Server) ITunesBaseURL() string {
	return s.server.URL + "/itunes"
}

// AddTrack registers t under its name for both search endpoints
func (s *Server) AddTrack(t Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[strings.ToLower(t.Name)] = t
}

// AddTrackAlias makes query resolve to t, for searches whose guess differs
// from the catalog title
func (s *Server) AddTrackAlias(query string, t Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks[strings.ToLower(query)] = t
}

// SetFeatures sets the audio-features body for a track ID
func (s *Server) SetFeatures(id string, features map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[id] = features
}

// RateLimitNext answers the next n requests on route with 429
func (s *Server) RateLimitNext(route string, n int, retryAfter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limited[route] = n
	s.retryAfter = retryAfter
}

// RejectCredentials makes the token endpoint answer 401
func (s *Server) RejectCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAuth = true
}

// ExpireFirstToken makes the first issued token fail with 401 on use
func (s *Server) ExpireFirstToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireFirst = true
}

// Requests returns how many requests reached route
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

func (s *Server) lookup(query string) (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tracks[strings.ToLower(strings.TrimSpace(query))]
	return t, ok
}
