package fakeapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleToken(c *gin.Context) {
	id, secret, ok := c.Request.BasicAuth()
	if c.PostForm("grant_type") != "client_credentials" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectAuth || !ok || id != ClientID || secret != ClientSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_client"})
		return
	}

	s.tokens++
	issued := fmt.Sprintf("token-%d", s.tokens)
	// an expired first token is handed out but never accepted
	if !(s.expireFirst && s.tokens == 1) {
		s.token = issued
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": issued,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (s *Server) handleSpotifySearch(c *gin.Context) {
	t, ok := s.lookup(c.Query("q"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"tracks": gin.H{"items": []gin.H{}, "total": 0}})
		return
	}

	images := []gin.H{}
	if t.ImageURL != "" {
		images = append(images, gin.H{"url": t.ImageURL, "height": 640, "width": 640})
	}

	item := gin.H{
		"id":       t.ID,
		"name":     t.Name,
		"artists":  []gin.H{{"name": t.Artist}},
		"album":    gin.H{"name": t.Album, "images": images, "release_date": t.ReleaseDate},
		"explicit": t.Explicit,
	}
	if t.DurationMs > 0 {
		item["duration_ms"] = t.DurationMs
	}

	c.JSON(http.StatusOK, gin.H{"tracks": gin.H{"items": []gin.H{item}, "total": 1}})
}

func (s *Server) handleFeatures(c *gin.Context) {
	id := c.Param("id")

	s.mu.Lock()
	features, ok := s.features[id]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"status": 404, "message": "analysis not found"}})
		return
	}

	body := gin.H{"id": id, "type": "audio_features"}
	for name, value := range features {
		body[name] = value
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleITunesSearch(c *gin.Context) {
	t, ok := s.lookup(c.Query("term"))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"resultCount": 0, "results": []gin.H{}})
		return
	}

	explicitness := "notExplicit"
	if t.Explicit {
		explicitness = "explicit"
	}

	result := gin.H{
		"wrapperType":       "track",
		"kind":              "song",
		"trackName":         t.Name,
		"artistName":        t.Artist,
		"collectionName":    t.Album,
		"artworkUrl100":     t.ImageURL,
		"trackExplicitness": explicitness,
	}
	if t.ReleaseDate != "" {
		result["releaseDate"] = t.ReleaseDate
	}
	if t.DurationMs > 0 {
		result["trackTimeMillis"] = t.DurationMs
	}
	if numericID, err := strconv.ParseInt(t.ID, 10, 64); err == nil {
		result["trackId"] = numericID
	}

	c.JSON(http.StatusOK, gin.H{"resultCount": 1, "results": []gin.H{result}})
}
