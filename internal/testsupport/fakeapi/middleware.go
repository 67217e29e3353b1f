package fakeapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// countRequests tallies every request that reaches route
func (s *Server) countRequests(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.requests[route]++
		s.mu.Unlock()
		c.Next()
	}
}

// rateLimit answers 429 while scripted rejections remain for route
func (s *Server) rateLimit(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		remaining := s.limited[route]
		if remaining > 0 {
			s.limited[route] = remaining - 1
		}
		retryAfter := s.retryAfter
		s.mu.Unlock()

		if remaining > 0 {
			if retryAfter != "" {
				c.Header("Retry-After", retryAfter)
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{"status": 429, "message": "API rate limit exceeded"}})
			return
		}
		c.Next()
	}
}

// requireBearer rejects requests without the current token
func (s *Server) requireBearer() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")

		s.mu.Lock()
		valid := token != "" && token == s.token
		s.mu.Unlock()

		if !valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"status": 401, "message": "The access token expired"}})
			return
		}
		c.Next()
	}
}
