package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// usernameKey is the gin context key holding the authenticated username.
const usernameKey = "username"

// RequirePage redirects unauthenticated browsers to the login page.
func (s *Server) RequirePage() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok, err := s.currentUser(c)
		if err != nil {
			s.logger.Error("Session lookup failed", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set(usernameKey, username)
		c.Next()
	}
}

// RequireAPI rejects unauthenticated API calls with 401.
func (s *Server) RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		username, ok, err := s.currentUser(c)
		if err != nil {
			s.logger.Error("Session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set(usernameKey, username)
		c.Next()
	}
}

// currentUser resolves the session cookie, if any.
func (s *Server) currentUser(c *gin.Context) (string, bool, error) {
	token, err := c.Cookie(s.cfg.Session.CookieName)
	if err != nil || token == "" {
		return "", false, nil
	}
	return s.deps.Sessions.Lookup(c.Request.Context(), token)
}

// requestLogger writes one structured access-log line per request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()))
	}
}
