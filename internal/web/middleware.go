package web

import (
	"log/slog"
	"net/http"
	"time"

	"travelsnap/internal/explorer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "session_id"
	explorerKey   = "explorer"
)

// SessionMiddleware ties the request to its browser: it reads the session_id
// cookie, issuing a fresh one when it is missing or malformed, and puts the
// browser's explorer into the context.
func SessionMiddleware(browsers *Browsers) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookie)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sessionID, int(browsers.ttl.Seconds()), "/", "", false, true)

			slog.Debug("New browser session", "request_id", c.GetString("request_id"))
		}

		c.Set(explorerKey, browsers.Get(sessionID))
		c.Next()
	}
}

// explorerOf returns the explorer SessionMiddleware attached to c
func explorerOf(c *gin.Context) *explorer.Explorer {
	return c.MustGet(explorerKey).(*explorer.Explorer)
}

// RequireSessionMiddleware guards pages that need a login. Without a token
// in the browser's slot the visitor is sent to the login page with a notice.
func RequireSessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ui := &pageUI{}
		if explorerOf(c).RequireSession(c.Request.Context(), ui) {
			c.Next()
			return
		}

		slog.Debug("No session, redirecting to login",
			"path", c.Request.URL.Path,
			"request_id", c.GetString("request_id"),
		)
		redirect(c, ui, "/login")
		c.Abort()
	}
}

// HoverCORS allows map widgets on other local origins to query the hover
// endpoint. Only GET is exposed.
func HoverCORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Accept", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// RequestIDMiddleware generates a unique request ID for log correlation
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()
	}
}

// LoggingMiddleware logs every request with structured attributes
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rw := newResponseWriter(c.Writer)
		c.Writer = rw

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"request_id", c.GetString("request_id"),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency_ms", float64(latency.Milliseconds()),
			"client_ip", c.ClientIP(),
			"user_agent", c.Request.UserAgent(),
			"response_size", rw.Size(),
		}

		if query := c.Request.URL.RawQuery; query != "" {
			attrs = append(attrs, "query", query)
		}
		if action, exists := c.Get("action"); exists {
			attrs = append(attrs, "action", action)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.Error("Request failed - server error", attrs...)
		case status >= 400:
			slog.Warn("Request failed - client error", attrs...)
		default:
			slog.Info("Request completed", attrs...)
		}
	}
}
