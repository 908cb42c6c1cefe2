// Package jwtmw signs the session cookie and attaches the session principal to requests.
package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"recipebook/internal/feature/auth/domain/entity"
)

const (
	// CookieName is the name of the session cookie.
	CookieName = "session"
	// ContextSession is the gin context key holding the entity.SessionState.
	ContextSession = "session"
	// ContextSessionID is the gin context key holding the raw session ID.
	ContextSessionID = "sessionID"
	// LoginPath is where unauthenticated requests are redirected.
	LoginPath = "/login"
)

// SessionResolver maps a session ID to the request principal.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (entity.SessionState, error)
}

// LoadSession returns a middleware that reads the session cookie, verifies
// it and stores the resolved entity.SessionState in the context.
// Requests without a valid cookie continue as anonymous.
func LoadSession(signer Signer, resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		state := entity.Anonymous()

		if raw, err := c.Cookie(CookieName); err == nil && raw != "" {
			sessionID, err := signer.Parse(raw)
			if err != nil {
				slog.Debug("rejected session cookie", "error", err, "remote_addr", c.ClientIP())
			} else {
				resolved, err := resolver.Resolve(c.Request.Context(), sessionID)
				if err != nil {
					slog.Error("failed to resolve session", "error", err)
				} else {
					state = resolved
					if state.Authenticated {
						c.Set(ContextSessionID, sessionID)
					}
				}
			}
		}

		c.Set(ContextSession, state)
		c.Next()
	}
}

// AuthRequired returns a middleware that redirects anonymous requests to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession returns the principal attached by LoadSession, or an anonymous state.
func CurrentSession(c *gin.Context) entity.SessionState {
	if v, ok := c.Get(ContextSession); ok {
		if state, ok := v.(entity.SessionState); ok {
			return state
		}
	}
	return entity.Anonymous()
}

// CurrentSessionID returns the raw session ID of an authenticated request.
func CurrentSessionID(c *gin.Context) string {
	return c.GetString(ContextSessionID)
}

// SetSessionCookie writes the signed session cookie.
func SetSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie on the client.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
