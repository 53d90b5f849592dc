package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/scrapedesk/cache"
	"github.com/use-agent/scrapedesk/config"
)

// SessionKey is the gin context key holding the caller's *cache.Session.
const SessionKey = "session"

// Session attaches the caller's page session, creating one (and setting the
// cookie) when the request carries no live session id.
func Session(sessions *cache.Cache, cfg config.SessionConfig) gin.HandlerFunc {
	maxAge := int(cfg.TTL / time.Second)

	return func(c *gin.Context) {
		id, _ := c.Cookie(cfg.CookieName)

		s, _ := sessions.GetOrCreate(id)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, s.ID, maxAge, "/", "", false, true)
		c.Set(SessionKey, s)
		c.Next()
	}
}

// SessionFrom returns the session attached by Session.
func SessionFrom(c *gin.Context) *cache.Session {
	return c.MustGet(SessionKey).(*cache.Session)
}
