package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/inboxsweep/inboxsweep/interfaces"
	"github.com/inboxsweep/inboxsweep/internal/models"
)

// SessionCookieName carries the opaque session key. The cookie is the only
// place the key ever travels.
const SessionCookieName = "session_id"

const contextKeySession = "inboxsweep_session"

// SessionMiddleware resolves the session cookie into the stored session and
// attaches it to the request context. Missing or unknown cookies are not an
// error here; handlers decide whether a session is required.
func SessionMiddleware(store interfaces.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(SessionCookieName)
		if err == nil && key != "" {
			if session, err := store.Get(c.Request.Context(), key); err == nil {
				c.Set(contextKeySession, session)
			}
		}
		c.Next()
	}
}

// GetSession returns the session attached by SessionMiddleware, if any.
func GetSession(c *gin.Context) (*models.Session, bool) {
	v, ok := c.Get(contextKeySession)
	if !ok {
		return nil, false
	}
	session, ok := v.(*models.Session)
	return session, ok
}
