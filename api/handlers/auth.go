package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/inboxsweep/inboxsweep/api/middleware"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
	"github.com/inboxsweep/inboxsweep/services"
)

// OAuthCallback finishes the authorization handshake: it validates the
// anti-forgery state, trades the code for a token, and stores the token on
// the session. Broken sessions land back on the home page.
func OAuthCallback(s *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "OAuthCallback", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		session, ok := middleware.GetSession(c)
		if !ok {
			c.Redirect(http.StatusFound, "/")
			return
		}
		tracing.TagSessionKey(span, session.Key)

		state := c.Query("state")
		if state == "" || state != session.OAuthState {
			tracing.TraceErr(span, errors.New("oauth state mismatch"))
			c.Redirect(http.StatusFound, "/")
			return
		}

		code := c.Query("code")
		if code == "" {
			tracing.TraceErr(span, errors.New("oauth callback without code"))
			c.Redirect(http.StatusFound, "/")
			return
		}

		token, err := s.CredentialProvider.Exchange(ctx, code)
		if err != nil {
			tracing.TraceErr(span, err)
			c.Redirect(http.StatusFound, "/")
			return
		}

		err = s.SessionStore.Update(ctx, session.Key, func(sess *models.Session) {
			sess.Token = token
			sess.OAuthState = ""
		})
		if err != nil {
			tracing.TraceErr(span, err)
			c.Redirect(http.StatusFound, "/")
			return
		}

		c.Redirect(http.StatusFound, "/progress_page")
	}
}
