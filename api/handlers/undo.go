package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inboxsweep/inboxsweep/api/middleware"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
	"github.com/inboxsweep/inboxsweep/services"
)

// Undo restores the previous run's deletions. Idempotent: a second call with
// no new run since reports nothing to restore.
func Undo(s *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "Undo", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		session, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false, "restored_count": 0, "message": "session not found",
			})
			return
		}
		tracing.TagSessionKey(span, session.Key)

		client, err := s.MailboxClientFor(ctx, session)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false, "restored_count": 0, "message": err.Error(),
			})
			return
		}

		restored, message, err := s.CleanupService.RestoreLast(ctx, session.Key, client)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false, "restored_count": 0, "message": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"restored_count": restored,
			"message":        message,
		})
	}
}
