package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/inboxsweep/inboxsweep/api/middleware"
	"github.com/inboxsweep/inboxsweep/internal/enum"
	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
	"github.com/inboxsweep/inboxsweep/services"
)

// StreamProgress runs the cleanup for the caller's session and relays the
// engine's event stream over SSE. Closing the browser tab cancels the
// request context, which stops the engine after its in-flight batch.
func StreamProgress(s *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "StreamProgress", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")

		session, ok := middleware.GetSession(c)
		if !ok {
			streamError(c, "Session not found")
			return
		}
		tracing.TagSessionKey(span, session.Key)

		client, err := s.MailboxClientFor(ctx, session)
		if err != nil {
			tracing.TraceErr(span, err)
			streamError(c, "Not authenticated: "+err.Error())
			return
		}

		events, err := s.CleanupService.Run(ctx, session.Key, session.Plan, client)
		if err != nil {
			tracing.TraceErr(span, err)
			if errors.Is(err, ierrors.ErrRunInProgress) {
				streamError(c, "A cleanup is already running for this session")
			} else {
				streamError(c, err.Error())
			}
			return
		}

		c.Stream(func(w io.Writer) bool {
			event, open := <-events
			if !open {
				return false
			}
			c.SSEvent("message", event)
			return true
		})
	}
}

// streamError emits a single terminal error event in the stream's own format
// so the browser-side EventSource handles it like any other event.
func streamError(c *gin.Context, message string) {
	c.Status(http.StatusOK)
	c.SSEvent("message", models.ProgressEvent{
		Category: enum.EventError,
		Message:  message,
		Err:      message,
		Terminal: true,
	})
}
