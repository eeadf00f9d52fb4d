package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inboxsweep/inboxsweep/api/middleware"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
	"github.com/inboxsweep/inboxsweep/services"
)

const previewPageSize = 10

var previewHeaders = []string{"Subject", "From", "Date"}

// Preview lists the first few messages matching a query, annotated with the
// spam score. Read-only: nothing here mutates the mailbox.
func Preview(s *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "Preview", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		query := c.Query("query")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
			return
		}

		session, ok := middleware.GetSession(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session not found"})
			return
		}
		tracing.TagSessionKey(span, session.Key)

		client, err := s.MailboxClientFor(ctx, session)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		refs, _, err := client.List(ctx, query, previewPageSize, "")
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}

		previews := make([]models.MessagePreview, 0, len(refs))
		for _, ref := range refs {
			meta, err := client.GetMetadata(ctx, ref.ID, previewHeaders)
			if err != nil {
				tracing.TraceErr(span, err)
				meta = ref
			}
			if meta.Subject == "" {
				meta.Subject = "No Subject"
			}
			if meta.From == "" {
				meta.From = "Unknown"
			}

			isSpam, confidence, reason := s.SpamDetector.Score(meta.Subject, meta.From)
			previews = append(previews, models.MessagePreview{
				MessageRef:     meta,
				IsSpam:         isSpam,
				SpamConfidence: confidence,
				SpamReason:     reason,
			})
		}

		c.JSON(http.StatusOK, gin.H{"query": query, "messages": previews})
	}
}
