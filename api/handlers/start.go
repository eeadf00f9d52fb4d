package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inboxsweep/inboxsweep/api/middleware"
	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
	"github.com/inboxsweep/inboxsweep/services"
	"github.com/inboxsweep/inboxsweep/services/cleanup"
)

// startForm mirrors the HTML form: checkboxes arrive as "on" or are absent,
// so everything binds as a string and is folded to booleans here.
type startForm struct {
	Unread     string `form:"unread"`
	Promotions string `form:"promotions"`
	Social     string `form:"social"`
	Updates    string `form:"updates"`
	Age        string `form:"age"`
	Restore    string `form:"restore"`
	SpamDetect string `form:"spam_detect"`
}

// StartCleanup builds the cleanup plan from the submitted filters, creates
// the session, and sends the browser into the OAuth handshake (or straight
// to the progress page when the IMAP backend needs no handshake).
func StartCleanup(cfg *config.Config, s *services.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), "StartCleanup", c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		var form startForm
		if err := c.ShouldBind(&form); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		selection := models.FilterSelection{
			Unread:     form.Unread != "",
			Promotions: form.Promotions != "",
			Social:     form.Social != "",
			Updates:    form.Updates != "",
			Age:        form.Age,
			Restore:    form.Restore != "",
			SpamDetect: form.SpamDetect != "",
		}

		plan := cleanup.BuildPlan(selection, cfg.CleanupConfig)
		session := &models.Session{Plan: plan}

		redirect := "/progress_page"
		if s.AuthRequired() {
			url, state := s.CredentialProvider.AuthorizationURL()
			session.OAuthState = state
			redirect = url
		}

		key, err := s.SessionStore.Create(ctx, session)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		maxAge := int(cfg.CleanupConfig.SessionTTL.Seconds())
		c.SetCookie(middleware.SessionCookieName, key, maxAge, "/", "", true, true)
		c.Redirect(http.StatusFound, redirect)
	}
}
