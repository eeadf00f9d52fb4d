package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/inboxsweep/inboxsweep/api/handlers"
	"github.com/inboxsweep/inboxsweep/api/middleware"
	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
	"github.com/inboxsweep/inboxsweep/services"
)

func RegisterRoutes(ctx context.Context, r *gin.Engine, cfg *config.Config, s *services.Services) {
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SessionMiddleware(s.SessionStore))

	r.GET("/health", handlers.HealthCheck)

	r.GET("/", handlers.HomePage)
	r.POST("/start", handlers.StartCleanup(cfg, s))
	r.GET("/auth/callback", handlers.OAuthCallback(s))
	r.GET("/progress_page", handlers.ProgressPage)
	r.GET("/progress", handlers.StreamProgress(s))
	r.GET("/preview", handlers.Preview(s))
	r.POST("/undo", handlers.Undo(s))
}
