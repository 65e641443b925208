package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/profile-setup/internal/config"
	"github.com/stemsi/profile-setup/internal/handler"
	"github.com/stemsi/profile-setup/internal/middleware"
	"github.com/stemsi/profile-setup/internal/render"
	"github.com/stemsi/profile-setup/internal/response"
)

const assetMaxAge = 24 * 60 * 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Page *handler.PageHandler
	View *handler.ViewHandler
	WS   *handler.WSHandler
	// SubmitLimiter guards the submit routes. It should be the limiter
	// handed to the WebSocket handler so every submit path shares a budget.
	SubmitLimiter *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.SetHTMLTemplate(render.Templates())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())

	submitLimiter := handlers.SubmitLimiter
	if submitLimiter == nil {
		submitLimiter = middleware.NewRateLimiter(cfg.SubmitRateLimit, time.Minute)
	}

	// Embedded static assets.
	assets := router.Group("/assets")
	assets.Use(middleware.CacheControl(assetMaxAge))
	{
		assets.StaticFS("/", http.FS(render.Assets()))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Pages ──────────────────────────────────────────────────────
	pages := router.Group("")
	pages.Use(middleware.NoStore())
	{
		pages.GET("/", handlers.Page.NewPage)
		pages.GET("/views/:id", handlers.Page.ShowPage)
		pages.GET("/views/:id/status", handlers.Page.ShowStatus)
		pages.POST("/views/:id/submit", submitLimiter.Middleware(), handlers.Page.SubmitForm)
	}

	// ─── 2. JSON API ───────────────────────────────────────────────────
	api := router.Group("/api/v1/views")
	{
		api.POST("", handlers.View.CreateView)
		api.GET("/:id", handlers.View.GetView)
		api.PUT("/:id/fields", handlers.View.SetField)
		api.POST("/:id/submit", submitLimiter.Middleware(), handlers.View.Submit)
		api.DELETE("/:id", handlers.View.DeleteView)
	}

	// ─── 3. WebSocket ──────────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/views/:id/stream", handlers.WS.ViewStream)
	}

	return router
}
