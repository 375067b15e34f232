package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-scribe/sustainability-backend/internal/auth"
	"carbon-scribe/sustainability-backend/internal/config"
	"carbon-scribe/sustainability-backend/internal/metrics"
	"carbon-scribe/sustainability-backend/internal/sustainability"
)

// RouterDeps are the collaborators of the HTTP router
type RouterDeps struct {
	Security config.SecurityConfig
	Service  *sustainability.Service
	Metrics  *metrics.Recorder
	Health   func(ctx context.Context) map[string]string
	Logger   *zap.Logger
}

// Router builds the HTTP router of this app
func (a *App) Router() *gin.Engine {
	return NewRouter(RouterDeps{
		Security: a.Config.Security,
		Service:  a.Service,
		Metrics:  a.Metrics,
		Health:   a.Health,
		Logger:   a.Logger,
	})
}

// NewRouter registers the API, health and metrics routes
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(deps.Logger), cors())

	router.GET("/health", func(c *gin.Context) {
		failures := map[string]string{}
		if deps.Health != nil {
			failures = deps.Health(c.Request.Context())
		}
		status, code := "ok", http.StatusOK
		if len(failures) > 0 {
			status, code = "unavailable", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC(),
			"failures":  failures,
		})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if deps.Security.AuthEnabled {
		api.Use(auth.Middleware(deps.Security.JWTSecret, deps.Logger))
	}
	sustainability.NewHandler(deps.Service, deps.Logger).RegisterRoutes(api)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Archive-Location")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
