// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture for the Mini App
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/edupay/go-course-backend/internal/auth"
	"github.com/edupay/go-course-backend/internal/config"
	"github.com/edupay/go-course-backend/internal/http/handlers"
	"github.com/edupay/go-course-backend/internal/http/middleware"
	"github.com/edupay/go-course-backend/internal/services"
	"github.com/edupay/go-course-backend/internal/storage"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with credential and PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (sized for multipart material uploads)
//  6. Metrics
//  7. Rate limiter (per client IP)
//  8. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, blob storage.BlobStore, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. The init data header carries a
	// signed credential and is fully masked.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Telegram-Init-Data"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit: the largest legal request is a material
	// upload plus multipart framing.
	r.Use(limitBody(cfg.Upload.MaterialMaxBytes + 1<<20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps
		// tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Telegram-Init-Data"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Telegram-Init-Data"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: gate and services ← config/db/blob
	gate := auth.NewGate(cfg.Telegram.BotToken, cfg.Telegram.AdminIDs,
		auth.WithMaxAge(cfg.Telegram.AuthMaxAge))
	regSvc := &services.RegistrationService{
		DB:              db,
		Blob:            blob,
		ReceiptBucket:   cfg.Storage.ReceiptBucket,
		ReceiptMaxBytes: cfg.Upload.ReceiptMaxBytes,
	}
	statusSvc := &services.StatusService{DB: db}
	matSvc := &services.MaterialService{
		DB:             db,
		Blob:           blob,
		MaterialBucket: cfg.Storage.MaterialBucket,
		FileMaxBytes:   cfg.Upload.MaterialMaxBytes,
	}
	annSvc := &services.AnnouncementService{DB: db}
	h := handlers.New(gate, regSvc, statusSvc, matSvc, annSvc, cfg.EchoStoreErrors)

	// List responses compress well; mutation endpoints are left alone.
	gz := gzip.Gzip(gzip.DefaultCompression)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Registration and profile
		api.POST("/register", h.Register)
		api.POST("/me", h.Me)

		// Status
		api.POST("/status", h.UpdateStatus)

		// Announcements
		api.GET("/announcements", gz, h.ListAnnouncements)
		api.POST("/announcements", h.PostAnnouncement)

		// Course materials
		api.GET("/materials", gz, h.ListMaterials)
		api.POST("/materials", h.CreateMaterial)
		api.DELETE("/materials/:id", h.DeleteMaterial)

		// Admin
		api.GET("/admin/users", gz, h.ListUsers)
		api.PATCH("/admin/users/:id/status", h.ReviewUser)
	}
}

// limitBody returns a Gin middleware that caps the request body size using
// http.MaxBytesReader. Requests exceeding the cap will cause downstream body
// reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
