// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, authentication, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-crm-backend/internal/auth"
	"github.com/tbourn/go-crm-backend/internal/config"
	"github.com/tbourn/go-crm-backend/internal/http/handlers"
	"github.com/tbourn/go-crm-backend/internal/http/middleware"
	"github.com/tbourn/go-crm-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting, CORS
// and security headers, health and metrics endpoints, and then mounts the
// versioned API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter + gzip
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and Security headers
//
// The public surface is deliberately small: health, metrics, first-run setup,
// login, and the website lead-capture endpoint. Everything else requires a
// bearer token; user administration additionally requires the admin role.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction. The API authenticates with bearer
	// tokens only, so the built-in masks (Authorization, cookies) cover every
	// credential-bearing header this service sees.
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB) and response compression
	r.Use(limitBody(1 << 20))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
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
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
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

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db
	tokens := auth.Tokens{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	h := handlers.New(
		services.NewDealService(db),
		&services.LookupService{DB: db},
		services.NewCloseService(db),
		services.NewArchiveService(db),
		services.NewLeadService(db),
		services.NewUserService(db),
		tokens,
	)

	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)

	// Public: first-run setup, login, website lead capture
	api.GET("/auth/setup-status", h.SetupStatus)
	api.POST("/auth/setup", h.Setup)
	api.POST("/auth/login", h.Login)
	api.POST("/leads", h.CreateLead)

	// Authenticated API
	priv := api.Group("", middleware.RequireAuth(tokens))
	{
		// Identity
		priv.GET("/auth/me", h.Me)
		priv.POST("/auth/change-password", h.ChangePassword)

		// Deals
		priv.GET("/deals", h.ListDeals)
		priv.POST("/deals", h.CreateDeal)
		priv.GET("/deals/check-name", h.CheckDealName)
		priv.GET("/deals/:id", h.GetDeal)
		priv.PUT("/deals/:id", h.UpdateDeal)
		priv.DELETE("/deals/:id", h.DeleteDeal)

		// Stages and lookup lists
		priv.GET("/stages", h.ListStages)
		priv.POST("/stages", h.CreateStage)
		priv.PUT("/stages/:id", h.UpdateStage)
		priv.DELETE("/stages/:id", h.DeleteStage)
		priv.GET("/lists/:type", h.ListItems)
		priv.POST("/lists/:type", h.CreateItem)
		priv.PUT("/lists/:type/:id", h.UpdateItem)
		priv.DELETE("/lists/:type/:id", h.DeleteItem)

		// Month-close engine
		priv.GET("/close-month/status", h.CloseMonthStatus)
		priv.GET("/close-month/log", h.CloseMonthLog)
		priv.POST("/close-month", h.CloseMonth)
		priv.POST("/update-prior-month", h.UpdatePriorMonth)
		priv.GET("/snapshots", h.ListSnapshots)

		// Archive
		priv.GET("/archived-deals", h.ListArchivedDeals)
		priv.POST("/archived-deals", h.ImportArchivedDeal)
		priv.PUT("/archived-deals/:id", h.UpdateArchivedDeal)
		priv.DELETE("/archived-deals/:id", h.DeleteArchivedDeal)
		priv.POST("/archived-deals/:id/restore", h.RestoreArchivedDeal)

		// Leads (triage)
		priv.GET("/leads", h.ListLeads)
		priv.PUT("/leads/:id/status", h.UpdateLeadStatus)
		priv.DELETE("/leads/:id", h.DeleteLead)

		// User administration (admin only)
		admin := priv.Group("/users", middleware.RequireAdmin())
		{
			admin.GET("", h.ListUsers)
			admin.POST("", h.CreateUser)
			admin.PUT("/:id/disabled", h.SetUserDisabled)
			admin.POST("/:id/reset-password", h.ResetUserPassword)
			admin.DELETE("/:id", h.DeleteUser)
		}
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
