// Package httpapi wires the HTTP transport (Gin) to the services, middleware
// and route handlers of the medication robot API.
//
// Middleware order:
//  1. OpenTelemetry
//  2. RequestID
//  3. RedactingLogger (access log + request-scoped logger)
//  4. Recovery
//  5. Body size limit
//  6. Metrics
//  7. Idempotency validator (before rate limiting so replays bypass it)
//  8. Rate limiter
//  9. CORS, gzip and security headers
package httpapi

import (
	"context"
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

	_ "github.com/tbourn/go-med-robot/docs"
	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/config"
	"github.com/tbourn/go-med-robot/internal/http/handlers"
	"github.com/tbourn/go-med-robot/internal/http/middleware"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/services"
)

const maxBodyBytes = 1 << 20

var corsHeaders = []string{
	"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match",
	middleware.HeaderUserID, middleware.HeaderIdempotencyKey, middleware.HeaderRobotToken,
}

var exposedHeaders = []string{
	"X-Request-ID", "Content-Length", "ETag", "Content-Disposition", middleware.HeaderIdempotencyReplayed,
}

// Deps are the collaborators the router cannot build from the database
// alone.
type Deps struct {
	DB    *gorm.DB
	Robot handlers.CycleRunner
	// Clock drives services and idempotency lookups; nil means system time.
	Clock clock.Clock
}

// RegisterRoutes attaches middleware and endpoints to r.
func RegisterRoutes(r *gin.Engine, d Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	clk := d.Clock
	if clk == nil {
		clk = clock.System{}
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200, Now: clk.Now},
		func(ctx context.Context, actor, medicationID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, d.DB, actor, medicationID, key, now)
			return err == nil && rec != nil, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByActorOrIP(), "/health", "/metrics")
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{"/metrics"}),
		gzip.WithExcludedPathsRegexs([]string{`.*/history/export$`}),
	))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      true,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", health(d.DB))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Deps{
		Patients:    &services.PatientService{DB: d.DB},
		Medications: &services.MedicationService{DB: d.DB, Clock: clk},
		Doses: &services.DoseService{
			DB:             d.DB,
			Clock:          clk,
			LowStockUnits:  cfg.Robot.LowStockUnits,
			IdempotencyTTL: cfg.IdempotencyTTL,
		},
		History:       &services.HistoryService{DB: d.DB, Location: cfg.Robot.Location},
		Robot:         d.Robot,
		LowStockUnits: cfg.Robot.LowStockUnits,
		Clock:         clk,
	})

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/patients", h.CreatePatient)
		api.GET("/patients", h.ListPatients)
		api.GET("/patients/:id", h.GetPatient)
		api.PUT("/patients/:id", h.UpdatePatient)
		api.DELETE("/patients/:id", h.DeletePatient)
		api.POST("/patients/:id/medications", h.CreateMedication)
		api.GET("/patients/:id/medications", h.ListMedications)
		api.GET("/patients/:id/history", h.ListHistory)
		api.GET("/patients/:id/history/export", h.ExportHistory)

		api.GET("/medications/:id", h.GetMedication)
		api.PUT("/medications/:id", h.UpdateMedication)
		api.DELETE("/medications/:id", h.DeleteMedication)
		api.POST("/medications/:id/pause", h.PauseMedication)
		api.POST("/medications/:id/resume", h.ResumeMedication)
		api.POST("/medications/:id/doses/ad-hoc", h.AdHocDose)
		api.POST("/medications/:id/doses/return", h.ReturnDose)
		api.PUT("/medications/:id/stock", h.AdjustStock)

		if d.Robot != nil {
			api.POST("/robot/cycles",
				middleware.RequireToken(middleware.HeaderRobotToken, cfg.Robot.TriggerToken),
				h.RunCycle)
		}
	}
}

// corsMiddleware allows every origin when none are configured. With an
// allowlist, matching origins are echoed even on requests gin-contrib/cors
// would skip.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     corsHeaders,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					c.Writer.Header().Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// health reports liveness plus database reachability.
func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			err = sqlDB.PingContext(ctx)
			cancel()
		}
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("health: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
	}
}

// limitBody caps request bodies at maxBytes.
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
