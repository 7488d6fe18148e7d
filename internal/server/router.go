package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"

	"github.com/gogpu/heatmap/internal/metrics"
)

// RouteConfig tunes the middleware stack.
type RouteConfig struct {
	RequestTimeout time.Duration
	RateLimit      int // requests per minute per IP; 0 disables limiting
}

// SetupRoutes registers the render API.
func SetupRoutes(app *fiber.App, deps *Dependencies, rc RouteConfig) {
	if rc.RequestTimeout <= 0 {
		rc.RequestTimeout = 20 * time.Second
	}

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// JSON responses only; PNG bodies are already deflated.
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() != fiber.MethodGet
		},
	}))

	app.Use(requestid.New())
	app.Use(TracingMiddleware())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if rc.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rc.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Health & readiness (no timeout)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/palettes", PalettesHandler(deps))
	v1.Post("/heatmap", timeout.NewWithContext(RenderHandler(deps), rc.RequestTimeout))
	v1.Post("/tiles/:z/:x/:y", timeout.NewWithContext(TileHandler(deps), rc.RequestTimeout))
}
