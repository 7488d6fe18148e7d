// Command heatmapd serves heatmap tiles and images over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/internal/config"
	"github.com/gogpu/heatmap/internal/logging"
	"github.com/gogpu/heatmap/internal/metrics"
	"github.com/gogpu/heatmap/internal/server"
	"github.com/gogpu/heatmap/internal/telemetry"
	"github.com/gogpu/heatmap/internal/valkey"
	"github.com/gogpu/heatmap/staticmap"
)

var version = "dev"

func main() {
	cfg, err := config.Load("heatmapd")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging, shared with the renderer
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Assets
	assets := heatmap.DefaultAssets()
	if cfg.Render.AssetsDir != "" {
		assets, err = heatmap.LoadAssets(os.DirFS(cfg.Render.AssetsDir))
		if err != nil {
			log.Fatalf("load assets: %v", err)
		}
	}
	renderer := heatmap.NewTileRenderer(assets, cfg.Render.EmptyTileCacheSize)

	deps := &server.Dependencies{
		Renderer:        renderer,
		Projection:      heatmap.NewMercator(cfg.Render.ProjectionCacheSize),
		DefaultPalette:  cfg.Render.Palette,
		ZoomOpaque:      cfg.Render.ZoomOpaque,
		ZoomTransparent: cfg.Render.ZoomTransparent,
		MaxSize:         cfg.Render.MaxSize,
		MaxPoints:       cfg.Server.MaxPoints,
		Workers:         cfg.Render.Workers,
		Version:         version,
	}

	// Base maps, cached in Valkey when enabled
	fetchOpts := []staticmap.FetcherOption{
		staticmap.WithBaseURL(cfg.StaticMap.BaseURL),
		staticmap.WithTimeout(time.Duration(cfg.StaticMap.Timeout) * time.Second),
		staticmap.WithObserver(metrics.StaticMap{}),
	}
	if cfg.StaticMap.Premium() {
		fetchOpts = append(fetchOpts, staticmap.WithCredentials(staticmap.Credentials{
			ClientID:   cfg.StaticMap.ClientID,
			SigningKey: cfg.StaticMap.SigningKey,
		}))
	}
	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			fetchOpts = append(fetchOpts, staticmap.WithCache(cache, cfg.Valkey.TTLDuration()))
			deps.Cache = cache
		}
	}
	deps.BaseMaps = staticmap.NewFetcher(fetchOpts...)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "heatmapd",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	server.SetupRoutes(app, deps, server.RouteConfig{
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      120,
	})

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("heatmap server starting", "addr", addr, "palette", cfg.Render.Palette)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
