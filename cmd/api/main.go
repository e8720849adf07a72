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
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/fieldops/internal/adapters/http"
	natsadapter "github.com/samirrijal/fieldops/internal/adapters/nats"
	"github.com/samirrijal/fieldops/internal/adapters/postgres"
	"github.com/samirrijal/fieldops/internal/adapters/valkey"
	"github.com/samirrijal/fieldops/internal/app"
	"github.com/samirrijal/fieldops/internal/core/ports"
	"github.com/samirrijal/fieldops/internal/pkg/config"
	"github.com/samirrijal/fieldops/internal/pkg/logging"
	"github.com/samirrijal/fieldops/internal/pkg/metrics"
	"github.com/samirrijal/fieldops/internal/pkg/telemetry"
	"github.com/samirrijal/fieldops/internal/workflows"
)

func main() {
	cfg, err := config.Load("fieldops-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	var cache *valkey.Cache
	var mapCache ports.CacheService
	if !cfg.Valkey.Disabled {
		if cache, err = valkey.New(cfg.Valkey.Addr); err != nil {
			slog.Warn("valkey unavailable, map cache disabled", "error", err)
			cache = nil
		} else {
			defer cache.Close()
			mapCache = cache
		}
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	svc, err := app.NewServices(db, events, mapCache, cfg.Valkey.MapTTL)
	if err != nil {
		log.Fatalf("services: %v", err)
	}

	// Location events from any replica invalidate the dashboard cache
	if mapCache != nil && events != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "fieldops-api")
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := sub.SubscribeLocationEvents(ctx, svc.Map.HandleLocationEvent); err != nil {
				slog.Warn("subscribe location events failed", "error", err)
			}
		}
	}

	deps := &http.Dependencies{
		Customers:  svc.Customers,
		Orders:     svc.Orders,
		Pickings:   svc.Pickings,
		Checklists: svc.Checklists,
		Map:        svc.Map,
		Auth:       http.AuthConfig{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.Issuer},
		NATS:       natsConn,
		DB:         db,
		Cache:      cache,
	}
	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwt_secret is empty, write routes are unauthenticated")
	}

	// Temporal runs purchase order creation when configured
	if cfg.Temporal.HostPort != "" {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			slog.Warn("temporal unavailable, purchase orders run inline", "error", err)
		} else {
			defer tc.Close()
			deps.Purchases = workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
		}
	}

	// DB pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Fiber
	fiberApp := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    8 * 1024 * 1024, // checklist photos
		AppName:      "FieldOps API",
	})
	fiberApp.Use(recover.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(fiberApp, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := fiberApp.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
