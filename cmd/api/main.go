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
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jasonlvhit/gocron"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/tempusgw/internal/adapters/http"
	natsadapter "github.com/samirrijal/tempusgw/internal/adapters/nats"
	"github.com/samirrijal/tempusgw/internal/adapters/postgres"
	"github.com/samirrijal/tempusgw/internal/adapters/valkey"
	"github.com/samirrijal/tempusgw/internal/adapters/wps"
	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
	"github.com/samirrijal/tempusgw/internal/core/usecases"
	"github.com/samirrijal/tempusgw/internal/pkg/config"
	"github.com/samirrijal/tempusgw/internal/pkg/geospatial"
	"github.com/samirrijal/tempusgw/internal/pkg/logging"
	"github.com/samirrijal/tempusgw/internal/pkg/metrics"
	"github.com/samirrijal/tempusgw/internal/pkg/telemetry"
	"github.com/samirrijal/tempusgw/internal/workflows"
)

func main() {
	cfg, err := config.Load("tempusgw-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Routing backend
	backend := wps.New(cfg.WPS.URL, cfg.WPS.TimeoutDuration())

	// Itinerary history
	var itineraryRepo ports.ItineraryRepository
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, itinerary history disabled", "error", err)
	} else {
		defer db.Close()
		itineraryRepo = postgres.NewItineraryRepo(db)
	}

	// Cache
	var constantsCache ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr, "")
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		constantsCache = cache
	}

	// NATS
	var publisher ports.EventPublisher
	var statePublisher ports.StatePublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher, statePublisher = pub, pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	// Temporal runs graph builds when enabled; otherwise they run in process.
	var starter ports.GraphBuildStarter
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
		})
		if err != nil {
			slog.Warn("temporal unavailable, graph builds run in process", "error", err)
		} else {
			defer tc.Close()
			starter = workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
		}
	}

	// Use cases
	sessionSvc := usecases.NewSessionService(backend, constantsCache, cfg.WPS.URL, cfg.Cache.ConstantsTTL)
	buildSvc := usecases.NewBuildService(backend, sessionSvc, starter, publisher)
	itinerarySvc := usecases.NewItineraryService(backend, sessionSvc, itineraryRepo, publisher, cfg.WPS.DefaultPlugin)
	watcher := usecases.NewStateWatcher(sessionSvc, statePublisher)

	// Builds finished by another gateway or by the builder worker change the
	// constants under our feet.
	if pub != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "tempusgw-api-constants")
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeGraphBuilt(ctx, func(ctx context.Context, event *domain.GraphBuiltEvent) error {
				slog.Info("graph built elsewhere, dropping constants", "db_options", event.DBOptions)
				return sessionSvc.InvalidateConstants(ctx)
			})
			if err != nil {
				slog.Warn("subscribe graph built failed", "error", err)
			}
		}
	}

	// Scheduler
	scheduler := gocron.NewScheduler()
	scheduler.Every(cfg.Scheduler.StatePollSeconds).Seconds().Do(func() {
		pollCtx, cancel := context.WithTimeout(ctx, cfg.WPS.TimeoutDuration())
		defer cancel()
		watcher.Poll(pollCtx)
	})
	if db != nil {
		scheduler.Every(15).Seconds().Do(func() {
			metrics.UpdateDBPoolMetrics(db.Stat())
		})
	}
	stopScheduler := scheduler.Start()

	deps := &http.Dependencies{
		Session:        sessionSvc,
		Builds:         buildSvc,
		Itineraries:    itinerarySvc,
		BackendTimeout: cfg.WPS.TimeoutDuration(),
		IconDir:        cfg.Render.IconDir,
		LayerStyle:     geospatial.Style{Color: geospatial.DefaultStyle.Color, Width: geospatial.DefaultStyle.Width, CRS: cfg.Render.CRS},
		NATS:           natsConn,
		DB:             db,
		Cache:          cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024,
		AppName:      "Tempus Gateway",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "wps", cfg.WPS.URL)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())
	close(stopScheduler)
	scheduler.Clear()

	// In-flight computations may hold a backend call for the full WPS timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.WPS.TimeoutDuration()+5*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
