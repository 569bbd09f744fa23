package main

import (
	"context"
	"errors"
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
	"github.com/spf13/pflag"

	"github.com/samirrijal/lapwatch/internal/adapters/http"
	natsadapter "github.com/samirrijal/lapwatch/internal/adapters/nats"
	"github.com/samirrijal/lapwatch/internal/adapters/valkey"
	"github.com/samirrijal/lapwatch/internal/core/lap"
	"github.com/samirrijal/lapwatch/internal/core/usecases"
	"github.com/samirrijal/lapwatch/internal/pkg/config"
	"github.com/samirrijal/lapwatch/internal/pkg/logging"
	"github.com/samirrijal/lapwatch/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	fs := config.Flags("lapwatch")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("flags: %v", err)
	}

	cfg, err := config.Load("lapwatch", fs)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

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

	proc, err := lap.NewProcessor(cfg.Core())
	if err != nil {
		log.Fatalf("lap processor: %v", err)
	}

	// NATS out: actions and lap events
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL, natsadapter.Subjects{
		Action: cfg.Subject("remote_message_request"),
		Laps:   cfg.Subject("lap_completed"),
	}, cfg.NATS.JetStream)
	if err != nil {
		log.Fatalf("nats publisher: %v", err)
	}
	defer pub.Close()

	// NATS in: geodetic positions
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, cfg.Subject("geodetic"))
	if err != nil {
		log.Fatalf("nats subscriber: %v", err)
	}
	defer sub.Close()

	var opts []usecases.LapServiceOption
	deps := &http.Dependencies{
		Positions:  sub.Conn(),
		Outbound:   pub.Conn(),
		NATS:       sub.Conn(),
		LapSubject: cfg.Subject("lap_completed"),
		Version:    version,
	}

	// Cache (optional status mirror)
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, lap status will not be mirrored", "error", err)
	} else {
		defer cache.Close()
		opts = append(opts, usecases.WithStatusCache(cache, cfg.StatusKey(), cfg.Valkey.StatusTTL))
		deps.Cache = cache
	}

	svc := usecases.NewLapService(proc, pub, pub, opts...)
	deps.Laps = svc

	if err := sub.SubscribePositions(ctx, svc.HandleReport); err != nil {
		log.Fatalf("subscribe positions: %v", err)
	}

	th, period := svc.Thresholds()
	slog.Info("lap counter running",
		"cid", cfg.Session.CID,
		"subject", cfg.Subject("geodetic"),
		"reference_sender", cfg.Laps.ReferenceSender,
		"outer_radius_m", th.Outer,
		"inner_radius_m", th.Inner,
		"period", period,
	)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:           time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:          time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:             64 * 1024,
		AppName:               "lapwatch",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("status server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received", "signal", sig.String())
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	st := svc.Status()
	slog.Info("stopped", "laps", st.LapCount, "samples", st.Samples, "dropped", st.Dropped)
}
